// Command planrender renders a saved plan's layout straight from the store
// to a PNG file, without going through the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/loremIpsum6321/roomplanner/internal/plan"
	"github.com/loremIpsum6321/roomplanner/internal/render"
	"github.com/loremIpsum6321/roomplanner/internal/store"
)

func main() {
	dbPath := flag.String("db", "./data/roomplanner.db", "path to the sqlite database")
	planID := flag.String("plan", "", "plan id to render")
	outPath := flag.String("out", "plan.png", "output PNG path")
	maxWidth := flag.Float64("max-width", 1000, "maximum canvas width in pixels")
	maxHeight := flag.Float64("max-height", 700, "maximum canvas height in pixels")
	flag.Parse()

	if *planID == "" {
		fmt.Fprintln(os.Stderr, "usage: planrender -plan <plan-id> [-db path] [-out path]")
		os.Exit(2)
	}

	if err := run(*dbPath, *planID, *outPath, *maxWidth, *maxHeight); err != nil {
		slog.Error("render failed", "plan", *planID, "error", err)
		os.Exit(1)
	}
}

func run(dbPath, planID, outPath string, maxWidth, maxHeight float64) error {
	st, err := store.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	raw, err := st.LoadLayout(context.Background(), planID)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	var doc plan.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}

	room, layout, err := plan.Restore(doc, maxWidth, maxHeight, nil)
	if err != nil {
		return fmt.Errorf("restore layout: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if err := renderer.EncodePNG(out, room, layout.Objects()); err != nil {
		return err
	}

	w, h := room.PixelSize()
	slog.Info("rendered", "plan", planID, "out", outPath, "size", fmt.Sprintf("%.0fx%.0f", w, h), "objects", layout.Len())
	return nil
}
