package render

import (
	"bytes"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/loremIpsum6321/roomplanner/internal/plan"
)

func testScene(t *testing.T) (*plan.Room, *plan.Layout) {
	t.Helper()
	// 5x4 m room in a 100x80 canvas: scale 20, image 100x80.
	room, err := plan.NewRoom(5, 4, 100, 80)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	return room, plan.NewLayout(room, nil)
}

func TestRenderImageSize(t *testing.T) {
	room, layout := testScene(t)
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	img := r.Render(room, layout.Objects())
	b := img.Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("image size = %dx%d, want 100x80", b.Dx(), b.Dy())
	}
}

func TestRenderFillsObject(t *testing.T) {
	room, layout := testScene(t)
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 1x1 m -> 20x20 px, small enough that no label is drawn over the fill.
	if _, err := layout.Add(plan.Definition{
		TypeID: "crate", Name: "Crate", WidthUnits: 1, LengthUnits: 1, Color: "#ff0000",
	}, 50, 40); err != nil {
		t.Fatalf("Add: %v", err)
	}
	layout.Select(nil)

	img := r.Render(room, layout.Objects())

	got := img.RGBAAt(50, 40)
	want := color.RGBA{255, 0, 0, 255}
	if got != want {
		t.Errorf("center pixel = %v, want %v", got, want)
	}

	// A corner of the room is floor, not object.
	if img.RGBAAt(5, 5) == want {
		t.Error("floor pixel should not carry the object color")
	}
}

func TestRenderSelectionOutline(t *testing.T) {
	room, layout := testScene(t)
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := layout.Add(plan.Definition{
		TypeID: "crate", Name: "Crate", WidthUnits: 1, LengthUnits: 1, Color: "#00ff00",
	}, 50, 40); err != nil {
		t.Fatalf("Add: %v", err)
	}

	selected := r.Render(room, layout.Objects())
	layout.Select(nil)
	deselected := r.Render(room, layout.Objects())

	// The left edge of the 20x20 object sits at x=40; compare the outline
	// pixel between the selected and deselected renders.
	if selected.RGBAAt(40, 40) == deselected.RGBAAt(40, 40) {
		t.Error("selection should change the outline color")
	}
}

func TestRenderConcurrentLabels(t *testing.T) {
	room, layout := testScene(t)
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 2x1 m -> 40x20 px, large enough that the label is drawn.
	for i := 0; i < 3; i++ {
		if _, err := layout.Add(plan.Definition{
			TypeID: "desk", Name: "Desk", Label: "Desk", WidthUnits: 2, LengthUnits: 1, Color: "#964b00",
		}, 50, 40); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	objects := layout.Objects()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.Render(room, objects)
			}
		}()
	}
	wg.Wait()
}

func TestEncodePNG(t *testing.T) {
	room, layout := testScene(t)
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf, room, layout.Objects()); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 100 {
		t.Errorf("decoded width = %d, want 100", decoded.Bounds().Dx())
	}
}
