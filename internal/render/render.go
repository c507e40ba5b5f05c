// Package render draws a room layout to a raster image: the room as a
// bordered canvas, each object as a filled, stroked rectangle rotated about
// its center, with its label centered on top. It consumes only the read
// accessors of plan.Room and plan.Object.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/loremIpsum6321/roomplanner/internal/plan"
)

var (
	colorFloor     = color.RGBA{248, 246, 240, 255} // warm off-white
	colorWall      = color.RGBA{60, 60, 60, 255}
	colorOutline   = color.RGBA{40, 40, 40, 255}
	colorSelection = color.RGBA{25, 118, 210, 255} // accent blue
	colorLabel     = color.RGBA{30, 30, 30, 255}
	colorFallback  = color.RGBA{160, 160, 160, 255}
)

// Renderer rasterizes layouts. It is reusable across frames and layouts, and
// safe for concurrent use: the face mutex serializes label drawing because an
// opentype.Face shares one glyph buffer across calls.
type Renderer struct {
	faceMu sync.Mutex
	face   font.Face
}

// New creates a renderer with the embedded Go Regular face for labels.
func New() (*Renderer, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size: 13,
		DPI:  72,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return &Renderer{face: face}, nil
}

// Render draws the room and every object in z-order onto a fresh image sized
// to the room's pixel dimensions.
func (r *Renderer) Render(room *plan.Room, objects []*plan.Object) *image.RGBA {
	pw, ph := room.PixelSize()
	w := int(math.Ceil(pw))
	h := int(math.Ceil(ph))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorFloor}, image.Point{}, draw.Src)

	// Room walls
	strokePolygon(img, [][2]float64{
		{0, 0}, {pw, 0}, {pw, ph}, {0, ph},
	}, 2, colorWall)

	for _, o := range objects {
		r.drawObject(img, o)
	}
	return img
}

// EncodePNG writes the rendered layout as PNG.
func (r *Renderer) EncodePNG(w io.Writer, room *plan.Room, objects []*plan.Object) error {
	if err := png.Encode(w, r.Render(room, objects)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Renderer) drawObject(img *image.RGBA, o *plan.Object) {
	corners := objectCorners(o)

	fillPolygon(img, corners, parseHexColor(o.Color()))

	outline := colorOutline
	strokeWidth := 1.5
	if o.Selected() {
		outline = colorSelection
		strokeWidth = 3
	}
	strokePolygon(img, corners, strokeWidth, outline)

	pwObj, plObj := o.PixelSize()
	label := o.DisplayLabel()
	if label != "" && pwObj > 30 && plObj > 16 {
		cx, cy := o.Center()
		r.drawLabelCentered(img, cx, cy, label)
	}
}

// objectCorners returns the object's four corners rotated about its center,
// in drawing order.
func objectCorners(o *plan.Object) [][2]float64 {
	w, l := o.PixelSize()
	cx, cy := o.Center()
	rad := o.Rotation() * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)

	halfW := w / 2
	halfL := l / 2
	offsets := [4][2]float64{
		{-halfW, -halfL}, {halfW, -halfL}, {halfW, halfL}, {-halfW, halfL},
	}

	corners := make([][2]float64, 4)
	for i, off := range offsets {
		dx, dy := off[0], off[1]
		corners[i] = [2]float64{
			cx + dx*cos - dy*sin,
			cy + dx*sin + dy*cos,
		}
	}
	return corners
}

func (r *Renderer) drawLabelCentered(img *image.RGBA, x, y float64, text string) {
	r.faceMu.Lock()
	defer r.faceMu.Unlock()

	width := font.MeasureString(r.face, text).Ceil()
	metrics := r.face.Metrics()
	ascent := metrics.Ascent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorLabel),
		Face: r.face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x) - width/2),
			Y: fixed.I(int(y) + ascent/2 - 1),
		},
	}
	d.DrawString(text)
}

func fillPolygon(img *image.RGBA, pts [][2]float64, col color.Color) {
	if len(pts) < 3 {
		return
	}
	b := img.Bounds()
	ras := &vector.Rasterizer{}
	ras.Reset(b.Dx(), b.Dy())
	ras.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		ras.LineTo(float32(p[0]), float32(p[1]))
	}
	ras.ClosePath()
	ras.Draw(img, b, image.NewUniform(col), image.Point{})
}

// strokePolygon outlines a closed polygon by filling a thin quad per edge.
func strokePolygon(img *image.RGBA, pts [][2]float64, width float64, col color.Color) {
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		strokeSegment(img, a[0], a[1], b[0], b[1], width, col)
	}
}

func strokeSegment(img *image.RGBA, x1, y1, x2, y2, width float64, col color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	// Perpendicular unit vector scaled by half the stroke width.
	nx := -dy / length * width / 2
	ny := dx / length * width / 2

	fillPolygon(img, [][2]float64{
		{x1 + nx, y1 + ny},
		{x2 + nx, y2 + ny},
		{x2 - nx, y2 - ny},
		{x1 - nx, y1 - ny},
	}, col)
}

// parseHexColor parses "#rgb" or "#rrggbb". Unparseable colors fall back to
// a neutral gray rather than failing the draw.
func parseHexColor(s string) color.RGBA {
	var r, g, b uint8
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return colorFallback
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return colorFallback
		}
		r *= 17
		g *= 17
		b *= 17
	default:
		return colorFallback
	}
	return color.RGBA{r, g, b, 255}
}
