package geom

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{42, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
		{-1.5, -2, -1, -1.5},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%g, %g, %g) = %g, want %g", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		x1, y1, x2, y2, want float64
	}{
		{0, 0, 3, 4, 5},
		{1, 1, 1, 1, 0},
		{-3, 0, 0, -4, 5},
	}
	for _, tt := range tests {
		if got := Distance(tt.x1, tt.y1, tt.x2, tt.y2); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Distance(%g,%g,%g,%g) = %g, want %g", tt.x1, tt.y1, tt.x2, tt.y2, got, tt.want)
		}
	}
}

func TestDegToRad(t *testing.T) {
	if got := DegToRad(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("DegToRad(180) = %g, want pi", got)
	}
	if got := DegToRad(0); got != 0 {
		t.Errorf("DegToRad(0) = %g, want 0", got)
	}
}

// rotatePoint rotates (x, y) about (cx, cy) by angleDegrees, mirroring the
// transform a renderer applies to object corners.
func rotatePoint(x, y, cx, cy, angleDegrees float64) (float64, float64) {
	rad := DegToRad(angleDegrees)
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	dx := x - cx
	dy := y - cy
	return cx + dx*cos - dy*sin, cy + dx*sin + dy*cos
}

func TestPointInRotatedRectCorners(t *testing.T) {
	const left, top, width, height = 40.0, 25.0, 120.0, 60.0
	cx := left + width/2
	cy := top + height/2

	// Corners pulled a hair toward the center so floating point noise in the
	// rotation round trip cannot push an on-boundary point outside.
	const inset = 1e-6
	corners := [][2]float64{
		{left + inset, top + inset},
		{left + width - inset, top + inset},
		{left + width - inset, top + height - inset},
		{left + inset, top + height - inset},
	}

	for _, angle := range []float64{0, 90, 180, 270} {
		for _, c := range corners {
			px, py := rotatePoint(c[0], c[1], cx, cy, angle)
			if !PointInRotatedRect(px, py, left, top, width, height, angle) {
				t.Errorf("corner (%g,%g) rotated by %g not inside", c[0], c[1], angle)
			}
		}
	}
}

func TestPointInRotatedRectCenter(t *testing.T) {
	for angle := 0.0; angle < 360; angle += 10 {
		if !PointInRotatedRect(100, 55, 40, 25, 120, 60, angle) {
			t.Errorf("center not inside at angle %g", angle)
		}
	}
}

func TestPointInRotatedRectFarOutside(t *testing.T) {
	// A point well beyond the rect's bounding circle misses at every angle.
	for angle := 0.0; angle < 360; angle += 10 {
		if PointInRotatedRect(1000, 1000, 40, 25, 120, 60, angle) {
			t.Errorf("far point inside at angle %g", angle)
		}
	}
}

func TestPointInRotatedRectNinety(t *testing.T) {
	// A 100x20 rect rotated 90 degrees occupies the transposed footprint
	// around its center.
	const left, top, width, height = 0.0, 0.0, 100.0, 20.0
	// Center (50, 10). After 90 deg the shape spans x in [40,60], y in [-40,60].
	if !PointInRotatedRect(50, 55, left, top, width, height, 90) {
		t.Error("point within transposed footprint should hit")
	}
	if PointInRotatedRect(95, 10, left, top, width, height, 90) {
		t.Error("point in the unrotated footprint only should miss")
	}
}

func TestRotatedBounds(t *testing.T) {
	tests := []struct {
		w, h, angle, wantW, wantH float64
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 180, 100, 50},
		{100, 50, 90, 50, 100},
		{100, 50, 270, 50, 100},
		{100, 100, 45, 100 * math.Sqrt2, 100 * math.Sqrt2},
	}
	for _, tt := range tests {
		gotW, gotH := RotatedBounds(tt.w, tt.h, tt.angle)
		if math.Abs(gotW-tt.wantW) > 1e-9 || math.Abs(gotH-tt.wantH) > 1e-9 {
			t.Errorf("RotatedBounds(%g, %g, %g) = (%g, %g), want (%g, %g)",
				tt.w, tt.h, tt.angle, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestRotatedBoundsNeverShrink(t *testing.T) {
	// The projected box always encloses the original shape's diagonal extent.
	for angle := 0.0; angle < 360; angle += 5 {
		w, h := RotatedBounds(80, 30, angle)
		if w < 30-1e-9 || h < 30-1e-9 {
			t.Errorf("angle %g: bounds (%g, %g) smaller than the short side", angle, w, h)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	if !r.Contains(10, 20) || !r.Contains(40, 60) || !r.Contains(25, 35) {
		t.Error("boundary and interior points should be contained")
	}
	if r.Contains(9.9, 30) || r.Contains(25, 60.1) {
		t.Error("outside points should not be contained")
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 20, Height: 2}
	u := a.Union(b)
	want := Rect{X: 0, Y: 0, Width: 25, Height: 10}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}

	var empty Rect
	if got := a.Union(empty); got != a {
		t.Errorf("union with empty = %+v, want %+v", got, a)
	}
}
