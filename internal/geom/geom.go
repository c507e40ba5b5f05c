package geom

import "math"

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance returns the Euclidean distance between (x1, y1) and (x2, y2).
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// PointInRotatedRect reports whether point (px, py) lies inside a rectangle
// whose unrotated top-left corner is (left, top), rotated by angleDegrees
// about its own center. Instead of rotating the rectangle, the query point is
// rotated by the inverse angle around the center and tested against the
// axis-aligned bounds.
func PointInRotatedRect(px, py, left, top, width, height, angleDegrees float64) bool {
	cx := left + width/2
	cy := top + height/2

	rad := DegToRad(-angleDegrees)
	cos := math.Cos(rad)
	sin := math.Sin(rad)

	dx := px - cx
	dy := py - cy
	rx := cx + dx*cos - dy*sin
	ry := cy + dx*sin + dy*cos

	return rx >= left && rx <= left+width && ry >= top && ry <= top+height
}

// RotatedBounds returns the width and height of the smallest axis-aligned
// rectangle enclosing a width×height rectangle rotated by angleDegrees.
func RotatedBounds(width, height, angleDegrees float64) (float64, float64) {
	rad := DegToRad(angleDegrees)
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))
	return width*cos + height*sin, width*sin + height*cos
}
