package plan

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimension indicates a non-positive or non-finite physical size.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidDefinition indicates a malformed object definition.
	ErrInvalidDefinition = errors.New("invalid object definition")
)

// Room holds a room's physical dimensions and the derived pixel projection.
// It is immutable once constructed; changing the room size means building a
// new Room and a new Layout bound to it.
type Room struct {
	widthUnits  float64
	lengthUnits float64
	scale       float64
	pixelWidth  float64
	pixelHeight float64
}

// NewRoom creates a room of widthUnits×lengthUnits physical units. The pixel
// scale is the largest pixels-per-unit factor that fits both axes within
// maxPixelWidth×maxPixelHeight.
func NewRoom(widthUnits, lengthUnits, maxPixelWidth, maxPixelHeight float64) (*Room, error) {
	if !isPositiveFinite(widthUnits) || !isPositiveFinite(lengthUnits) {
		return nil, fmt.Errorf("%w: room %gx%g", ErrInvalidDimension, widthUnits, lengthUnits)
	}

	scale := min(maxPixelWidth/widthUnits, maxPixelHeight/lengthUnits)

	return &Room{
		widthUnits:  widthUnits,
		lengthUnits: lengthUnits,
		scale:       scale,
		pixelWidth:  widthUnits * scale,
		pixelHeight: lengthUnits * scale,
	}, nil
}

// WidthUnits returns the room's physical width.
func (r *Room) WidthUnits() float64 { return r.widthUnits }

// LengthUnits returns the room's physical length.
func (r *Room) LengthUnits() float64 { return r.lengthUnits }

// Scale returns the derived pixels-per-unit factor.
func (r *Room) Scale() float64 { return r.scale }

// PixelSize returns the derived canvas size in pixels.
func (r *Room) PixelSize() (width, height float64) {
	return r.pixelWidth, r.pixelHeight
}

// ToPixels converts a physical length to pixels.
func (r *Room) ToPixels(units float64) float64 {
	return units * r.scale
}

// ToUnits converts a pixel length back to physical units. Returns 0 when the
// scale is 0 rather than dividing by zero.
func (r *Room) ToUnits(pixels float64) float64 {
	if r.scale == 0 {
		return 0
	}
	return pixels / r.scale
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
