package plan

import (
	"fmt"
	"math"

	"github.com/loremIpsum6321/roomplanner/internal/geom"
)

// DefaultRotationStep is the rotation increment in degrees applied by a
// single rotate operation.
const DefaultRotationStep = 10.0

// Definition describes an object to be placed: identity, physical size and
// presentation. Width and length are in room units.
type Definition struct {
	TypeID      string  `json:"typeId"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
	Color       string  `json:"color"`
}

// Validate checks that the definition can produce a placeable object.
func (d Definition) Validate() error {
	if !isPositiveFinite(d.WidthUnits) || !isPositiveFinite(d.LengthUnits) {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidDefinition, d.WidthUnits, d.LengthUnits)
	}
	if d.TypeID == "" || d.Name == "" {
		return fmt.Errorf("%w: missing type or name", ErrInvalidDefinition)
	}
	return nil
}

// Object is a single placed instance. Physical size and identity are fixed at
// creation; position, rotation, label and the pixel projection change over
// the object's lifetime, always through Layout methods.
type Object struct {
	id          string
	typeID      string
	name        string
	label       string
	widthUnits  float64
	lengthUnits float64
	color       string

	scale       float64
	pixelWidth  float64
	pixelLength float64

	centerX  float64
	centerY  float64
	rotation float64
	selected bool
}

func newObject(id string, def Definition, x, y, scale float64) *Object {
	o := &Object{
		id:          id,
		typeID:      def.TypeID,
		name:        def.Name,
		label:       def.Label,
		widthUnits:  def.WidthUnits,
		lengthUnits: def.LengthUnits,
		color:       def.Color,
		centerX:     x,
		centerY:     y,
	}
	o.rescale(scale)
	return o
}

// rescale recomputes the pixel projection from the unchanged physical size.
// The object does not move.
func (o *Object) rescale(scale float64) {
	o.scale = scale
	o.pixelWidth = o.widthUnits * scale
	o.pixelLength = o.lengthUnits * scale
}

// moveTo sets the center position unconditionally. Boundary enforcement is
// the Layout's job, not the entity's.
func (o *Object) moveTo(x, y float64) {
	o.centerX = x
	o.centerY = y
}

// rotateStep advances the rotation by step degrees, wrapping modulo 360.
func (o *Object) rotateStep(step float64) {
	o.rotation = math.Mod(o.rotation+step, 360)
	if o.rotation < 0 {
		o.rotation += 360
	}
}

// ID returns the object's stable identifier.
func (o *Object) ID() string { return o.id }

// TypeID returns the catalog type this object was placed from.
func (o *Object) TypeID() string { return o.typeID }

// Name returns the object's display name.
func (o *Object) Name() string { return o.name }

// Label returns the user-assigned label, which may be empty.
func (o *Object) Label() string { return o.label }

// DisplayLabel returns the label, falling back to the display name.
func (o *Object) DisplayLabel() string {
	if o.label != "" {
		return o.label
	}
	return o.name
}

// WidthUnits returns the physical width.
func (o *Object) WidthUnits() float64 { return o.widthUnits }

// LengthUnits returns the physical length.
func (o *Object) LengthUnits() float64 { return o.lengthUnits }

// Color returns the fill color assigned at creation.
func (o *Object) Color() string { return o.color }

// PixelSize returns the current pixel projection of the physical size.
func (o *Object) PixelSize() (width, length float64) {
	return o.pixelWidth, o.pixelLength
}

// Center returns the center position in pixels.
func (o *Object) Center() (x, y float64) {
	return o.centerX, o.centerY
}

// Rotation returns the rotation in degrees, always in [0, 360).
func (o *Object) Rotation() float64 { return o.rotation }

// Selected reports whether this object is the layout's current selection.
func (o *Object) Selected() bool { return o.selected }

// DrawingOrigin returns the unrotated top-left corner implied by the center
// and pixel size, for renderers that anchor rectangles at a corner. Rotation
// is not applied here; renderers rotate about the center directly.
func (o *Object) DrawingOrigin() (x, y float64) {
	return o.centerX - o.pixelWidth/2, o.centerY - o.pixelLength/2
}

// Bounds returns the axis-aligned box enclosing the rotated footprint,
// centered on the object. Any point inside the rotated shape is inside this
// box, so it serves as a cheap pre-filter before the exact hit test.
func (o *Object) Bounds() geom.Rect {
	projW, projH := geom.RotatedBounds(o.pixelWidth, o.pixelLength, o.rotation)
	return geom.Rect{
		X:      o.centerX - projW/2,
		Y:      o.centerY - projH/2,
		Width:  projW,
		Height: projH,
	}
}
