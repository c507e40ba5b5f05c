package plan

import (
	"fmt"

	"github.com/loremIpsum6321/roomplanner/internal/geom"
)

// IDFunc produces unique object identifiers. Layout instances never share id
// state, so independent sessions cannot collide.
type IDFunc func() string

// Layout owns the ordered collection of placed objects and the current
// selection for one room. Insertion order is z-order: later objects draw on
// top and are hit-tested first. Every mutating operation leaves the selection
// invariant intact (at most one selected object, and it is a member of the
// collection) and fires exactly one change notification.
//
// Layout is not safe for concurrent use; a room session owns its layout
// exclusively and drives it from a single goroutine.
type Layout struct {
	room         *Room
	objects      []*Object
	selected     *Object
	rotationStep float64
	nextID       IDFunc
	notify       func()

	seq int
}

// NewLayout creates an empty layout bound to room. If nextID is nil, a
// counter local to this layout is used, which keeps ids deterministic in
// tests.
func NewLayout(room *Room, nextID IDFunc) *Layout {
	l := &Layout{
		room:         room,
		rotationStep: DefaultRotationStep,
		nextID:       nextID,
	}
	if l.nextID == nil {
		l.nextID = func() string {
			l.seq++
			return fmt.Sprintf("obj-%d", l.seq)
		}
	}
	return l
}

// OnChange registers the single change subscriber. The callback runs
// synchronously inside every mutating operation, after the mutation is
// complete; it must not re-enter the layout.
func (l *Layout) OnChange(fn func()) {
	l.notify = fn
}

// Room returns the room this layout is bound to.
func (l *Layout) Room() *Room { return l.room }

// Add validates def, places a new object centered at (x, y) under the room's
// current scale, makes it the topmost object and the sole selection, and
// notifies. On a validation failure nothing is mutated and no notification
// fires.
func (l *Layout) Add(def Definition, x, y float64) (*Object, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	obj := newObject(l.nextID(), def, x, y, l.room.Scale())
	l.objects = append(l.objects, obj)
	l.applySelection(obj)
	l.changed()
	return obj, nil
}

// SelectAt hit-tests (x, y) against the collection in reverse insertion
// order, so the topmost object under the point wins. The match (or nil, when
// the point hits nothing) becomes the new selection. A notification fires
// either way: callers rely on it to refresh selection-dependent UI.
func (l *Layout) SelectAt(x, y float64) *Object {
	var hit *Object
	for i := len(l.objects) - 1; i >= 0; i-- {
		o := l.objects[i]
		if !o.Bounds().Contains(x, y) {
			continue
		}
		left, top := o.DrawingOrigin()
		if geom.PointInRotatedRect(x, y, left, top, o.pixelWidth, o.pixelLength, o.rotation) {
			hit = o
			break
		}
	}
	l.applySelection(hit)
	l.changed()
	return hit
}

// Select sets or clears (obj == nil) the selection directly and notifies.
func (l *Layout) Select(obj *Object) {
	l.applySelection(obj)
	l.changed()
}

// MoveSelected moves the selected object toward (x, y), clamping the center
// so the rotated shape's axis-aligned bounding box stays inside the room.
// The projected extents |w·cosθ|+|h·sinθ| and |w·sinθ|+|h·cosθ| bound the
// rotated rectangle, so the clamp is conservative: an off-axis rotation may
// keep corner slack, but the shape never leaves the room. No-op when nothing
// is selected.
func (l *Layout) MoveSelected(x, y float64) {
	if l.selected == nil {
		return
	}

	projW, projH := geom.RotatedBounds(l.selected.pixelWidth, l.selected.pixelLength, l.selected.rotation)
	roomW, roomH := l.room.PixelSize()

	l.selected.moveTo(
		geom.Clamp(x, projW/2, roomW-projW/2),
		geom.Clamp(y, projH/2, roomH-projH/2),
	)
	l.changed()
}

// RotateSelected advances the selected object's rotation by the fixed step.
// The position is not re-clamped: a rotation may leave the shape protruding
// past the boundary until the next move corrects it. No-op when nothing is
// selected.
func (l *Layout) RotateSelected() {
	if l.selected == nil {
		return
	}
	l.selected.rotateStep(l.rotationStep)
	l.changed()
}

// LabelSelected replaces the selected object's label. No-op when nothing is
// selected.
func (l *Layout) LabelSelected(label string) {
	if l.selected == nil {
		return
	}
	l.selected.label = label
	l.changed()
}

// DeleteSelected removes the selected object and clears the selection. No-op
// when nothing is selected.
func (l *Layout) DeleteSelected() {
	if l.selected == nil {
		return
	}

	kept := make([]*Object, 0, len(l.objects)-1)
	for _, o := range l.objects {
		if o != l.selected {
			kept = append(kept, o)
		}
	}
	l.objects = kept
	l.applySelection(nil)
	l.changed()
}

// RescaleAll reprojects every object's pixel size under newScale. Used when
// the owning room is rebuilt with new dimensions.
func (l *Layout) RescaleAll(newScale float64) {
	for _, o := range l.objects {
		o.rescale(newScale)
	}
	l.changed()
}

// Selected returns the selected object, or nil.
func (l *Layout) Selected() *Object { return l.selected }

// Objects returns a copy of the collection in z-order. Mutation goes through
// Layout methods only.
func (l *Layout) Objects() []*Object {
	out := make([]*Object, len(l.objects))
	copy(out, l.objects)
	return out
}

// Len returns the number of placed objects.
func (l *Layout) Len() int { return len(l.objects) }

func (l *Layout) applySelection(obj *Object) {
	if l.selected != nil {
		l.selected.selected = false
	}
	l.selected = obj
	if obj != nil {
		obj.selected = true
	}
}

func (l *Layout) changed() {
	if l.notify != nil {
		l.notify()
	}
}
