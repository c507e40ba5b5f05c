// Package session hosts one live editing session per plan: it owns the
// room/layout pair, translates pointer and command messages into layout
// operations, keeps drag-offset bookkeeping, and reacts to every layout
// change notification by pushing a fresh state snapshot to the client and
// autosaving the layout document.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loremIpsum6321/roomplanner/internal/catalog"
	"github.com/loremIpsum6321/roomplanner/internal/plan"
	"github.com/loremIpsum6321/roomplanner/internal/store"
)

// Default room for plans with no saved layout yet, in meters.
const (
	defaultRoomWidth  = 5.0
	defaultRoomLength = 4.0
)

const saveTimeout = 5 * time.Second

// Session is the interaction controller for one plan. All message handling
// is serialized through the session mutex, so the layout only ever sees
// single-threaded access.
type Session struct {
	mu     sync.Mutex
	planID string
	maxW   float64
	maxH   float64
	store  store.Store
	newID  plan.IDFunc

	room   *plan.Room
	layout *plan.Layout

	// Drag bookkeeping: the offset between the pointer and the selected
	// object's center at drag start, so the object does not jump under the
	// cursor.
	dragging bool
	dragDX   float64
	dragDY   float64

	push func(*Message)
}

// New opens (or initializes) the session for planID. A missing saved layout
// starts a default empty room; a corrupt one is cleared from the store and
// also starts fresh, so it cannot poison future loads.
func New(ctx context.Context, planID string, st store.Store, maxCanvasWidth, maxCanvasHeight float64, newID plan.IDFunc) (*Session, error) {
	s := &Session{
		planID: planID,
		maxW:   maxCanvasWidth,
		maxH:   maxCanvasHeight,
		store:  st,
		newID:  newID,
	}

	room, layout, err := s.loadLayout(ctx)
	if err != nil {
		return nil, err
	}
	s.adopt(room, layout)
	return s, nil
}

func (s *Session) loadLayout(ctx context.Context) (*plan.Room, *plan.Layout, error) {
	raw, err := s.store.LoadLayout(ctx, s.planID)
	if errors.Is(err, store.ErrNotFound) {
		return s.freshLayout()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load layout: %w", err)
	}

	var doc plan.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.clearCorrupt(ctx, err)
		return s.freshLayout()
	}

	room, layout, err := plan.Restore(doc, s.maxW, s.maxH, s.newID)
	if err != nil {
		s.clearCorrupt(ctx, err)
		return s.freshLayout()
	}
	return room, layout, nil
}

func (s *Session) freshLayout() (*plan.Room, *plan.Layout, error) {
	room, err := plan.NewRoom(defaultRoomWidth, defaultRoomLength, s.maxW, s.maxH)
	if err != nil {
		return nil, nil, err
	}
	return room, plan.NewLayout(room, s.newID), nil
}

func (s *Session) clearCorrupt(ctx context.Context, cause error) {
	slog.Warn("discarding corrupt saved layout", "plan", s.planID, "error", cause)
	if err := s.store.DeleteLayout(ctx, s.planID); err != nil {
		slog.Error("clear corrupt layout", "plan", s.planID, "error", err)
	}
}

// adopt binds the session to a room/layout pair and wires the change
// notification to snapshot push + autosave.
func (s *Session) adopt(room *plan.Room, layout *plan.Layout) {
	s.room = room
	s.layout = layout
	layout.OnChange(s.changed)
}

// SetPush installs (or clears, with nil) the client push function. The
// current state is pushed immediately so a new client starts in sync.
func (s *Session) SetPush(fn func(*Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push = fn
	if fn != nil {
		s.pushState()
	}
}

// PlanID returns the plan this session edits.
func (s *Session) PlanID() string { return s.planID }

// Snapshot returns the current state snapshot.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// View returns the room and objects for rendering.
func (s *Session) View() (*plan.Room, []*plan.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.layout.Objects()
}

// Flush persists the current layout unconditionally. Called when the session
// is being shut down.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// Handle processes one client message. Unknown types and malformed payloads
// are reported back to the client without touching the layout.
func (s *Session) Handle(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if !s.decode(msg.Payload, &p) {
			return
		}
		s.pointerDown(p.X, p.Y)
	case TypePointerMove:
		var p PointerPayload
		if !s.decode(msg.Payload, &p) {
			return
		}
		s.pointerMove(p.X, p.Y)
	case TypePointerUp:
		s.dragging = false
	case TypeObjectAdd:
		var p AddObjectPayload
		if !s.decode(msg.Payload, &p) {
			return
		}
		s.addObject(p)
	case TypeObjectRotate:
		s.layout.RotateSelected()
	case TypeObjectDelete:
		s.layout.DeleteSelected()
	case TypeObjectLabel:
		var p LabelPayload
		if !s.decode(msg.Payload, &p) {
			return
		}
		s.layout.LabelSelected(p.Label)
	case TypeSelectionClear:
		s.layout.Select(nil)
	case TypeRoomResize:
		var p ResizePayload
		if !s.decode(msg.Payload, &p) {
			return
		}
		s.resize(p.WidthUnits, p.LengthUnits)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "plan", s.planID)
		s.pushError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Session) pointerDown(x, y float64) {
	obj := s.layout.SelectAt(x, y)
	if obj == nil {
		s.dragging = false
		return
	}
	cx, cy := obj.Center()
	s.dragging = true
	s.dragDX = cx - x
	s.dragDY = cy - y
}

func (s *Session) pointerMove(x, y float64) {
	if !s.dragging {
		return
	}
	s.layout.MoveSelected(x+s.dragDX, y+s.dragDY)
}

func (s *Session) addObject(p AddObjectPayload) {
	def, ok := catalog.Lookup(p.TypeID)
	if ok {
		if p.WidthUnits > 0 {
			def.WidthUnits = p.WidthUnits
		}
		if p.LengthUnits > 0 {
			def.LengthUnits = p.LengthUnits
		}
		if p.Color != "" {
			def.Color = p.Color
		}
	} else {
		def = plan.Definition{
			TypeID:      p.TypeID,
			Name:        p.TypeID,
			WidthUnits:  p.WidthUnits,
			LengthUnits: p.LengthUnits,
			Color:       p.Color,
		}
	}
	def.Label = p.Label

	x, y := p.X, p.Y
	if x == 0 && y == 0 {
		pw, ph := s.room.PixelSize()
		x, y = pw/2, ph/2
	}

	if _, err := s.layout.Add(def, x, y); err != nil {
		s.pushError(err.Error())
	}
}

// resize rebuilds the room and layout for the new dimensions. Surviving
// objects keep their pixel centers, reprojected under the new scale and
// clamped back inside the new bounds.
func (s *Session) resize(widthUnits, lengthUnits float64) {
	doc := plan.Snapshot(s.layout)
	doc.Room = plan.RoomRecord{Width: widthUnits, Length: lengthUnits}

	room, layout, err := plan.Restore(doc, s.maxW, s.maxH, s.newID)
	if err != nil {
		s.pushError(err.Error())
		return
	}

	// Clamp every object into the new room before the change subscriber is
	// wired, so the rebuild surfaces as a single notification.
	for _, o := range layout.Objects() {
		layout.Select(o)
		x, y := o.Center()
		layout.MoveSelected(x, y)
	}
	layout.Select(nil)

	s.adopt(room, layout)
	s.changed()
}

// changed is the layout's change subscriber: push the new state to the
// client, then autosave. A save failure is logged and reported but never
// rolls back the in-memory edit.
func (s *Session) changed() {
	s.pushState()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.save(ctx); err != nil {
		slog.Error("autosave failed", "plan", s.planID, "error", err)
		s.pushError("layout could not be saved")
	}
}

func (s *Session) save(ctx context.Context) error {
	raw, err := json.Marshal(plan.Snapshot(s.layout))
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := s.store.SaveLayout(ctx, s.planID, raw); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

func (s *Session) state() State {
	scale := s.room.Scale()
	pw, ph := s.room.PixelSize()
	st := State{
		Room: RoomState{
			WidthUnits:  s.room.WidthUnits(),
			LengthUnits: s.room.LengthUnits(),
			Scale:       scale,
			PixelWidth:  pw,
			PixelHeight: ph,
		},
	}

	for _, o := range s.layout.Objects() {
		x, y := o.Center()
		ow, ol := o.PixelSize()
		st.Objects = append(st.Objects, ObjectState{
			ID:          o.ID(),
			TypeID:      o.TypeID(),
			Name:        o.Name(),
			Label:       o.Label(),
			WidthUnits:  o.WidthUnits(),
			LengthUnits: o.LengthUnits(),
			PixelWidth:  ow,
			PixelLength: ol,
			X:           x,
			Y:           y,
			Rotation:    o.Rotation(),
			Selected:    o.Selected(),
			Color:       o.Color(),
		})
	}

	if sel := s.layout.Selected(); sel != nil {
		st.SelectedID = sel.ID()
	}
	return st
}

func (s *Session) pushState() {
	if s.push == nil {
		return
	}
	payload, err := json.Marshal(s.state())
	if err != nil {
		slog.Error("marshal state", "plan", s.planID, "error", err)
		return
	}
	s.push(&Message{Type: TypeState, Payload: payload})
}

func (s *Session) pushError(text string) {
	if s.push == nil {
		return
	}
	payload, _ := json.Marshal(ErrorPayload{Message: text})
	s.push(&Message{Type: TypeError, Payload: payload})
}

func (s *Session) decode(raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		slog.Warn("invalid payload", "plan", s.planID, "error", err)
		s.pushError("invalid payload")
		return false
	}
	return true
}
