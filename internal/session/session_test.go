package session

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/loremIpsum6321/roomplanner/internal/plan"
	"github.com/loremIpsum6321/roomplanner/internal/store"
)

const (
	testMaxW = 1000.0
	testMaxH = 700.0
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(st.Close)

	ctx := context.Background()
	if err := st.CreateUser(ctx, store.User{ID: "user-test", Email: "t@example.com", Password: "x", DisplayName: "T"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := st.CreatePlan(ctx, store.Plan{ID: "plan-test", Name: "Test Plan", OwnerID: "user-test"}); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return st
}

func newTestSession(t *testing.T, st store.Store) *Session {
	t.Helper()
	s, err := New(context.Background(), "plan-test", st, testMaxW, testMaxH, nil)
	if err != nil {
		t.Fatalf("New session: %v", err)
	}
	return s
}

func message(t *testing.T, typ string, payload any) *Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &Message{Type: typ, Payload: raw}
}

func addDesk(t *testing.T, s *Session, x, y float64) {
	t.Helper()
	s.Handle(message(t, TypeObjectAdd, AddObjectPayload{TypeID: "desk", X: x, Y: y}))
}

func TestSessionStartsWithDefaultRoom(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	st := s.Snapshot()
	if st.Room.WidthUnits != 5 || st.Room.LengthUnits != 4 {
		t.Errorf("default room = %gx%g, want 5x4", st.Room.WidthUnits, st.Room.LengthUnits)
	}
	if len(st.Objects) != 0 {
		t.Errorf("default layout has %d objects, want 0", len(st.Objects))
	}
}

func TestSessionAddObject(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	addDesk(t, s, 437.5, 350)

	st := s.Snapshot()
	if len(st.Objects) != 1 {
		t.Fatalf("objects = %d, want 1", len(st.Objects))
	}
	o := st.Objects[0]
	if o.TypeID != "desk" || o.Name != "Desk" {
		t.Errorf("placed %s/%s, want catalog desk", o.TypeID, o.Name)
	}
	if !o.Selected || st.SelectedID != o.ID {
		t.Error("new object should be the selection")
	}
}

func TestSessionAddAtRoomCenterByDefault(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	s.Handle(message(t, TypeObjectAdd, AddObjectPayload{TypeID: "chair"}))

	st := s.Snapshot()
	if len(st.Objects) != 1 {
		t.Fatalf("objects = %d, want 1", len(st.Objects))
	}
	if st.Objects[0].X != st.Room.PixelWidth/2 || st.Objects[0].Y != st.Room.PixelHeight/2 {
		t.Errorf("placed at (%g, %g), want room center", st.Objects[0].X, st.Objects[0].Y)
	}
}

func TestSessionRejectsInvalidAdd(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	var pushed []*Message
	s.SetPush(func(m *Message) { pushed = append(pushed, m) })
	pushed = nil // drop the snapshot sent on attach

	s.Handle(message(t, TypeObjectAdd, AddObjectPayload{TypeID: "custom", WidthUnits: -1, LengthUnits: 2}))

	if got := len(s.Snapshot().Objects); got != 0 {
		t.Fatalf("objects = %d after invalid add, want 0", got)
	}
	if len(pushed) != 1 || pushed[0].Type != TypeError {
		t.Fatalf("pushed = %v, want a single error message", pushed)
	}
}

func TestSessionDragPreservesGrabOffset(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	addDesk(t, s, 437.5, 350)

	// Grab 50 px right and 20 px below the center, then drag. The object
	// keeps the same offset from the pointer instead of snapping to it.
	s.Handle(message(t, TypePointerDown, PointerPayload{X: 487.5, Y: 370}))
	s.Handle(message(t, TypePointerMove, PointerPayload{X: 500, Y: 400}))

	st := s.Snapshot()
	if st.Objects[0].X != 450 || st.Objects[0].Y != 380 {
		t.Errorf("dragged to (%g, %g), want (450, 380)", st.Objects[0].X, st.Objects[0].Y)
	}

	// After release, pointer movement no longer drags.
	s.Handle(message(t, TypePointerUp, nil))
	s.Handle(message(t, TypePointerMove, PointerPayload{X: 100, Y: 100}))
	st = s.Snapshot()
	if st.Objects[0].X != 450 || st.Objects[0].Y != 380 {
		t.Errorf("object moved after pointer up: (%g, %g)", st.Objects[0].X, st.Objects[0].Y)
	}
}

func TestSessionDragClampsToRoom(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	addDesk(t, s, 437.5, 350) // 1.4x0.7 m -> 245x122.5 px

	s.Handle(message(t, TypePointerDown, PointerPayload{X: 437.5, Y: 350}))
	s.Handle(message(t, TypePointerMove, PointerPayload{X: -5000, Y: 350}))

	st := s.Snapshot()
	if st.Objects[0].X != 122.5 || st.Objects[0].Y != 350 {
		t.Errorf("clamped to (%g, %g), want (122.5, 350)", st.Objects[0].X, st.Objects[0].Y)
	}
}

func TestSessionPointerDownOnEmptyDeselects(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	addDesk(t, s, 437.5, 350)

	s.Handle(message(t, TypePointerDown, PointerPayload{X: 10, Y: 10}))

	if st := s.Snapshot(); st.SelectedID != "" {
		t.Errorf("SelectedID = %q after empty click, want empty", st.SelectedID)
	}
}

func TestSessionRotateAndDelete(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	addDesk(t, s, 437.5, 350)

	s.Handle(message(t, TypeObjectRotate, nil))
	if got := s.Snapshot().Objects[0].Rotation; got != 10 {
		t.Errorf("rotation = %g, want 10", got)
	}

	s.Handle(message(t, TypeObjectDelete, nil))
	st := s.Snapshot()
	if len(st.Objects) != 0 || st.SelectedID != "" {
		t.Errorf("after delete: %d objects, selected %q", len(st.Objects), st.SelectedID)
	}
}

func TestSessionAutosaves(t *testing.T) {
	st := newTestStore(t)
	s := newTestSession(t, st)

	addDesk(t, s, 437.5, 350)
	s.Handle(message(t, TypeObjectLabel, LabelPayload{Label: "work desk"}))

	raw, err := st.LoadLayout(context.Background(), "plan-test")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	var doc plan.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal saved layout: %v", err)
	}
	if len(doc.Objects) != 1 || doc.Objects[0].Label != "work desk" {
		t.Fatalf("saved doc = %+v, want one labelled desk", doc)
	}
}

func TestSessionResizeRebuildsRoom(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	addDesk(t, s, 437.5, 350)

	s.Handle(message(t, TypeRoomResize, ResizePayload{WidthUnits: 10, LengthUnits: 4}))

	st := s.Snapshot()
	if st.Room.WidthUnits != 10 || st.Room.Scale != 100 {
		t.Errorf("room = %g units at scale %g, want 10 at 100", st.Room.WidthUnits, st.Room.Scale)
	}
	if len(st.Objects) != 1 {
		t.Fatalf("objects = %d after resize, want 1", len(st.Objects))
	}
	// 1.4 m desk at scale 100 -> 140 px wide.
	if st.Objects[0].PixelWidth != 140 {
		t.Errorf("pixel width = %g after resize, want 140", st.Objects[0].PixelWidth)
	}
	if st.SelectedID != "" {
		t.Error("resize should clear the selection")
	}
}

func TestSessionResizeClampsObjects(t *testing.T) {
	s := newTestSession(t, newTestStore(t))

	// Desk parked near the right wall of the 875px-wide room.
	addDesk(t, s, 437.5, 350)
	s.Handle(message(t, TypePointerDown, PointerPayload{X: 437.5, Y: 350}))
	s.Handle(message(t, TypePointerMove, PointerPayload{X: 5000, Y: 350}))

	// Shrink the room: the saved pixel center is now out of bounds and must
	// be pulled back in.
	s.Handle(message(t, TypeRoomResize, ResizePayload{WidthUnits: 3, LengthUnits: 3}))

	st := s.Snapshot()
	o := st.Objects[0]
	if o.X+o.PixelWidth/2 > st.Room.PixelWidth+1e-9 {
		t.Errorf("object escapes resized room: center %g, half width %g, room %g",
			o.X, o.PixelWidth/2, st.Room.PixelWidth)
	}
}

func TestSessionRejectsInvalidResize(t *testing.T) {
	s := newTestSession(t, newTestStore(t))
	addDesk(t, s, 437.5, 350)

	s.Handle(message(t, TypeRoomResize, ResizePayload{WidthUnits: -2, LengthUnits: 3}))

	st := s.Snapshot()
	if st.Room.WidthUnits != 5 || len(st.Objects) != 1 {
		t.Error("invalid resize must leave the session untouched")
	}
}

func TestSessionClearsCorruptLayout(t *testing.T) {
	st := newTestStore(t)
	if err := st.SaveLayout(context.Background(), "plan-test", []byte("{not json")); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}

	s := newTestSession(t, st)

	// Fresh default layout, and the poisoned record is gone.
	if got := s.Snapshot().Room.WidthUnits; got != 5 {
		t.Errorf("room width = %g, want default 5", got)
	}
	if _, err := st.LoadLayout(context.Background(), "plan-test"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("LoadLayout after corrupt start = %v, want ErrNotFound", err)
	}
}

func TestSessionRestoresSavedLayout(t *testing.T) {
	st := newTestStore(t)

	first := newTestSession(t, st)
	addDesk(t, first, 300, 200)
	first.Handle(message(t, TypeObjectRotate, nil))

	second := newTestSession(t, st)
	snap := second.Snapshot()
	if len(snap.Objects) != 1 {
		t.Fatalf("restored %d objects, want 1", len(snap.Objects))
	}
	o := snap.Objects[0]
	if o.X != 300 || o.Y != 200 || o.Rotation != 10 {
		t.Errorf("restored object at (%g, %g) rot %g, want (300, 200) rot 10", o.X, o.Y, o.Rotation)
	}
}
