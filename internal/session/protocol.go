package session

import "encoding/json"

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client → server
	TypePointerDown    = "pointer.down"
	TypePointerMove    = "pointer.move"
	TypePointerUp      = "pointer.up"
	TypeObjectAdd      = "object.add"
	TypeObjectRotate   = "object.rotate"
	TypeObjectDelete   = "object.delete"
	TypeObjectLabel    = "object.label"
	TypeSelectionClear = "selection.clear"
	TypeRoomResize     = "room.resize"

	// Server → client
	TypeWelcome = "welcome"
	TypeState   = "state"
	TypeError   = "error"
)

// PointerPayload carries a pointer position in canvas pixel coordinates.
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AddObjectPayload places a new object. When TypeID names a catalog entry
// the catalog's size and color fill any omitted fields; otherwise width and
// length are required.
type AddObjectPayload struct {
	TypeID      string  `json:"typeId"`
	Label       string  `json:"label"`
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
	Color       string  `json:"color"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

type LabelPayload struct {
	Label string `json:"label"`
}

type ResizePayload struct {
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type WelcomePayload struct {
	PlanID string `json:"planId"`
	State  State  `json:"state"`
}

// RoomState is the room portion of a state snapshot.
type RoomState struct {
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
	Scale       float64 `json:"scale"`
	PixelWidth  float64 `json:"pixelWidth"`
	PixelHeight float64 `json:"pixelHeight"`
}

// ObjectState is one object in a state snapshot, carrying everything a
// renderer needs: pixel center, pixel size, rotation, selection, color and
// label.
type ObjectState struct {
	ID          string  `json:"id"`
	TypeID      string  `json:"typeId"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
	PixelWidth  float64 `json:"pixelWidth"`
	PixelLength float64 `json:"pixelLength"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation"`
	Selected    bool    `json:"selected"`
	Color       string  `json:"color"`
}

// State is the full snapshot pushed after every layout change. Objects are
// in z-order.
type State struct {
	Room       RoomState     `json:"room"`
	Objects    []ObjectState `json:"objects"`
	SelectedID string        `json:"selectedId,omitempty"`
}
