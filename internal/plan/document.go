package plan

import (
	"fmt"
	"log/slog"
	"math"
)

// Document is the persisted layout schema: the room's physical size plus one
// record per placed object. Object x/y are pixel-space center coordinates
// under the scale in effect at save time; the room dimensions are restored
// verbatim, so the recomputed scale matches and the coordinates stay valid.
type Document struct {
	Room    RoomRecord     `json:"room"`
	Objects []ObjectRecord `json:"objects"`
}

// RoomRecord is the persisted room size in physical units.
type RoomRecord struct {
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// ObjectRecord is one persisted placed object.
type ObjectRecord struct {
	TypeID      string  `json:"typeId"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	WidthUnits  float64 `json:"widthUnits"`
	LengthUnits float64 `json:"lengthUnits"`
	Color       string  `json:"color"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation"`
}

// Snapshot captures the layout's current contents as a persistable document.
func Snapshot(l *Layout) Document {
	doc := Document{
		Room: RoomRecord{
			Width:  l.room.WidthUnits(),
			Length: l.room.LengthUnits(),
		},
		Objects: make([]ObjectRecord, 0, len(l.objects)),
	}
	for _, o := range l.objects {
		x, y := o.Center()
		doc.Objects = append(doc.Objects, ObjectRecord{
			TypeID:      o.TypeID(),
			Name:        o.Name(),
			Label:       o.Label(),
			WidthUnits:  o.WidthUnits(),
			LengthUnits: o.LengthUnits(),
			Color:       o.Color(),
			X:           x,
			Y:           y,
			Rotation:    o.Rotation(),
		})
	}
	return doc
}

// Restore rebuilds a room and layout from a persisted document. The room must
// be valid or the whole restore fails; object records are validated
// individually and bad ones are skipped with a warning, so a single corrupt
// record cannot lose the rest of the layout. The restored layout has no
// selection and no change subscriber.
func Restore(doc Document, maxPixelWidth, maxPixelHeight float64, nextID IDFunc) (*Room, *Layout, error) {
	room, err := NewRoom(doc.Room.Width, doc.Room.Length, maxPixelWidth, maxPixelHeight)
	if err != nil {
		return nil, nil, err
	}

	layout := NewLayout(room, nextID)
	for i, rec := range doc.Objects {
		if err := rec.validate(); err != nil {
			slog.Warn("skipping invalid layout record", "index", i, "typeId", rec.TypeID, "error", err)
			continue
		}
		obj := newObject(layout.nextID(), Definition{
			TypeID:      rec.TypeID,
			Name:        rec.Name,
			Label:       rec.Label,
			WidthUnits:  rec.WidthUnits,
			LengthUnits: rec.LengthUnits,
			Color:       rec.Color,
		}, rec.X, rec.Y, room.Scale())
		rot := math.Mod(rec.Rotation, 360)
		if rot < 0 {
			rot += 360
		}
		obj.rotation = rot
		layout.objects = append(layout.objects, obj)
	}

	return room, layout, nil
}

func (rec ObjectRecord) validate() error {
	def := Definition{
		TypeID:      rec.TypeID,
		Name:        rec.Name,
		WidthUnits:  rec.WidthUnits,
		LengthUnits: rec.LengthUnits,
	}
	if err := def.Validate(); err != nil {
		return err
	}
	if !isFinite(rec.X) || !isFinite(rec.Y) || !isFinite(rec.Rotation) {
		return fmt.Errorf("%w: non-finite placement", ErrInvalidDefinition)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
