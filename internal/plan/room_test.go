package plan

import (
	"errors"
	"math"
	"testing"
)

func TestNewRoomDerivesScale(t *testing.T) {
	// A 5x4 room in a 1000x700 canvas: the height is the limiting axis,
	// min(1000/5, 700/4) = 175 px per unit.
	room, err := NewRoom(5, 4, 1000, 700)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}

	if got := room.Scale(); got != 175 {
		t.Errorf("Scale() = %g, want 175", got)
	}
	w, h := room.PixelSize()
	if w != 875 || h != 700 {
		t.Errorf("PixelSize() = (%g, %g), want (875, 700)", w, h)
	}
}

func TestNewRoomRejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, length float64
	}{
		{"zero width", 0, 4},
		{"zero length", 5, 0},
		{"negative width", -5, 4},
		{"nan", math.NaN(), 4},
		{"inf", 5, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRoom(tt.width, tt.length, 1000, 700); !errors.Is(err, ErrInvalidDimension) {
				t.Errorf("NewRoom(%g, %g) error = %v, want ErrInvalidDimension", tt.width, tt.length, err)
			}
		})
	}
}

func TestRoomConversions(t *testing.T) {
	room, err := NewRoom(5, 4, 1000, 700)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}

	if got := room.ToPixels(2); got != 350 {
		t.Errorf("ToPixels(2) = %g, want 350", got)
	}
	if got := room.ToUnits(350); got != 2 {
		t.Errorf("ToUnits(350) = %g, want 2", got)
	}
}

func TestRoomToUnitsZeroScale(t *testing.T) {
	// A zero-size canvas degenerates the scale to 0; the conversion guards
	// the division instead of returning Inf.
	room, err := NewRoom(5, 4, 0, 0)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	if got := room.ToUnits(100); got != 0 {
		t.Errorf("ToUnits(100) with zero scale = %g, want 0", got)
	}
}
