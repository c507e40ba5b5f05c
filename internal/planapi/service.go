package planapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/loremIpsum6321/roomplanner/internal/plan"
	"github.com/loremIpsum6321/roomplanner/internal/store"
	"github.com/loremIpsum6321/roomplanner/internal/typeid"
)

var (
	ErrNotFound  = errors.New("plan not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	store store.Store
	maxW  float64
	maxH  float64
}

func NewService(st store.Store, maxCanvasWidth, maxCanvasHeight float64) *Service {
	return &Service{store: st, maxW: maxCanvasWidth, maxH: maxCanvasHeight}
}

type Plan struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Create makes a plan with an empty layout for a widthUnits×lengthUnits
// room. The dimensions are validated by constructing the room before
// anything is persisted.
func (s *Service) Create(ctx context.Context, name string, widthUnits, lengthUnits float64, ownerID string) (*Plan, error) {
	if _, err := plan.NewRoom(widthUnits, lengthUnits, s.maxW, s.maxH); err != nil {
		return nil, err
	}

	planID := typeid.NewPlanID()
	if err := s.store.CreatePlan(ctx, store.Plan{
		ID:      planID,
		Name:    name,
		OwnerID: ownerID,
	}); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	doc := plan.Document{
		Room:    plan.RoomRecord{Width: widthUnits, Length: lengthUnits},
		Objects: []plan.ObjectRecord{},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty layout: %w", err)
	}
	if err := s.store.SaveLayout(ctx, planID, raw); err != nil {
		return nil, fmt.Errorf("seed layout: %w", err)
	}

	p, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return toPlan(p), nil
}

func (s *Service) Get(ctx context.Context, planID, userID string) (*Plan, error) {
	p, err := s.owned(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	return toPlan(p), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Plan, error) {
	stored, err := s.store.ListPlans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	plans := make([]Plan, len(stored))
	for i, p := range stored {
		plans[i] = *toPlan(p)
	}
	return plans, nil
}

func (s *Service) Delete(ctx context.Context, planID, userID string) error {
	if _, err := s.owned(ctx, planID, userID); err != nil {
		return err
	}
	return s.store.DeletePlan(ctx, planID)
}

// Layout returns the persisted layout document verbatim.
func (s *Service) Layout(ctx context.Context, planID, userID string) (json.RawMessage, error) {
	if _, err := s.owned(ctx, planID, userID); err != nil {
		return nil, err
	}

	raw, err := s.store.LoadLayout(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return raw, nil
}

// Restore rebuilds the room and objects of the persisted layout, for
// rendering a plan that has no live session.
func (s *Service) Restore(ctx context.Context, planID, userID string) (*plan.Room, *plan.Layout, error) {
	raw, err := s.Layout(ctx, planID, userID)
	if err != nil {
		return nil, nil, err
	}

	var doc plan.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode layout: %w", err)
	}
	return plan.Restore(doc, s.maxW, s.maxH, nil)
}

// CheckAccess reports whether userID may open planID, for the websocket
// endpoint.
func (s *Service) CheckAccess(ctx context.Context, planID, userID string) error {
	_, err := s.owned(ctx, planID, userID)
	return err
}

func (s *Service) owned(ctx context.Context, planID, userID string) (store.Plan, error) {
	// A malformed id cannot name a plan, so skip the store round trip.
	if err := typeid.Validate(planID, typeid.PrefixPlan); err != nil {
		return store.Plan{}, ErrNotFound
	}

	p, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Plan{}, ErrNotFound
		}
		return store.Plan{}, fmt.Errorf("get plan: %w", err)
	}
	if p.OwnerID != userID {
		return store.Plan{}, ErrForbidden
	}
	return p, nil
}

func toPlan(p store.Plan) *Plan {
	return &Plan{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
