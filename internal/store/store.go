// Package store persists users, plans and layout documents. Two drivers
// implement the same interface: a local SQLite file (the default) and
// Postgres for shared deployments.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type User struct {
	ID          string
	Email       string
	Password    string // bcrypt hash
	DisplayName string
	CreatedAt   time.Time
}

type Plan struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence boundary. Each plan has exactly one layout slot
// holding the serialized layout document; saving overwrites it in place.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)

	CreatePlan(ctx context.Context, p Plan) error
	GetPlan(ctx context.Context, planID string) (Plan, error)
	ListPlans(ctx context.Context, ownerID string) ([]Plan, error)
	DeletePlan(ctx context.Context, planID string) error

	SaveLayout(ctx context.Context, planID string, doc []byte) error
	LoadLayout(ctx context.Context, planID string) ([]byte, error)
	DeleteLayout(ctx context.Context, planID string) error

	Close()
}
