package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    password     TEXT NOT NULL,
    display_name TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS plans (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    owner_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS layouts (
    plan_id  TEXT PRIMARY KEY REFERENCES plans(id) ON DELETE CASCADE,
    document JSONB NOT NULL,
    saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresStore persists to a shared Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO users (id, email, password, display_name)
        VALUES ($1, $2, $3, $4)
    `, u.ID, u.Email, u.Password, u.DisplayName)
	if err != nil {
		if isPostgresUnique(err) {
			return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, email, password, display_name, created_at
        FROM users WHERE email = $1
    `, email)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, email, password, display_name, created_at
        FROM users WHERE id = $1
    `, id)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) CreatePlan(ctx context.Context, p Plan) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO plans (id, name, owner_id) VALUES ($1, $2, $3)
    `, p.ID, p.Name, p.OwnerID)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, planID string) (Plan, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM plans WHERE id = $1
    `, planID)

	var p Plan
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, ownerID string) ([]Plan, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM plans WHERE owner_id = $1 ORDER BY created_at
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *PostgresStore) DeletePlan(ctx context.Context, planID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveLayout(ctx context.Context, planID string, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO layouts (plan_id, document, saved_at) VALUES ($1, $2, now())
        ON CONFLICT (plan_id) DO UPDATE SET document = EXCLUDED.document, saved_at = now()
    `, planID, doc)
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}

	_, err = s.pool.Exec(ctx, `UPDATE plans SET updated_at = now() WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("touch plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadLayout(ctx context.Context, planID string) ([]byte, error) {
	row := s.pool.QueryRow(ctx, `SELECT document FROM layouts WHERE plan_id = $1`, planID)

	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) DeleteLayout(ctx context.Context, planID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM layouts WHERE plan_id = $1`, planID)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func isPostgresUnique(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
