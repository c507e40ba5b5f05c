package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    password     TEXT NOT NULL,
    display_name TEXT NOT NULL,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS plans (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    owner_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS layouts (
    plan_id  TEXT PRIMARY KEY REFERENCES plans(id) ON DELETE CASCADE,
    document BLOB NOT NULL,
    saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore persists everything in a single local database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and applies
// the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000&_pragma=foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, email, password, display_name)
        VALUES (?, ?, ?, ?)
    `, u.ID, u.Email, u.Password, u.DisplayName)
	if err != nil {
		if isSQLiteUnique(err) {
			return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, email, password, display_name, created_at
        FROM users WHERE email = ?
    `, email)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, email, password, display_name, created_at
        FROM users WHERE id = ?
    `, id)
	return scanUser(row)
}

func (s *SQLiteStore) CreatePlan(ctx context.Context, p Plan) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO plans (id, name, owner_id) VALUES (?, ?, ?)
    `, p.ID, p.Name, p.OwnerID)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, planID string) (Plan, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM plans WHERE id = ?
    `, planID)

	var p Plan
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context, ownerID string) ([]Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, owner_id, created_at, updated_at
        FROM plans WHERE owner_id = ? ORDER BY created_at
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

func (s *SQLiteStore) DeletePlan(ctx context.Context, planID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, planID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveLayout(ctx context.Context, planID string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO layouts (plan_id, document, saved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(plan_id) DO UPDATE SET document = excluded.document, saved_at = CURRENT_TIMESTAMP
    `, planID, doc)
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        UPDATE plans SET updated_at = CURRENT_TIMESTAMP WHERE id = ?
    `, planID)
	if err != nil {
		return fmt.Errorf("touch plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadLayout(ctx context.Context, planID string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT document FROM layouts WHERE plan_id = ?`, planID)

	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) DeleteLayout(ctx context.Context, planID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE plan_id = ?`, planID)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func isSQLiteUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
