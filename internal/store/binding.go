package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/handmaze/internal/maze"
)

// Binding maps one classifier label to a maze direction.
type Binding struct {
	Label     string         `json:"label"`
	Direction maze.Direction `json:"direction"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BindingRepository provides CRUD operations for label bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

// SeedDefaults inserts the default label table when no bindings exist yet.
// It reports whether anything was inserted.
func (r *BindingRepository) SeedDefaults() (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM bindings`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO bindings (label, direction, created_at, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	now := time.Now()
	for label, dir := range maze.DefaultTable() {
		if _, err := stmt.Exec(label, dir.String(), now, now); err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

// Upsert creates or replaces the binding for b.Label.
func (r *BindingRepository) Upsert(b *Binding) error {
	if b.Label == "" {
		return errors.New("label is required")
	}

	now := time.Now()
	b.UpdatedAt = now
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}

	_, err := r.db.Exec(
		`INSERT INTO bindings (label, direction, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(label) DO UPDATE SET direction = excluded.direction, updated_at = excluded.updated_at`,
		b.Label, b.Direction.String(), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// Get retrieves the binding for a label.
func (r *BindingRepository) Get(label string) (*Binding, error) {
	b := &Binding{}
	var dir string

	err := r.db.QueryRow(
		`SELECT label, direction, created_at, updated_at FROM bindings WHERE label = ?`,
		label,
	).Scan(&b.Label, &dir, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if b.Direction, err = maze.ParseDirection(dir); err != nil {
		return nil, fmt.Errorf("binding %s: %w", label, err)
	}
	return b, nil
}

// List retrieves all bindings ordered by label.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT label, direction, created_at, updated_at FROM bindings ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b := &Binding{}
		var dir string
		if err := rows.Scan(&b.Label, &dir, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if b.Direction, err = maze.ParseDirection(dir); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.Label, err)
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Table returns all bindings as a resolver table.
func (r *BindingRepository) Table() (maze.Table, error) {
	bindings, err := r.List()
	if err != nil {
		return nil, err
	}

	table := make(maze.Table, len(bindings))
	for _, b := range bindings {
		table[b.Label] = b.Direction
	}
	return table, nil
}

// Delete removes the binding for a label.
func (r *BindingRepository) Delete(label string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE label = ?`, label)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}
