package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handmaze/internal/maze"
)

// Event is one recorded pipeline outcome.
type Event struct {
	ID          string         `json:"id"`
	GestureName string         `json:"gesture_name"`
	Label       string         `json:"label"`
	Confidence  float64        `json:"confidence"`
	Direction   maze.Direction `json:"direction"`
	Reason      maze.Reason    `json:"reason"`
	CreatedAt   time.Time      `json:"created_at"`
}

// EventRepository records and lists outcomes.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts an event, assigning ID and CreatedAt when unset.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, gesture_name, label, confidence, direction, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GestureName, e.Label, e.Confidence, e.Direction.String(), string(e.Reason), e.CreatedAt,
	)
	return err
}

// List returns the most recent events, newest first. A non-positive limit
// returns every event.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, gesture_name, label, confidence, direction, reason, created_at
		 FROM events ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var dir, reason string
		if err := rows.Scan(&e.ID, &e.GestureName, &e.Label, &e.Confidence, &dir, &reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		// Unknown stored directions read back as none.
		e.Direction, _ = maze.ParseDirection(dir)
		e.Reason = maze.Reason(reason)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the number of stored events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// Prune keeps the newest keep events and deletes the rest. It returns the
// number of rows removed.
func (r *EventRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := r.db.Exec(
		`DELETE FROM events WHERE rowid NOT IN (
			SELECT rowid FROM events ORDER BY rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
