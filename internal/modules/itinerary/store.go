// README: Itinerary archive backed by PostgreSQL.
package itinerary

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultListLimit is used when no limit is given.
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ClampLimit maps limit into [1, MaxListLimit]; non-positive values select
// DefaultListLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Save inserts rec and fills in its generated ID.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO itineraries (conversation_id, uid, destination, prompt, content, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING id`,
		rec.ConversationID, rec.UID, rec.Destination, rec.Prompt, rec.Content, rec.CreatedAt,
	).Scan(&rec.ID)
}

// List returns the newest itineraries of a conversation first.
func (s *Store) List(ctx context.Context, conversationID string, limit int) ([]Record, error) {
	limit = ClampLimit(limit)
	rows, err := s.db.Query(ctx, `
		SELECT id, conversation_id, COALESCE(uid, ''), destination, prompt, content, created_at
		FROM itineraries
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.UID, &r.Destination, &r.Prompt, &r.Content, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
