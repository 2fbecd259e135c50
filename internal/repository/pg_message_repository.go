package repository

import (
	"context"

	"github.com/romeoalpha/admin/internal/model"
)

// PgMessageRepository reads the contact inbox from PostgreSQL.
type PgMessageRepository struct {
	db dbtx
}

// NewPgMessageRepository creates a PgMessageRepository backed by the given pool.
func NewPgMessageRepository(db dbtx) *PgMessageRepository {
	return &PgMessageRepository{db: db}
}

// ListMessages returns every message, newest first.
func (r *PgMessageRepository) ListMessages(ctx context.Context) ([]model.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, email, COALESCE(subject, ''), message, created_at, is_read
		 FROM messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Subject, &m.Body, &m.CreatedAt, &m.Read); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
