package repository

import (
	"context"
	"database/sql"
)

// SupportRepo stores inbound support messages.
type SupportRepo struct{ DB *sql.DB }

func NewSupportRepo(db *sql.DB) *SupportRepo { return &SupportRepo{DB: db} }

// Create inserts a support message for the user and returns its ID.
func (r *SupportRepo) Create(ctx context.Context, userID uint64, message string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO support_messages (user_id, message) VALUES (?,?)",
		userID, message)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
