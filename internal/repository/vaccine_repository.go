package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/vicare/internal/model"
)

// VaccineRepo provides ownership-scoped access to the vaccines table.
type VaccineRepo struct{ DB *sql.DB }

func NewVaccineRepo(db *sql.DB) *VaccineRepo { return &VaccineRepo{DB: db} }

// ListByUser returns the user's vaccines, most recent dose first.
func (r *VaccineRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Vaccine, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,name,date,provider,notes,created_at FROM vaccines WHERE user_id=? ORDER BY date DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Vaccine{}
	for rows.Next() {
		var v model.Vaccine
		if err := rows.Scan(&v.ID, &v.UserID, &v.Name, &v.Date, &v.Provider,
			&v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Create inserts a vaccine for the user and returns its ID.
func (r *VaccineRepo) Create(ctx context.Context, v model.Vaccine) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO vaccines (user_id,name,date,provider,notes) VALUES (?,?,?,?,?)",
		v.UserID, v.Name, v.Date, v.Provider, v.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes one vaccine owned by the user.
func (r *VaccineRepo) Delete(ctx context.Context, userID, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM vaccines WHERE id=? AND user_id=?", id, userID)
	return err
}
