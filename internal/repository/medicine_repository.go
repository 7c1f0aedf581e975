package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/vicare/internal/model"
)

// MedicineRepo provides ownership-scoped access to the medicines table.
// Every query takes the resolved user id; a record belonging to another
// user is indistinguishable from a record that does not exist.
type MedicineRepo struct{ DB *sql.DB }

func NewMedicineRepo(db *sql.DB) *MedicineRepo { return &MedicineRepo{DB: db} }

// ListByUser returns the user's medicines, newest first.
func (r *MedicineRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Medicine, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,name,dose,frequency,notes,start_date,end_date,created_at FROM medicines WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Medicine{}
	for rows.Next() {
		var m model.Medicine
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Dose, &m.Frequency,
			&m.Notes, &m.StartDate, &m.EndDate, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Create inserts a medicine for the user and returns its ID.
func (r *MedicineRepo) Create(ctx context.Context, m model.Medicine) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO medicines (user_id,name,dose,frequency,notes,start_date,end_date) VALUES (?,?,?,?,?,?,?)",
		m.UserID, m.Name, m.Dose, m.Frequency, m.Notes, m.StartDate, m.EndDate)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes one medicine owned by the user. Deleting an id that is
// absent or owned by someone else is a no-op.
func (r *MedicineRepo) Delete(ctx context.Context, userID, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM medicines WHERE id=? AND user_id=?", id, userID)
	return err
}
