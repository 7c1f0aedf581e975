package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/vicare/internal/model"
)

// AppointmentRepo provides ownership-scoped access to the appointments
// table.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// ListByUser returns the user's appointments in chronological order, so
// the next upcoming visit comes first on the dashboard.
func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,doctor,date,location,reason,notes,created_at FROM appointments WHERE user_id=? ORDER BY date ASC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Doctor, &a.Date, &a.Location,
			&a.Reason, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Create inserts an appointment for the user and returns its ID.
func (r *AppointmentRepo) Create(ctx context.Context, a model.Appointment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO appointments (user_id,doctor,date,location,reason,notes) VALUES (?,?,?,?,?,?)",
		a.UserID, a.Doctor, a.Date, a.Location, a.Reason, a.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes one appointment owned by the user.
func (r *AppointmentRepo) Delete(ctx context.Context, userID, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM appointments WHERE id=? AND user_id=?", id, userID)
	return err
}
