package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vicare/internal/model"
)

func newMedicineMock(t *testing.T) (*MedicineRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMedicineRepo(db), mock
}

func TestMedicineRepo_ListByUser(t *testing.T) {
	repo, mock := newMedicineMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "dose", "frequency", "notes", "start_date", "end_date", "created_at",
	}).
		AddRow(2, 7, "Ibuprofen", "200mg", "as needed", "", nil, nil, now).
		AddRow(1, 7, "Aspirin", "100mg", "daily", "with food", now, nil, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id,user_id,name,dose,frequency,notes,start_date,end_date,created_at FROM medicines WHERE user_id=? ORDER BY created_at DESC").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Ibuprofen", items[0].Name)
	assert.Nil(t, items[0].StartDate)
	assert.NotNil(t, items[1].StartDate)
}

func TestMedicineRepo_ListByUser_Empty(t *testing.T) {
	repo, mock := newMedicineMock(t)

	mock.ExpectQuery("SELECT id,user_id,name,dose,frequency,notes,start_date,end_date,created_at FROM medicines WHERE user_id=? ORDER BY created_at DESC").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.ListByUser(context.Background(), 9)
	require.NoError(t, err)
	// Empty list serializes as [] not null.
	assert.NotNil(t, items)
	assert.Len(t, items, 0)
}

func TestMedicineRepo_Create(t *testing.T) {
	repo, mock := newMedicineMock(t)

	mock.ExpectExec("INSERT INTO medicines (user_id,name,dose,frequency,notes,start_date,end_date) VALUES (?,?,?,?,?,?,?)").
		WithArgs(uint64(7), "Aspirin", "100mg", "daily", "", nil, nil).
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := repo.Create(context.Background(), model.Medicine{
		UserID: 7, Name: "Aspirin", Dose: "100mg", Frequency: "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
}

func TestMedicineRepo_Delete_ScopedToOwner(t *testing.T) {
	repo, mock := newMedicineMock(t)

	mock.ExpectExec("DELETE FROM medicines WHERE id=? AND user_id=?").
		WithArgs(uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Someone else's record: zero rows affected, still no error.
	require.NoError(t, repo.Delete(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
