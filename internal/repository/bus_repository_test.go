package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/exam-bus-booking/internal/model"
)

func newBusRepo(t *testing.T) (*BusRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBusRepo(db), mock
}

var testBusCols = []string{"id", "name", "number", "capacity", "bus_type", "status",
	"from_city", "to_city", "travel_date", "departure_time", "price_cents",
	"created_at", "updated_at"}

func TestBusCreateMapsDuplicateNumber(t *testing.T) {
	r, mock := newBusRepo(t)
	mock.ExpectExec(`INSERT INTO buses`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'KA-01-1234' for key 'uq_number'"))

	b := model.Bus{Name: "Night Rider", Number: "KA-01-1234", Capacity: 40,
		BusType: model.BusTypeAC, Status: model.BusStatusActive}
	assert.ErrorIs(t, r.Create(context.Background(), &b), ErrNumberExists)
}

func TestBusCreatePopulatesIDAndTags(t *testing.T) {
	r, mock := newBusRepo(t)
	mock.ExpectExec(`INSERT INTO buses`).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`DELETE FROM bus_exams WHERE bus_id=\?`).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO bus_exams`).
		WithArgs(uint64(3), uint64(21), uint64(3), uint64(22)).
		WillReturnResult(sqlmock.NewResult(1, 2))

	b := model.Bus{Name: "Night Rider", Number: "KA-01-1234", Capacity: 40,
		BusType: model.BusTypeAC, Status: model.BusStatusActive,
		ExamIDs: []uint64{21, 22}}
	require.NoError(t, r.Create(context.Background(), &b))
	assert.Equal(t, uint64(3), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusGetByNameFold(t *testing.T) {
	r, mock := newBusRepo(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM buses WHERE LOWER\(name\)=LOWER\(\?\) LIMIT 1`).
		WithArgs("night rider").
		WillReturnRows(sqlmock.NewRows(testBusCols).
			AddRow(3, "Night Rider", "KA-01-1234", 40, model.BusTypeAC,
				model.BusStatusActive, "Mysore", "Bangalore", "2026-09-01",
				"05:30", 45000, now, now))
	mock.ExpectQuery(`SELECT exam_id FROM bus_exams WHERE bus_id=\?`).
		WillReturnRows(sqlmock.NewRows([]string{"exam_id"}))

	b, err := r.GetByNameFold(context.Background(), "night rider")
	require.NoError(t, err)
	assert.Equal(t, "Night Rider", b.Name)
}

func TestBusSearchFiltersAndJoins(t *testing.T) {
	r, mock := newBusRepo(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM buses b JOIN bus_exams be ON be\.bus_id = b\.id AND be\.exam_id = \? WHERE b\.status = 'ACTIVE' AND b\.from_city = \? AND b\.travel_date = \? ORDER BY b\.departure_time`).
		WithArgs(uint64(21), "Mysore", "2026-09-01").
		WillReturnRows(sqlmock.NewRows(testBusCols).
			AddRow(3, "Night Rider", "KA-01-1234", 40, model.BusTypeAC,
				model.BusStatusActive, "Mysore", "Bangalore", "2026-09-01",
				"05:30", 45000, now, now))
	mock.ExpectQuery(`SELECT exam_id FROM bus_exams WHERE bus_id=\?`).
		WillReturnRows(sqlmock.NewRows([]string{"exam_id"}).AddRow(21))

	got, err := r.Search(context.Background(), BusSearchFilter{
		FromCity: "Mysore", TravelDate: "2026-09-01", ExamID: 21,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []uint64{21}, got[0].ExamIDs)
}

func TestBusDeleteCleansRelatedRows(t *testing.T) {
	r, mock := newBusRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT from_city, to_city FROM buses WHERE id=\?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"from_city", "to_city"}).
			AddRow("Mysore", "Bangalore"))
	mock.ExpectExec(`DELETE FROM recommendations WHERE from_city=\? AND to_city=\?`).
		WithArgs("Mysore", "Bangalore").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM bus_exams WHERE bus_id=\?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM buses WHERE id=\?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusDeleteNotFound(t *testing.T) {
	r, mock := newBusRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT from_city, to_city FROM buses WHERE id=\?`).
		WillReturnRows(sqlmock.NewRows([]string{"from_city", "to_city"}))
	mock.ExpectRollback()

	assert.ErrorIs(t, r.Delete(context.Background(), 404), ErrBusNotFound)
}
