package repository

import (
	"context"
	"database/sql"

	"github.com/avikr/exam-bus-booking/internal/model"
)

// ExamRepo provides CRUD operations for exams that buses can be
// tagged with.
type ExamRepo struct {
	db *sql.DB
}

// NewExamRepo returns a new ExamRepo bound to the given database.
func NewExamRepo(db *sql.DB) *ExamRepo { return &ExamRepo{db: db} }

// Create inserts an exam and populates the generated ID.  A duplicate
// name yields ErrConflict.
func (r *ExamRepo) Create(ctx context.Context, e *model.Exam) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO exams (name, exam_date, city_id) VALUES (?,?,?)`,
		e.Name, e.ExamDate, e.CityID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// List returns all exams ordered by exam date.
func (r *ExamRepo) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, exam_date, city_id, created_at FROM exams ORDER BY exam_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	exams := make([]model.Exam, 0)
	for rows.Next() {
		var e model.Exam
		var cityID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &e.ExamDate, &cityID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if cityID.Valid {
			v := uint64(cityID.Int64)
			e.CityID = &v
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Delete removes an exam and its bus tags.  sql.ErrNoRows is returned
// when the exam does not exist.
func (r *ExamRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bus_exams WHERE exam_id=?`, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
