package repository

import (
	"context"
	"database/sql"

	"github.com/avikr/exam-bus-booking/internal/model"
)

// RecommendationRepo provides CRUD operations for route
// recommendations shown on the landing pages.  Entries derived from a
// bus route are deleted alongside the bus (see BusRepo.Delete).
type RecommendationRepo struct {
	db *sql.DB
}

// NewRecommendationRepo returns a new RecommendationRepo bound to the
// given database.
func NewRecommendationRepo(db *sql.DB) *RecommendationRepo {
	return &RecommendationRepo{db: db}
}

// Create inserts a recommendation and populates the generated ID.
func (r *RecommendationRepo) Create(ctx context.Context, rec *model.Recommendation) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recommendations (from_city, to_city, exam_id, note) VALUES (?,?,?,?)`,
		rec.FromCity, rec.ToCity, rec.ExamID, rec.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// List returns all recommendations, newest first.
func (r *RecommendationRepo) List(ctx context.Context) ([]model.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_city, to_city, exam_id, note, created_at FROM recommendations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs := make([]model.Recommendation, 0)
	for rows.Next() {
		var rec model.Recommendation
		var examID sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.FromCity, &rec.ToCity, &examID, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if examID.Valid {
			v := uint64(examID.Int64)
			rec.ExamID = &v
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a recommendation by id.  sql.ErrNoRows is returned
// when it does not exist.
func (r *RecommendationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recommendations WHERE id=?`, id)
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
