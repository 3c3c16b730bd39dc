package repository

import (
	"context"
	"database/sql"

	"github.com/avikr/exam-bus-booking/internal/model"
)

// CityRepo provides CRUD operations for route endpoint cities.
type CityRepo struct {
	db *sql.DB
}

// NewCityRepo returns a new CityRepo bound to the given database.
func NewCityRepo(db *sql.DB) *CityRepo { return &CityRepo{db: db} }

// Create inserts a city and populates the generated ID.  A duplicate
// name yields ErrConflict.
func (r *CityRepo) Create(ctx context.Context, c *model.City) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cities (name, state) VALUES (?,?)`, c.Name, c.State)
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
	c.ID = uint64(id)
	return nil
}

// List returns all cities ordered by name.
func (r *CityRepo) List(ctx context.Context) ([]model.City, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, state, created_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cities := make([]model.City, 0)
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// Delete removes a city by id.  sql.ErrNoRows is returned when the
// city does not exist.
func (r *CityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cities WHERE id=?`, id)
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
