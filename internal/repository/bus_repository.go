package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avikr/exam-bus-booking/internal/model"
)

// BusRepo provides CRUD operations for buses and their exam tags.
// Buses are the authoritative source of capacity and per-seat price
// for the admission controller.  Exam tags live in the bus_exams join
// table and are replaced wholesale on create/update.
type BusRepo struct {
	db *sql.DB
}

// NewBusRepo returns a new BusRepo bound to the given database.
func NewBusRepo(db *sql.DB) *BusRepo { return &BusRepo{db: db} }

const busColumns = `id, name, number, capacity, bus_type, status, from_city, to_city, travel_date, departure_time, price_cents, created_at, updated_at`

func scanBus(row interface{ Scan(...interface{}) error }) (model.Bus, error) {
	var b model.Bus
	err := row.Scan(&b.ID, &b.Name, &b.Number, &b.Capacity, &b.BusType, &b.Status,
		&b.FromCity, &b.ToCity, &b.TravelDate, &b.DepartureTime, &b.PriceCents,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a bus and its exam tags.  The generated ID is
// populated on the provided record.  A duplicate registration number
// yields ErrNumberExists.
func (r *BusRepo) Create(ctx context.Context, b *model.Bus) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO buses (name, number, capacity, bus_type, status, from_city, to_city, travel_date, departure_time, price_cents)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.Name, b.Number, b.Capacity, b.BusType, b.Status,
		b.FromCity, b.ToCity, b.TravelDate, b.DepartureTime, b.PriceCents)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.replaceExamTags(ctx, b.ID, b.ExamIDs)
}

// Update rewrites a bus row and replaces its exam tags.  It returns
// ErrBusNotFound when the bus does not exist and ErrNumberExists on a
// registration number collision.
func (r *BusRepo) Update(ctx context.Context, b *model.Bus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE buses SET name=?, number=?, capacity=?, bus_type=?, status=?, from_city=?, to_city=?, travel_date=?, departure_time=?, price_cents=?
		 WHERE id=?`,
		b.Name, b.Number, b.Capacity, b.BusType, b.Status,
		b.FromCity, b.ToCity, b.TravelDate, b.DepartureTime, b.PriceCents, b.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNumberExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows for no-op updates too, so
		// confirm existence before reporting not found.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM buses WHERE id=? LIMIT 1`, b.ID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrBusNotFound
			}
			return err
		}
	}
	return r.replaceExamTags(ctx, b.ID, b.ExamIDs)
}

// Delete removes a bus, its exam tags and the recommendation entries
// derived from its route.  Historical bookings are kept; their seat
// rows reference the bus id only for uniqueness scoping.
func (r *BusRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var fromCity, toCity string
	err = tx.QueryRowContext(ctx, `SELECT from_city, to_city FROM buses WHERE id=?`, id).Scan(&fromCity, &toCity)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrBusNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE from_city=? AND to_city=?`, fromCity, toCity); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bus_exams WHERE bus_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM buses WHERE id=?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a bus by its primary key.  ErrBusNotFound is
// returned when no row matches.
func (r *BusRepo) GetByID(ctx context.Context, id uint64) (model.Bus, error) {
	b, err := scanBus(r.db.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Bus{}, ErrBusNotFound
		}
		return model.Bus{}, err
	}
	b.ExamIDs, err = r.examTags(ctx, b.ID)
	return b, err
}

// GetByName fetches a bus by its exact display name.
func (r *BusRepo) GetByName(ctx context.Context, name string) (model.Bus, error) {
	b, err := scanBus(r.db.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE name=? LIMIT 1`, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Bus{}, ErrBusNotFound
		}
		return model.Bus{}, err
	}
	b.ExamIDs, err = r.examTags(ctx, b.ID)
	return b, err
}

// GetByNameFold fetches a bus by case-insensitive name match.  It is
// the last tier of the booking lookup fallback chain.
func (r *BusRepo) GetByNameFold(ctx context.Context, name string) (model.Bus, error) {
	b, err := scanBus(r.db.QueryRowContext(ctx,
		`SELECT `+busColumns+` FROM buses WHERE LOWER(name)=LOWER(?) LIMIT 1`, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Bus{}, ErrBusNotFound
		}
		return model.Bus{}, err
	}
	b.ExamIDs, err = r.examTags(ctx, b.ID)
	return b, err
}

// BusSearchFilter narrows Search results.  Zero values mean "any".
type BusSearchFilter struct {
	FromCity   string
	ToCity     string
	TravelDate string
	ExamID     uint64
}

// Search returns ACTIVE buses matching the filter, ordered by
// departure time.  Guests use this to find services for their route
// and exam date.
func (r *BusRepo) Search(ctx context.Context, f BusSearchFilter) ([]model.Bus, error) {
	query := `SELECT ` + qualify(busColumns, "b") + ` FROM buses b`
	args := make([]interface{}, 0, 4)
	if f.ExamID != 0 {
		query += ` JOIN bus_exams be ON be.bus_id = b.id AND be.exam_id = ?`
		args = append(args, f.ExamID)
	}
	query += ` WHERE b.status = 'ACTIVE'`
	if f.FromCity != "" {
		query += ` AND b.from_city = ?`
		args = append(args, f.FromCity)
	}
	if f.ToCity != "" {
		query += ` AND b.to_city = ?`
		args = append(args, f.ToCity)
	}
	if f.TravelDate != "" {
		query += ` AND b.travel_date = ?`
		args = append(args, f.TravelDate)
	}
	query += ` ORDER BY b.departure_time`
	return r.queryBuses(ctx, query, args...)
}

// List returns all buses regardless of status for the admin
// back-office, newest first.
func (r *BusRepo) List(ctx context.Context) ([]model.Bus, error) {
	return r.queryBuses(ctx, `SELECT `+busColumns+` FROM buses ORDER BY created_at DESC`)
}

func (r *BusRepo) queryBuses(ctx context.Context, query string, args ...interface{}) ([]model.Bus, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	buses := make([]model.Bus, 0)
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range buses {
		tags, err := r.examTags(ctx, buses[i].ID)
		if err != nil {
			return nil, err
		}
		buses[i].ExamIDs = tags
	}
	return buses, nil
}

func (r *BusRepo) examTags(ctx context.Context, busID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT exam_id FROM bus_exams WHERE bus_id=? ORDER BY exam_id`, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *BusRepo) replaceExamTags(ctx context.Context, busID uint64, examIDs []uint64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bus_exams WHERE bus_id=?`, busID); err != nil {
		return err
	}
	if len(examIDs) == 0 {
		return nil
	}
	query := `INSERT INTO bus_exams (bus_id, exam_id) VALUES `
	args := make([]interface{}, 0, len(examIDs)*2)
	for i, eid := range examIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, busID, eid)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// qualify prefixes each comma-separated column with a table alias.
func qualify(columns, alias string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
