package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avikr/exam-bus-booking/internal/model"
)

// BookingRepo provides persistence for bookings and their seat rows.
// Every seat granted to a booking is stored as its own row in
// booking_seats, where the (bus_id, travel_date, seat_label) tuple
// carries a unique key.  That key is the storage-level guarantee that
// no two non-rejected bookings ever hold the same seat: rejecting or
// deleting a booking removes its seat rows, which is what releases the
// seats back into the available pool.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so the admission controller can run
// the check-and-insert inside a single transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, bus_id, bus_name, route_from, route_to, travel_date, price_cents, status, payment_method, payment_ref, screenshot_path, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (model.Booking, error) {
	var (
		b          model.Booking
		paymentRef sql.NullString
		screenshot sql.NullString
	)
	err := row.Scan(&b.ID, &b.UserID, &b.BusID, &b.BusName, &b.RouteFrom, &b.RouteTo,
		&b.TravelDate, &b.PriceCents, &b.Status, &b.PaymentMethod,
		&paymentRef, &screenshot, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if paymentRef.Valid {
		v := paymentRef.String
		b.PaymentRef = &v
	}
	if screenshot.Valid {
		v := screenshot.String
		b.ScreenshotPath = &v
	}
	return b, nil
}

// CreateTx inserts a booking row within an existing transaction and
// populates the generated ID and timestamps on the record.  Seat rows
// are inserted separately via CreateSeatsTx.  The caller must commit
// or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, bus_id, bus_name, route_from, route_to, travel_date, price_cents, status, payment_method, payment_ref, screenshot_path)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.BusID, b.BusName, b.RouteFrom, b.RouteTo, b.TravelDate,
		b.PriceCents, b.Status, b.PaymentMethod, b.PaymentRef, b.ScreenshotPath)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM bookings WHERE id=?`, b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// CreateSeatsTx inserts one booking_seats row per seat label in a
// single statement.  A duplicate-key failure means another booking
// already holds one of the seats; it is mapped to ErrConflict so the
// admission controller can surface the conflicting labels.  Passing an
// empty slice has no effect and returns nil.
func (r *BookingRepo) CreateSeatsTx(ctx context.Context, tx *sql.Tx, bookingID, busID uint64, travelDate string, seatLabels []string) error {
	if len(seatLabels) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, bus_id, travel_date, seat_label) VALUES `
	args := make([]interface{}, 0, len(seatLabels)*4)
	for i, label := range seatLabels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, bookingID, busID, travelDate, label)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// TakenSeatsTx returns the seat labels currently claimed for a
// (bus, date) pair, locking the matching rows for the duration of the
// transaction.  The admission controller calls this inside its
// critical section so the check and the insert are atomic.
func (r *BookingRepo) TakenSeatsTx(ctx context.Context, tx *sql.Tx, busID uint64, travelDate string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE bus_id=? AND travel_date=? FOR UPDATE`,
		busID, travelDate)
	if err != nil {
		return nil, err
	}
	return collectLabels(rows)
}

// TakenSeats returns the seat labels currently claimed for a
// (bus, date) pair without locking.  It backs the public availability
// view and is recomputed from the store on every call.
func (r *BookingRepo) TakenSeats(ctx context.Context, busID uint64, travelDate string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE bus_id=? AND travel_date=? ORDER BY LENGTH(seat_label), seat_label`,
		busID, travelDate)
	if err != nil {
		return nil, err
	}
	return collectLabels(rows)
}

func collectLabels(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	labels := make([]string, 0)
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// GetByID fetches a booking and its seat labels.  ErrBookingNotFound
// is returned when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, err
	}
	b.SeatLabels, err = r.seatLabels(ctx, b.ID)
	return b, err
}

// BookingFilter narrows List results.  Zero values mean "any".
type BookingFilter struct {
	UserID     uint64
	BusID      uint64
	TravelDate string
	RouteFrom  string
	RouteTo    string
	Status     string
}

// List returns bookings matching the filter, newest first, with seat
// labels populated in a single follow-up query.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := make([]interface{}, 0, 6)
	if f.UserID != 0 {
		query += ` AND user_id=?`
		args = append(args, f.UserID)
	}
	if f.BusID != 0 {
		query += ` AND bus_id=?`
		args = append(args, f.BusID)
	}
	if f.TravelDate != "" {
		query += ` AND travel_date=?`
		args = append(args, f.TravelDate)
	}
	if f.RouteFrom != "" {
		query += ` AND route_from=?`
		args = append(args, f.RouteFrom)
	}
	if f.RouteTo != "" {
		query += ` AND route_to=?`
		args = append(args, f.RouteTo)
	}
	if f.Status != "" {
		query += ` AND status=?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		b.SeatLabels = []string{}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	// Populate seat labels for all bookings in one query.
	ids := make([]interface{}, 0, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
		placeholders = append(placeholders, "?")
	}
	seatQuery := `SELECT booking_id, seat_label FROM booking_seats
	              WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	              ORDER BY booking_id, LENGTH(seat_label), seat_label`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var label string
		if err := srows.Scan(&bid, &label); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			bookings[idx].SeatLabels = append(bookings[idx].SeatLabels, label)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetForUpdateTx fetches a booking's status and owner inside a
// transaction, locking the row.  The lifecycle service uses this to
// validate a transition before applying it.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (status string, userID uint64, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT status, user_id FROM bookings WHERE id=? FOR UPDATE`, id).
		Scan(&status, &userID)
	if err == sql.ErrNoRows {
		return "", 0, ErrBookingNotFound
	}
	return status, userID, err
}

// UpdateStatusTx rewrites a booking's status within a transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status=? WHERE id=?`, status, id)
	return err
}

// DeleteSeatsTx removes all seat rows for a booking, releasing its
// seats for new admissions.  Called when a booking is rejected.
func (r *BookingRepo) DeleteSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id=?`, bookingID)
	return err
}

// DeleteTx removes a booking row; booking_seats rows cascade via the
// foreign key.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id=?`, id)
	return err
}

func (r *BookingRepo) seatLabels(ctx context.Context, bookingID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE booking_id=? ORDER BY LENGTH(seat_label), seat_label`,
		bookingID)
	if err != nil {
		return nil, err
	}
	return collectLabels(rows)
}
