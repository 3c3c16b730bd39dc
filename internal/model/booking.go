package model

import "time"

// Booking status enumeration values stored in bookings.status.  A
// PENDING booking awaits manual verification of UPI payment evidence;
// CONFIRMED bookings hold their seats and may issue tickets; REJECTED
// bookings have released their seats back to the available pool.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusRejected  = "REJECTED"
)

// Payment method enumeration values stored in bookings.payment_method.
// GATEWAY bookings confirm immediately; UPI bookings start PENDING and
// carry a transaction reference plus an optional screenshot path.
const (
	PaymentMethodGateway = "GATEWAY"
	PaymentMethodUPI     = "UPI"
)

// Booking is a grant of one or more seats on a bus for a travel date.
// Seats are stored one row per seat in booking_seats; the SeatLabels
// field aggregates them for presentation.  BusName, RouteFrom, RouteTo
// and PriceCents are snapshots taken at booking time so that later
// edits to the bus do not rewrite history.  The bus itself is always
// referenced by its immutable ID.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who made the booking.
//  BusID          – bus being booked (stable join key).
//  BusName        – bus display name at booking time.
//  RouteFrom      – origin city at booking time.
//  RouteTo        – destination city at booking time.
//  TravelDate     – travel date (YYYY-MM-DD).
//  SeatLabels     – seat labels granted to this booking.
//  PriceCents     – per-seat price snapshot in cents.
//  Status         – PENDING, CONFIRMED or REJECTED.
//  PaymentMethod  – GATEWAY or UPI.
//  PaymentRef     – external transaction reference, if any.
//  ScreenshotPath – stored path of the UPI payment screenshot, if any.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	UserID         uint64    // bookings.user_id
	BusID          uint64    // bookings.bus_id
	BusName        string    // bookings.bus_name
	RouteFrom      string    // bookings.route_from
	RouteTo        string    // bookings.route_to
	TravelDate     string    // bookings.travel_date
	SeatLabels     []string  // booking_seats.seat_label rows
	PriceCents     uint32    // bookings.price_cents
	Status         string    // bookings.status
	PaymentMethod  string    // bookings.payment_method
	PaymentRef     *string   // bookings.payment_ref (nullable)
	ScreenshotPath *string   // bookings.screenshot_path (nullable)
	CreatedAt      time.Time // bookings.created_at
	UpdatedAt      time.Time // bookings.updated_at
}

// BookingSeat maps a single seat label to the booking holding it.
// The (BusID, TravelDate, SeatLabel) tuple is unique in the database,
// which is what makes double-booking impossible at the storage layer.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – booking that holds this seat.
//  BusID      – bus the seat belongs to.
//  TravelDate – travel date (YYYY-MM-DD).
//  SeatLabel  – seat label within 1..bus.Capacity.
//  CreatedAt  – creation timestamp.
type BookingSeat struct {
	ID         uint64    // booking_seats.id
	BookingID  uint64    // booking_seats.booking_id
	BusID      uint64    // booking_seats.bus_id
	TravelDate string    // booking_seats.travel_date
	SeatLabel  string    // booking_seats.seat_label
	CreatedAt  time.Time // booking_seats.created_at
}
