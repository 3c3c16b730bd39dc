// Package booking implements seat-booking admission control and the
// booking lifecycle.  Admission is the one operation in the system
// with a real concurrency hazard: two purchasers racing for the same
// seat on the same bus and date.  The service closes it twice over:
// requests for the same (bus, date) key are serialized through a
// keyed mutex inside this process, and the booking_seats unique key
// rejects any overlap that slips through across processes.
package booking

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/avikr/exam-bus-booking/internal/hub"
	"github.com/avikr/exam-bus-booking/internal/model"
	"github.com/avikr/exam-bus-booking/internal/repository"
)

// Publisher receives advisory events after successful state changes.
// *hub.Hub and *hub.Bridge both satisfy it.  Publishing is
// fire-and-forget; it can never fail a booking request.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

// Service decides admission of seat-purchase requests and drives the
// booking lifecycle.  All persistence runs through the repositories;
// the service owns transaction boundaries.
type Service struct {
	buses    *repository.BusRepo
	bookings *repository.BookingRepo
	locks    *keyedMutex
	events   Publisher // may be nil
}

// NewService constructs a Service.  events may be nil when no realtime
// fan-out is wired (tests, maintenance tools).
func NewService(buses *repository.BusRepo, bookings *repository.BookingRepo, events Publisher) *Service {
	if buses == nil || bookings == nil {
		panic("nil repository passed to NewService")
	}
	return &Service{
		buses:    buses,
		bookings: bookings,
		locks:    newKeyedMutex(),
		events:   events,
	}
}

// Request carries one seat-purchase attempt.  BusID is the preferred
// bus reference; BusName is accepted as a fallback for callers that
// only know the display name.
type Request struct {
	BusID          uint64
	BusName        string
	TravelDate     string
	SeatLabels     []string
	UserID         uint64
	PaymentMethod  string
	PaymentRef     *string
	ScreenshotPath *string
}

// RequestBooking validates the request, checks the requested seats
// against the persisted state and, when all are free, creates the
// booking atomically.  On overlap it returns *SeatsUnavailableError
// naming the conflicting seats.  UPI requests start PENDING (payment
// evidence awaits manual verification); everything else is CONFIRMED
// immediately.
func (s *Service) RequestBooking(ctx context.Context, req Request) (model.Booking, error) {
	bus, err := s.resolveBus(ctx, req.BusID, req.BusName)
	if err != nil {
		return model.Booking{}, err
	}
	if bus.Status != model.BusStatusActive {
		return model.Booking{}, validationErrorf("bus %q is not accepting bookings", bus.Name)
	}
	if _, err := time.Parse("2006-01-02", req.TravelDate); err != nil {
		return model.Booking{}, validationErrorf("invalid travel date %q", req.TravelDate)
	}
	seats, err := normalizeSeats(req.SeatLabels, bus.Capacity)
	if err != nil {
		return model.Booking{}, err
	}
	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentMethodGateway
	}
	if method != model.PaymentMethodGateway && method != model.PaymentMethodUPI {
		return model.Booking{}, validationErrorf("unknown payment method %q", method)
	}
	status := model.BookingStatusConfirmed
	if method == model.PaymentMethodUPI {
		status = model.BookingStatusPending
	}

	// Serialize admission per (bus, date). Everything between here and
	// commit is the critical section.
	key := admissionKey(bus.ID, req.TravelDate)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	taken, err := s.bookings.TakenSeatsTx(ctx, tx, bus.ID, req.TravelDate)
	if err != nil {
		return model.Booking{}, err
	}
	if conflicts := intersect(seats, taken); len(conflicts) > 0 {
		return model.Booking{}, &SeatsUnavailableError{Seats: conflicts}
	}

	b := model.Booking{
		UserID:         req.UserID,
		BusID:          bus.ID,
		BusName:        bus.Name,
		RouteFrom:      bus.FromCity,
		RouteTo:        bus.ToCity,
		TravelDate:     req.TravelDate,
		SeatLabels:     seats,
		PriceCents:     bus.PriceCents,
		Status:         status,
		PaymentMethod:  method,
		PaymentRef:     req.PaymentRef,
		ScreenshotPath: req.ScreenshotPath,
	}
	if err := s.bookings.CreateTx(ctx, tx, &b); err != nil {
		return model.Booking{}, err
	}
	if err := s.bookings.CreateSeatsTx(ctx, tx, b.ID, bus.ID, req.TravelDate, seats); err != nil {
		if err == repository.ErrConflict {
			// Another instance won the race between our check and our
			// insert. Name the actual conflicts from fresh state.
			_ = tx.Rollback()
			return model.Booking{}, s.conflictFromStore(ctx, bus.ID, req.TravelDate, seats)
		}
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true

	s.publish(hub.EventSeatUpdate, map[string]interface{}{
		"bus_id":      bus.ID,
		"travel_date": req.TravelDate,
		"seat_labels": seats,
		"user_id":     req.UserID,
	})
	s.publish(hub.EventBookingUpdate, bookingSummary(b))
	return b, nil
}

// Availability is the derived seat view for one (bus, date): the seat
// labels already claimed by non-rejected bookings, together with the
// bus capacity and price needed to render a seat grid.
type Availability struct {
	BusID      uint64   `json:"bus_id"`
	TravelDate string   `json:"travel_date"`
	Capacity   uint32   `json:"capacity"`
	PriceCents uint32   `json:"price_cents"`
	Taken      []string `json:"taken"`
}

// SeatAvailability recomputes the availability view from the store.
// It is only as fresh as this read; clients revalidate at admission
// time.
func (s *Service) SeatAvailability(ctx context.Context, busID uint64, travelDate string) (Availability, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		return Availability{}, err
	}
	if _, err := time.Parse("2006-01-02", travelDate); err != nil {
		return Availability{}, validationErrorf("invalid travel date %q", travelDate)
	}
	taken, err := s.bookings.TakenSeats(ctx, busID, travelDate)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		BusID:      bus.ID,
		TravelDate: travelDate,
		Capacity:   bus.Capacity,
		PriceCents: bus.PriceCents,
		Taken:      taken,
	}, nil
}

// SetStatus applies an administrator-initiated lifecycle transition.
// Illegal transitions return ErrIllegalTransition.  Transitioning to
// REJECTED removes the booking's seat rows in the same transaction,
// which releases the seats for new admissions.
func (s *Service) SetStatus(ctx context.Context, bookingID uint64, next string) (model.Booking, error) {
	if !ValidStatus(next) {
		return model.Booking{}, validationErrorf("unknown status %q", next)
	}
	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	current, _, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if !CanTransition(current, next) {
		return model.Booking{}, ErrIllegalTransition
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, next); err != nil {
		return model.Booking{}, err
	}
	if next == model.BookingStatusRejected {
		if err := s.bookings.DeleteSeatsTx(ctx, tx, bookingID); err != nil {
			return model.Booking{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}
	committed = true

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(hub.EventBookingUpdate, bookingSummary(b))
	s.publish(hub.EventNotification, map[string]interface{}{
		"user_id": b.UserID,
		"message": fmt.Sprintf("Your booking for %s on %s is now %s", b.BusName, b.TravelDate, b.Status),
	})
	return b, nil
}

// Cancel removes a user's own booking.  Only PENDING bookings can be
// cancelled by their owner; a confirmed booking must be voided by an
// administrator rejection.  Removal deletes the seat rows, releasing
// the seats.
func (s *Service) Cancel(ctx context.Context, bookingID, userID uint64) error {
	tx, err := s.bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	status, ownerID, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return repository.ErrForbidden
	}
	if status != model.BookingStatusPending {
		return ErrNotCancellable
	}
	if err := s.bookings.DeleteSeatsTx(ctx, tx, bookingID); err != nil {
		return err
	}
	if err := s.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.publish(hub.EventBookingUpdate, map[string]interface{}{
		"id":     bookingID,
		"status": "CANCELLED",
	})
	return nil
}

// Ticket returns the booking for ticket issuance.  Only the owner (or
// an administrator) may download, and only once the booking is
// confirmed.
func (s *Service) Ticket(ctx context.Context, bookingID, userID uint64, isAdmin bool) (model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != userID && !isAdmin {
		return model.Booking{}, repository.ErrForbidden
	}
	if !CanIssueTicket(b.Status) {
		return model.Booking{}, ErrNotConfirmed
	}
	return b, nil
}

// resolveBus loads the authoritative bus record.  Lookup prefers the
// stable id; name tiers exist to tolerate stale references and log
// loudly when they match so the inconsistency is visible.
func (s *Service) resolveBus(ctx context.Context, busID uint64, busName string) (model.Bus, error) {
	if busID != 0 {
		bus, err := s.buses.GetByID(ctx, busID)
		if err == nil {
			return bus, nil
		}
		if err != repository.ErrBusNotFound {
			return model.Bus{}, err
		}
	}
	if busName == "" {
		return model.Bus{}, repository.ErrBusNotFound
	}
	bus, err := s.buses.GetByName(ctx, busName)
	if err == nil {
		log.Printf("booking: bus id %d stale, resolved %q by exact name", busID, busName)
		return bus, nil
	}
	if err != repository.ErrBusNotFound {
		return model.Bus{}, err
	}
	bus, err = s.buses.GetByNameFold(ctx, busName)
	if err == nil {
		log.Printf("booking: bus id %d stale, resolved %q case-insensitively", busID, busName)
		return bus, nil
	}
	return model.Bus{}, err
}

// conflictFromStore rebuilds the conflicting seat list after a
// duplicate-key rejection, falling back to the full request when the
// re-read fails.
func (s *Service) conflictFromStore(ctx context.Context, busID uint64, travelDate string, seats []string) error {
	taken, err := s.bookings.TakenSeats(ctx, busID, travelDate)
	if err != nil {
		log.Printf("booking: conflict re-read failed: %v", err)
		return &SeatsUnavailableError{Seats: seats}
	}
	conflicts := intersect(seats, taken)
	if len(conflicts) == 0 {
		conflicts = seats
	}
	return &SeatsUnavailableError{Seats: conflicts}
}

func (s *Service) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, payload)
}

// normalizeSeats validates each requested label against the bus
// capacity, rewrites it to its canonical decimal form so that "05"
// and "5" name the same seat row, and deduplicates while preserving
// request order.
func normalizeSeats(labels []string, capacity uint32) ([]string, error) {
	if len(labels) == 0 {
		return nil, validationErrorf("seat_labels is required")
	}
	seen := make(map[string]struct{}, len(labels))
	seats := make([]string, 0, len(labels))
	for _, l := range labels {
		n, err := strconv.ParseUint(l, 10, 32)
		if err != nil || n == 0 || uint32(n) > capacity {
			return nil, validationErrorf("seat %q is out of range 1..%d", l, capacity)
		}
		canonical := strconv.FormatUint(n, 10)
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		seats = append(seats, canonical)
	}
	return seats, nil
}

// intersect returns the requested labels present in taken, in request
// order.
func intersect(requested, taken []string) []string {
	if len(taken) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		set[t] = struct{}{}
	}
	var conflicts []string
	for _, r := range requested {
		if _, ok := set[r]; ok {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

func admissionKey(busID uint64, travelDate string) string {
	return strconv.FormatUint(busID, 10) + "|" + travelDate
}

func bookingSummary(b model.Booking) map[string]interface{} {
	return map[string]interface{}{
		"id":          b.ID,
		"user_id":     b.UserID,
		"bus_id":      b.BusID,
		"bus_name":    b.BusName,
		"travel_date": b.TravelDate,
		"seat_labels": b.SeatLabels,
		"status":      b.Status,
	}
}
