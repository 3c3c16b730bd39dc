// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when an admission succeeds.  It
// carries enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID     uint64   `json:"booking_id"`
	UserID        uint64   `json:"user_id"`
	BusID         uint64   `json:"bus_id"`
	BusName       string   `json:"bus_name"`
	RouteFrom     string   `json:"route_from"`
	RouteTo       string   `json:"route_to"`
	TravelDate    string   `json:"travel_date"`
	SeatLabels    []string `json:"seats"`
	PriceCents    uint32   `json:"price_cents"`
	Status        string   `json:"status"`
	PaymentMethod string   `json:"payment_method"`
	CreatedAt     string   `json:"created_at"`
}
