package model

import "time"

// Bus type enumeration values stored in buses.bus_type.
const (
	BusTypeAC      = "AC"
	BusTypeNonAC   = "NON_AC"
	BusTypeSleeper = "SLEEPER"
	BusTypeSeater  = "SEATER"
)

// Bus status enumeration values stored in buses.status.  Only ACTIVE
// buses are searchable and bookable.
const (
	BusStatusActive   = "ACTIVE"
	BusStatusInactive = "INACTIVE"
)

// ValidBusType reports whether t is one of the known bus types.
func ValidBusType(t string) bool {
	switch t {
	case BusTypeAC, BusTypeNonAC, BusTypeSleeper, BusTypeSeater:
		return true
	}
	return false
}

// Bus describes a scheduled exam-bus service on a specific date.
// Capacity and PriceCents are the authoritative values the admission
// controller reads when granting seats; bookings snapshot the price at
// the moment of creation.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name shown to passengers.
//  Number        – registration number, unique across buses.
//  Capacity      – total seat count; seat labels run 1..Capacity.
//  BusType       – AC, NON_AC, SLEEPER or SEATER.
//  Status        – ACTIVE or INACTIVE.
//  FromCity      – origin city name.
//  ToCity        – destination city name.
//  TravelDate    – service date (YYYY-MM-DD).
//  DepartureTime – departure timing string (HH:MM).
//  PriceCents    – price per seat in cents.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Bus struct {
	ID            uint64    // buses.id
	Name          string    // buses.name
	Number        string    // buses.number
	Capacity      uint32    // buses.capacity
	BusType       string    // buses.bus_type
	Status        string    // buses.status
	FromCity      string    // buses.from_city
	ToCity        string    // buses.to_city
	TravelDate    string    // buses.travel_date
	DepartureTime string    // buses.departure_time
	PriceCents    uint32    // buses.price_cents
	ExamIDs       []uint64  // bus_exams.exam_id tags (loaded separately)
	CreatedAt     time.Time // buses.created_at
	UpdatedAt     time.Time // buses.updated_at
}
