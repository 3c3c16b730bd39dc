package model

import "time"

// City is a route endpoint selectable when searching buses.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – city name, unique.
//  State     – state or region the city belongs to.
//  CreatedAt – creation timestamp.
type City struct {
	ID        uint64    // cities.id
	Name      string    // cities.name
	State     string    // cities.state
	CreatedAt time.Time // cities.created_at
}
