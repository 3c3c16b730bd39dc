package model

import "time"

// User is an account that can search buses and create bookings.
// The Role field distinguishes ordinary passengers from back-office
// administrators.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login identifier, stored lowercase.
//  PasswordHash – bcrypt hash of the password.
//  Role         – USER or ADMIN.
//  IsActive     – soft-disable flag used by the admin back-office.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
