package domain

import "time"

// User is the domain model for accounts. Every account carries at
// least one role; new registrations start with RoleUser.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Roles        Roles
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
