// Package models defines the data structures persisted in the database.
// Validation is explicit and lives in the services; the structs stay plain.
package models

import "time"

// User is a registered account. Email is unique case-insensitively.
// PasswordHash holds a bcrypt digest, never the plain secret.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
