// Package repository implements all database queries for the event platform.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

// Registrant pairs a registration with the contact details the reminder
// dispatcher needs.
type Registrant struct {
	UserID string
	Name   string
	Email  string
}
