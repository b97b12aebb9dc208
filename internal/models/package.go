package models

import "time"

// Package is a catalog item. Packages are never deleted, only deactivated,
// so old subscriptions keep a valid reference.
type Package struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SessionCount int       `json:"session_count"`
	ValidityDays int       `json:"validity_days"`
	Price        float64   `json:"price"`
	IsActive     bool      `json:"is_active"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
