package models

import "time"

const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

type Subscription struct {
	ID                int64      `json:"id"`
	PlayerID          int64      `json:"player_id"`
	PackageID         int64      `json:"package_id"`
	SessionsTotal     int        `json:"sessions_total"`
	SessionsRemaining int        `json:"sessions_remaining"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SubscriptionDetail struct {
	Subscription
	Payment *Payment `json:"payment,omitempty"`
}
