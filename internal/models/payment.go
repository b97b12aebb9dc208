package models

import "time"

const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

type Payment struct {
	ID              int64      `json:"id"`
	SubscriptionID  int64      `json:"subscription_id"`
	PlayerID        int64      `json:"player_id"`
	Amount          float64    `json:"amount"`
	Method          string     `json:"method"`
	ScreenshotURL   *string    `json:"screenshot_url"`
	Status          string     `json:"status"`
	ConfirmedAt     *time.Time `json:"confirmed_at"`
	ConfirmedBy     *int64     `json:"confirmed_by"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
}
