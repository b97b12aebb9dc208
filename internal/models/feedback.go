package models

import "time"

type Feedback struct {
	ID          int64     `json:"id"`
	PlayerID    int64     `json:"player_id"`
	CoachID     int64     `json:"coach_id"`
	SessionDate time.Time `json:"session_date"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
