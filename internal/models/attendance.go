package models

import "time"

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// Attendance is one record per (player, schedule session, calendar date).
// The natural key is enforced with a unique index in storage.
type Attendance struct {
	ID                int64     `json:"id"`
	PlayerID          int64     `json:"player_id"`
	GroupID           int64     `json:"group_id"`
	ScheduleSessionID int64     `json:"schedule_session_id"`
	SessionDate       time.Time `json:"session_date"`
	Status            string    `json:"status"`
	MarkedBy          int64     `json:"marked_by"`
	Notes             *string   `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
