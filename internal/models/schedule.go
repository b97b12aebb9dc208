package models

import "time"

// ScheduleSession is a weekly recurring slot owned by one group. Times are
// stored as HH:MM strings in the group's local clock.
type ScheduleSession struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Location  *string   `json:"location"`
	CoachID   *int64    `json:"coach_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
