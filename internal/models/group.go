package models

import "time"

type Group struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Level      string    `json:"level"`
	MaxPlayers int       `json:"max_players"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GroupDetail carries the live active-member count alongside the group row.
type GroupDetail struct {
	Group
	ActiveMembers int `json:"active_members"`
}

type GroupPlayer struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	PlayerID  int64     `json:"player_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type CoachGroup struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	CoachID   int64     `json:"coach_id"`
	IsPrimary bool      `json:"is_primary"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
