package repository

import (
	"context"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CreateScheduleSessionInput struct {
	GroupID   int64
	DayOfWeek int
	StartTime string
	EndTime   string
	Location  *string
	CoachID   *int64
}

type UpdateScheduleSessionInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	Location  *string
	CoachID   *int64
}

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, input CreateScheduleSessionInput) (*models.ScheduleSession, error) {
	query := `
		INSERT INTO schedule_sessions (group_id, day_of_week, start_time, end_time, location, coach_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, group_id, day_of_week, start_time, end_time, location, coach_id, is_active, created_at, updated_at
	`
	var session models.ScheduleSession
	err := r.db.QueryRow(ctx, query,
		input.GroupID,
		input.DayOfWeek,
		input.StartTime,
		input.EndTime,
		input.Location,
		input.CoachID,
	).Scan(
		&session.ID,
		&session.GroupID,
		&session.DayOfWeek,
		&session.StartTime,
		&session.EndTime,
		&session.Location,
		&session.CoachID,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, id int64, input UpdateScheduleSessionInput) (*models.ScheduleSession, error) {
	query := `
		UPDATE schedule_sessions
		SET day_of_week = $2, start_time = $3, end_time = $4, location = $5, coach_id = $6, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING id, group_id, day_of_week, start_time, end_time, location, coach_id, is_active, created_at, updated_at
	`
	var session models.ScheduleSession
	err := r.db.QueryRow(ctx, query,
		id,
		input.DayOfWeek,
		input.StartTime,
		input.EndTime,
		input.Location,
		input.CoachID,
	).Scan(
		&session.ID,
		&session.GroupID,
		&session.DayOfWeek,
		&session.StartTime,
		&session.EndTime,
		&session.Location,
		&session.CoachID,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.ScheduleSession, error) {
	query := `
		SELECT id, group_id, day_of_week, start_time, end_time, location, coach_id, is_active, created_at, updated_at
		FROM schedule_sessions
		WHERE id = $1
	`
	var session models.ScheduleSession
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.GroupID,
		&session.DayOfWeek,
		&session.StartTime,
		&session.EndTime,
		&session.Location,
		&session.CoachID,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ScheduleRepository) ListByGroup(ctx context.Context, groupID int64) ([]models.ScheduleSession, error) {
	query := `
		SELECT id, group_id, day_of_week, start_time, end_time, location, coach_id, is_active, created_at, updated_at
		FROM schedule_sessions
		WHERE group_id = $1 AND is_active
		ORDER BY day_of_week ASC, start_time ASC
	`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.ScheduleSession, 0)
	for rows.Next() {
		var session models.ScheduleSession
		if err := rows.Scan(
			&session.ID,
			&session.GroupID,
			&session.DayOfWeek,
			&session.StartTime,
			&session.EndTime,
			&session.Location,
			&session.CoachID,
			&session.IsActive,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *ScheduleRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE schedule_sessions SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *ScheduleRepository) CountActiveByGroup(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM schedule_sessions WHERE group_id = $1 AND is_active`,
		groupID,
	).Scan(&count)
	return count, err
}
