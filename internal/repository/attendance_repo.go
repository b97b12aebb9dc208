package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type InsertAttendanceInput struct {
	PlayerID          int64
	GroupID           int64
	ScheduleSessionID int64
	SessionDate       time.Time
	Status            string
	MarkedBy          int64
	Notes             *string
}

type AttendanceRepository struct {
	db DBTX
}

func NewAttendanceRepository(db DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// InsertIfAbsent inserts one attendance row guarded by the unique index on
// (player_id, schedule_session_id, session_date). When the row already
// exists — including when a concurrent transaction just won the insert —
// it returns (nil, false, nil) and the caller takes the update-in-place
// branch instead of deducting again.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, input InsertAttendanceInput) (*models.Attendance, bool, error) {
	query := `
		INSERT INTO attendance (player_id, group_id, schedule_session_id, session_date, status, marked_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id, schedule_session_id, session_date) DO NOTHING
		RETURNING id, player_id, group_id, schedule_session_id, session_date, status, marked_by, notes, created_at, updated_at
	`
	var record models.Attendance
	err := r.db.QueryRow(ctx, query,
		input.PlayerID,
		input.GroupID,
		input.ScheduleSessionID,
		input.SessionDate,
		input.Status,
		input.MarkedBy,
		input.Notes,
	).Scan(
		&record.ID,
		&record.PlayerID,
		&record.GroupID,
		&record.ScheduleSessionID,
		&record.SessionDate,
		&record.Status,
		&record.MarkedBy,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (r *AttendanceRepository) GetByNaturalKey(ctx context.Context, playerID, scheduleSessionID int64, sessionDate time.Time) (*models.Attendance, error) {
	query := `
		SELECT id, player_id, group_id, schedule_session_id, session_date, status, marked_by, notes, created_at, updated_at
		FROM attendance
		WHERE player_id = $1 AND schedule_session_id = $2 AND session_date = $3
	`
	var record models.Attendance
	err := r.db.QueryRow(ctx, query, playerID, scheduleSessionID, sessionDate).Scan(
		&record.ID,
		&record.PlayerID,
		&record.GroupID,
		&record.ScheduleSessionID,
		&record.SessionDate,
		&record.Status,
		&record.MarkedBy,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.Attendance, error) {
	query := `
		SELECT id, player_id, group_id, schedule_session_id, session_date, status, marked_by, notes, created_at, updated_at
		FROM attendance
		WHERE id = $1
	`
	var record models.Attendance
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.PlayerID,
		&record.GroupID,
		&record.ScheduleSessionID,
		&record.SessionDate,
		&record.Status,
		&record.MarkedBy,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateRecord corrects status and notes only. It deliberately never touches
// subscriptions: a deduction belongs to the first successful log, not to the
// current status value.
func (r *AttendanceRepository) UpdateRecord(ctx context.Context, id int64, status string, notes *string, markedBy int64) (*models.Attendance, error) {
	query := `
		UPDATE attendance
		SET status = $2, notes = $3, marked_by = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, player_id, group_id, schedule_session_id, session_date, status, marked_by, notes, created_at, updated_at
	`
	var record models.Attendance
	err := r.db.QueryRow(ctx, query, id, status, notes, markedBy).Scan(
		&record.ID,
		&record.PlayerID,
		&record.GroupID,
		&record.ScheduleSessionID,
		&record.SessionDate,
		&record.Status,
		&record.MarkedBy,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) ListByOccurrence(ctx context.Context, scheduleSessionID int64, sessionDate time.Time) ([]models.Attendance, error) {
	query := `
		SELECT id, player_id, group_id, schedule_session_id, session_date, status, marked_by, notes, created_at, updated_at
		FROM attendance
		WHERE schedule_session_id = $1 AND session_date = $2
		ORDER BY player_id ASC
	`
	return r.list(ctx, query, scheduleSessionID, sessionDate)
}

func (r *AttendanceRepository) ListByPlayer(ctx context.Context, playerID int64, limit, offset int) ([]models.Attendance, error) {
	query := `
		SELECT id, player_id, group_id, schedule_session_id, session_date, status, marked_by, notes, created_at, updated_at
		FROM attendance
		WHERE player_id = $1
		ORDER BY session_date DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, playerID, limit, offset)
}

func (r *AttendanceRepository) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM attendance WHERE player_id = $1`, playerID).Scan(&total)
	return total, err
}

func (r *AttendanceRepository) list(ctx context.Context, query string, args ...any) ([]models.Attendance, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.Attendance, 0)
	for rows.Next() {
		var record models.Attendance
		if err := rows.Scan(
			&record.ID,
			&record.PlayerID,
			&record.GroupID,
			&record.ScheduleSessionID,
			&record.SessionDate,
			&record.Status,
			&record.MarkedBy,
			&record.Notes,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
