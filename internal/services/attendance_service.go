package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
)

// Attendance may be logged for today and up to this many days back.
const attendanceWindowDays = 7

type AttendanceService struct {
	db               *pgxpool.Pool
	attendanceRepo   *repository.AttendanceRepository
	subscriptionRepo *repository.SubscriptionRepository
	scheduleRepo     *repository.ScheduleRepository
}

func NewAttendanceService(
	db *pgxpool.Pool,
	attendanceRepo *repository.AttendanceRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	scheduleRepo *repository.ScheduleRepository,
) *AttendanceService {
	return &AttendanceService{
		db:               db,
		attendanceRepo:   attendanceRepo,
		subscriptionRepo: subscriptionRepo,
		scheduleRepo:     scheduleRepo,
	}
}

type LogAttendanceInput struct {
	PlayerID          int64
	GroupID           int64
	ScheduleSessionID int64
	SessionDate       time.Time
	Status            string
	Notes             *string
}

// LogAttendanceResult reports the subscription balance after the call.
// SessionsRemaining is nil when the player has no consumable subscription;
// attendance is still recorded in that case. Updated marks the idempotent
// branch: the record already existed and only status/notes changed.
type LogAttendanceResult struct {
	Attendance        *models.Attendance `json:"attendance"`
	SessionsRemaining *int               `json:"sessions_remaining"`
	Updated           bool               `json:"updated"`
	Deducted          bool               `json:"deducted"`
}

type BatchEntry struct {
	PlayerID int64
	Status   string
	Notes    *string
}

type LogBatchInput struct {
	GroupID           int64
	ScheduleSessionID int64
	SessionDate       time.Time
	Entries           []BatchEntry
}

// BatchEntryResult reports one player's outcome; entries succeed or fail
// independently.
type BatchEntryResult struct {
	PlayerID int64                `json:"player_id"`
	Result   *LogAttendanceResult `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func (s *AttendanceService) LogAttendance(ctx context.Context, markedBy int64, role string, input LogAttendanceInput) (*LogAttendanceResult, error) {
	if err := validateMarker(role); err != nil {
		return nil, err
	}
	sessionDate, err := validateSessionDate(input.SessionDate)
	if err != nil {
		return nil, err
	}
	input.SessionDate = sessionDate

	if err := s.checkOccurrence(ctx, input.GroupID, input.ScheduleSessionID); err != nil {
		return nil, err
	}

	return s.log(ctx, markedBy, input)
}

// LogBatch marks one occurrence for many players. Window and authorization
// are validated once up front; after that each player is an independent
// atomic unit and partial success is reported per player.
func (s *AttendanceService) LogBatch(ctx context.Context, markedBy int64, role string, input LogBatchInput) ([]BatchEntryResult, error) {
	if err := validateMarker(role); err != nil {
		return nil, err
	}
	sessionDate, err := validateSessionDate(input.SessionDate)
	if err != nil {
		return nil, err
	}
	if len(input.Entries) == 0 {
		return nil, ErrInvalidInput
	}
	if err := s.checkOccurrence(ctx, input.GroupID, input.ScheduleSessionID); err != nil {
		return nil, err
	}

	results := make([]BatchEntryResult, 0, len(input.Entries))
	for _, entry := range input.Entries {
		result, err := s.log(ctx, markedBy, LogAttendanceInput{
			PlayerID:          entry.PlayerID,
			GroupID:           input.GroupID,
			ScheduleSessionID: input.ScheduleSessionID,
			SessionDate:       sessionDate,
			Status:            entry.Status,
			Notes:             entry.Notes,
		})
		if err != nil {
			results = append(results, BatchEntryResult{PlayerID: entry.PlayerID, Error: err.Error()})
			continue
		}
		results = append(results, BatchEntryResult{PlayerID: entry.PlayerID, Result: result})
	}
	return results, nil
}

// log is the atomic insert-and-deduct unit. The unique natural key on
// attendance decides the race: exactly one concurrent caller inserts and
// deducts, every other caller observes the existing row and falls into the
// update-in-place branch without touching the subscription.
func (s *AttendanceService) log(ctx context.Context, markedBy int64, input LogAttendanceInput) (*LogAttendanceResult, error) {
	status, err := normalizeAttendanceStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if input.PlayerID <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAttendanceRepo := repository.NewAttendanceRepository(tx)
	txSubscriptionRepo := repository.NewSubscriptionRepository(tx)

	record, inserted, err := txAttendanceRepo.InsertIfAbsent(ctx, repository.InsertAttendanceInput{
		PlayerID:          input.PlayerID,
		GroupID:           input.GroupID,
		ScheduleSessionID: input.ScheduleSessionID,
		SessionDate:       input.SessionDate,
		Status:            status,
		MarkedBy:          markedBy,
		Notes:             input.Notes,
	})
	if err != nil {
		return nil, err
	}

	result := &LogAttendanceResult{}

	if inserted {
		result.Attendance = record
		sub, err := txSubscriptionRepo.GetConsumableForPlayerForUpdate(ctx, input.PlayerID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// Attendance is tracked independent of billing.
		case err != nil:
			return nil, err
		default:
			remaining, err := txSubscriptionRepo.DecrementRemaining(ctx, sub.ID)
			if err != nil {
				return nil, err
			}
			result.SessionsRemaining = &remaining
			result.Deducted = true
		}
	} else {
		existing, err := txAttendanceRepo.GetByNaturalKey(ctx, input.PlayerID, input.ScheduleSessionID, input.SessionDate)
		if err != nil {
			return nil, err
		}
		updated, err := txAttendanceRepo.UpdateRecord(ctx, existing.ID, status, input.Notes, markedBy)
		if err != nil {
			return nil, err
		}
		result.Attendance = updated
		result.Updated = true

		sub, err := txSubscriptionRepo.GetConsumableForPlayerForUpdate(ctx, input.PlayerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			remaining := sub.SessionsRemaining
			result.SessionsRemaining = &remaining
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateRecord corrects an attendance record's status or notes. It never
// re-triggers or reverses a deduction regardless of the status change.
func (s *AttendanceService) UpdateRecord(ctx context.Context, actorID int64, role string, id int64, status string, notes *string) (*models.Attendance, error) {
	if err := validateMarker(role); err != nil {
		return nil, err
	}
	normalized, err := normalizeAttendanceStatus(status)
	if err != nil {
		return nil, err
	}

	if _, err := s.attendanceRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.attendanceRepo.UpdateRecord(ctx, id, normalized, notes, actorID)
}

func (s *AttendanceService) ListByOccurrence(ctx context.Context, role string, scheduleSessionID int64, sessionDate time.Time) ([]models.Attendance, error) {
	if err := validateMarker(role); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListByOccurrence(ctx, scheduleSessionID, dateOnly(sessionDate))
}

func (s *AttendanceService) ListByPlayer(ctx context.Context, actorID int64, role string, playerID int64, limit, offset int) ([]models.Attendance, int, error) {
	if role == models.RolePlayer && actorID != playerID {
		return nil, 0, ErrForbidden
	}
	records, err := s.attendanceRepo.ListByPlayer(ctx, playerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.attendanceRepo.CountByPlayer(ctx, playerID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *AttendanceService) checkOccurrence(ctx context.Context, groupID, scheduleSessionID int64) error {
	session, err := s.scheduleRepo.GetByID(ctx, scheduleSessionID)
	if err != nil {
		return err
	}
	if !session.IsActive || session.GroupID != groupID {
		return ErrInvalidInput
	}
	return nil
}

func validateMarker(role string) error {
	if role != models.RoleCoach && role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func validateSessionDate(sessionDate time.Time) (time.Time, error) {
	if sessionDate.IsZero() {
		return time.Time{}, ErrInvalidInput
	}
	day := dateOnly(sessionDate)
	today := dateOnly(time.Now().UTC())
	oldest := today.AddDate(0, 0, -attendanceWindowDays)
	if day.After(today) || day.Before(oldest) {
		return time.Time{}, ErrOutOfWindow
	}
	return day, nil
}

func normalizeAttendanceStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.AttendancePresent:
		return models.AttendancePresent, nil
	case models.AttendanceAbsent:
		return models.AttendanceAbsent, nil
	case models.AttendanceExcused:
		return models.AttendanceExcused, nil
	default:
		return "", ErrInvalidInput
	}
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
