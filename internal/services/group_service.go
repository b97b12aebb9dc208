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

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type GroupService struct {
	db             *pgxpool.Pool
	groupRepo      *repository.GroupRepository
	coachGroupRepo *repository.CoachGroupRepository
	scheduleRepo   *repository.ScheduleRepository
	userRepo       userReader
}

func NewGroupService(
	db *pgxpool.Pool,
	groupRepo *repository.GroupRepository,
	coachGroupRepo *repository.CoachGroupRepository,
	scheduleRepo *repository.ScheduleRepository,
	userRepo userReader,
) *GroupService {
	return &GroupService{
		db:             db,
		groupRepo:      groupRepo,
		coachGroupRepo: coachGroupRepo,
		scheduleRepo:   scheduleRepo,
		userRepo:       userRepo,
	}
}

type GroupInput struct {
	Name       string
	Level      string
	MaxPlayers int
	IsActive   bool
}

func (s *GroupService) CreateGroup(ctx context.Context, input GroupInput) (*models.Group, error) {
	if strings.TrimSpace(input.Name) == "" || input.MaxPlayers <= 0 {
		return nil, ErrInvalidInput
	}
	return s.groupRepo.Create(ctx, repository.CreateGroupInput{
		Name:       strings.TrimSpace(input.Name),
		Level:      strings.TrimSpace(input.Level),
		MaxPlayers: input.MaxPlayers,
	})
}

func (s *GroupService) UpdateGroup(ctx context.Context, id int64, input GroupInput) (*models.Group, error) {
	if strings.TrimSpace(input.Name) == "" || input.MaxPlayers <= 0 {
		return nil, ErrInvalidInput
	}
	return s.groupRepo.Update(ctx, id, repository.UpdateGroupInput{
		Name:       strings.TrimSpace(input.Name),
		Level:      strings.TrimSpace(input.Level),
		MaxPlayers: input.MaxPlayers,
		IsActive:   input.IsActive,
	})
}

func (s *GroupService) GetGroup(ctx context.Context, id int64) (*models.GroupDetail, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.groupRepo.CountActiveMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.GroupDetail{Group: *group, ActiveMembers: count}, nil
}

func (s *GroupService) ListGroups(ctx context.Context, activeOnly bool) ([]models.GroupDetail, error) {
	return s.groupRepo.List(ctx, activeOnly)
}

/// DeleteGroup hard-deletes only a group with no trace of use: no active
// members, no attendance history at all, no active schedule sessions.
// Anything else is retired by deactivation instead.
func (s *GroupService) DeleteGroup(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txGroupRepo := repository.NewGroupRepository(tx)
	txScheduleRepo := repository.NewScheduleRepository(tx)

	if _, err := txGroupRepo.GetByIDForUpdate(ctx, id); err != nil {
		return err
	}

	members, err := txGroupRepo.CountActiveMembers(ctx, id)
	if err != nil {
		return err
	}
	if members > 0 {
		return ErrInvalidState
	}

	hasHistory, err := txGroupRepo.HasAttendanceHistory(ctx, id)
	if err != nil {
		return err
	}
	if hasHistory {
		return ErrInvalidState
	}

	sessions, err := txScheduleRepo.CountActiveByGroup(ctx, id)
	if err != nil {
		return err
	}
	if sessions > 0 {
		return ErrInvalidState
	}

	if err := txGroupRepo.Delete(ctx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *GroupService) DeactivateGroup(ctx context.Context, id int64) (*models.Group, error) {
	return s.groupRepo.Deactivate(ctx, id)
}

// AddPlayers admits players to a group, reactivating soft-deleted edges
// instead of duplicating them. The capacity check and the inserts share one
// transaction; the group row lock serializes concurrent admissions.
func (s *GroupService) AddPlayers(ctx context.Context, groupID int64, playerIDs []int64) ([]models.GroupPlayer, error) {
	if len(playerIDs) == 0 {
		return nil, ErrInvalidInput
	}

	for _, playerID := range playerIDs {
		player, err := s.userRepo.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if player.Role != models.RolePlayer || !player.IsActive {
			return nil, ErrInvalidInput
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txGroupRepo := repository.NewGroupRepository(tx)

	group, err := txGroupRepo.GetByIDForUpdate(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrInvalidState
	}

	activeMembers, err := txGroupRepo.ListActiveMemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}

	newcomers := make([]int64, 0, len(playerIDs))
	seen := make(map[int64]struct{}, len(playerIDs))
	for _, playerID := range playerIDs {
		if _, dup := seen[playerID]; dup {
			continue
		}
		seen[playerID] = struct{}{}
		if _, member := activeMembers[playerID]; !member {
			newcomers = append(newcomers, playerID)
		}
	}

	if len(activeMembers)+len(newcomers) > group.MaxPlayers {
		return nil, ErrCapacityExceeded
	}

	admitted := make([]models.GroupPlayer, 0, len(newcomers))
	for _, playerID := range newcomers {
		member, err := txGroupRepo.UpsertMembership(ctx, groupID, playerID)
		if err != nil {
			return nil, err
		}
		admitted = append(admitted, *member)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return admitted, nil
}

func (s *GroupService) RemovePlayer(ctx context.Context, groupID, playerID int64) error {
	err := s.groupRepo.DeactivateMembership(ctx, groupID, playerID)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return pgx.ErrNoRows
	}
	return err
}

// AssignCoach upserts the coach-group edge. Promoting a primary first demotes
// any current primary inside the same transaction, so the group never carries
// two active primaries.
func (s *GroupService) AssignCoach(ctx context.Context, groupID, coachID int64, isPrimary bool) (*models.CoachGroup, error) {
	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if coach.Role != models.RoleCoach || !coach.IsActive {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txGroupRepo := repository.NewGroupRepository(tx)
	txCoachGroupRepo := repository.NewCoachGroupRepository(tx)

	if _, err := txGroupRepo.GetByIDForUpdate(ctx, groupID); err != nil {
		return nil, err
	}

	if isPrimary {
		if err := txCoachGroupRepo.DemotePrimary(ctx, groupID); err != nil {
			return nil, err
		}
	}

	assignment, err := txCoachGroupRepo.Upsert(ctx, groupID, coachID, isPrimary)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *GroupService) UnassignCoach(ctx context.Context, groupID, coachID int64) error {
	err := s.coachGroupRepo.Deactivate(ctx, groupID, coachID)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return pgx.ErrNoRows
	}
	return err
}

func (s *GroupService) ListCoaches(ctx context.Context, groupID int64) ([]models.CoachGroup, error) {
	return s.coachGroupRepo.ListByGroup(ctx, groupID)
}

type ScheduleSessionInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	Location  *string
	CoachID   *int64
}

func (s *GroupService) CreateScheduleSession(ctx context.Context, groupID int64, input ScheduleSessionInput) (*models.ScheduleSession, error) {
	if err := validateScheduleSlot(input); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrInvalidState
	}
	return s.scheduleRepo.Create(ctx, repository.CreateScheduleSessionInput{
		GroupID:   groupID,
		DayOfWeek: input.DayOfWeek,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Location:  input.Location,
		CoachID:   input.CoachID,
	})
}

func (s *GroupService) UpdateScheduleSession(ctx context.Context, id int64, input ScheduleSessionInput) (*models.ScheduleSession, error) {
	if err := validateScheduleSlot(input); err != nil {
		return nil, err
	}
	return s.scheduleRepo.Update(ctx, id, repository.UpdateScheduleSessionInput{
		DayOfWeek: input.DayOfWeek,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Location:  input.Location,
		CoachID:   input.CoachID,
	})
}

func (s *GroupService) DeleteScheduleSession(ctx context.Context, id int64) error {
	err := s.scheduleRepo.Deactivate(ctx, id)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return pgx.ErrNoRows
	}
	return err
}

func (s *GroupService) ListSchedule(ctx context.Context, groupID int64) ([]models.ScheduleSession, error) {
	return s.scheduleRepo.ListByGroup(ctx, groupID)
}

func validateScheduleSlot(input ScheduleSessionInput) error {
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return ErrInvalidInput
	}
	start, err := time.Parse("15:04", input.StartTime)
	if err != nil {
		return ErrInvalidInput
	}
	end, err := time.Parse("15:04", input.EndTime)
	if err != nil {
		return ErrInvalidInput
	}
	if !end.After(start) {
		return ErrInvalidInput
	}
	return nil
}
