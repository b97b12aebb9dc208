package repository

import (
	"context"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CoachGroupRepository struct {
	db DBTX
}

func NewCoachGroupRepository(db DBTX) *CoachGroupRepository {
	return &CoachGroupRepository{db: db}
}

// DemotePrimary clears the primary flag from any active assignment in the
// group. Called before promoting a new primary so the single-primary
// invariant never observes two winners.
func (r *CoachGroupRepository) DemotePrimary(ctx context.Context, groupID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE coach_groups SET is_primary = FALSE WHERE group_id = $1 AND is_primary AND is_active`,
		groupID,
	)
	return err
}

func (r *CoachGroupRepository) Upsert(ctx context.Context, groupID, coachID int64, isPrimary bool) (*models.CoachGroup, error) {
	query := `
		INSERT INTO coach_groups (group_id, coach_id, is_primary, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (group_id, coach_id) DO UPDATE SET is_primary = $3, is_active = TRUE
		RETURNING id, group_id, coach_id, is_primary, is_active, created_at
	`
	var assignment models.CoachGroup
	err := r.db.QueryRow(ctx, query, groupID, coachID, isPrimary).Scan(
		&assignment.ID,
		&assignment.GroupID,
		&assignment.CoachID,
		&assignment.IsPrimary,
		&assignment.IsActive,
		&assignment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *CoachGroupRepository) Deactivate(ctx context.Context, groupID, coachID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE coach_groups SET is_active = FALSE, is_primary = FALSE WHERE group_id = $1 AND coach_id = $2 AND is_active`,
		groupID, coachID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *CoachGroupRepository) ListByGroup(ctx context.Context, groupID int64) ([]models.CoachGroup, error) {
	query := `
		SELECT id, group_id, coach_id, is_primary, is_active, created_at
		FROM coach_groups
		WHERE group_id = $1 AND is_active
		ORDER BY is_primary DESC, id ASC
	`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.CoachGroup, 0)
	for rows.Next() {
		var assignment models.CoachGroup
		if err := rows.Scan(
			&assignment.ID,
			&assignment.GroupID,
			&assignment.CoachID,
			&assignment.IsPrimary,
			&assignment.IsActive,
			&assignment.CreatedAt,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}
