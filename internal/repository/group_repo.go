package repository

import (
	"context"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CreateGroupInput struct {
	Name       string
	Level      string
	MaxPlayers int
}

type UpdateGroupInput struct {
	Name       string
	Level      string
	MaxPlayers int
	IsActive   bool
}

type GroupRepository struct {
	db DBTX
}

func NewGroupRepository(db DBTX) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	query := `
		INSERT INTO groups (name, level, max_players)
		VALUES ($1, $2, $3)
		RETURNING id, name, level, max_players, is_active, created_at, updated_at
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, input.Name, input.Level, input.MaxPlayers).Scan(
		&group.ID,
		&group.Name,
		&group.Level,
		&group.MaxPlayers,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) Update(ctx context.Context, id int64, input UpdateGroupInput) (*models.Group, error) {
	query := `
		UPDATE groups
		SET name = $2, level = $3, max_players = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, level, max_players, is_active, created_at, updated_at
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id, input.Name, input.Level, input.MaxPlayers, input.IsActive).Scan(
		&group.ID,
		&group.Name,
		&group.Level,
		&group.MaxPlayers,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	query := `
		SELECT id, name, level, max_players, is_active, created_at, updated_at
		FROM groups
		WHERE id = $1
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Level,
		&group.MaxPlayers,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetByIDForUpdate locks the group row so capacity check and member insert
// share one transaction without racing a concurrent add.
func (r *GroupRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Group, error) {
	query := `
		SELECT id, name, level, max_players, is_active, created_at, updated_at
		FROM groups
		WHERE id = $1
		FOR UPDATE
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Level,
		&group.MaxPlayers,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) Deactivate(ctx context.Context, id int64) (*models.Group, error) {
	query := `
		UPDATE groups
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, level, max_players, is_active, created_at, updated_at
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Level,
		&group.MaxPlayers,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	return err
}

func (r *GroupRepository) List(ctx context.Context, activeOnly bool) ([]models.GroupDetail, error) {
	query := `
		SELECT g.id, g.name, g.level, g.max_players, g.is_active, g.created_at, g.updated_at,
		       COUNT(gp.id) FILTER (WHERE gp.is_active)
		FROM groups g
		LEFT JOIN group_players gp ON gp.group_id = g.id
		WHERE ($1 = FALSE OR g.is_active)
		GROUP BY g.id
		ORDER BY g.id ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.GroupDetail, 0)
	for rows.Next() {
		var detail models.GroupDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.Name,
			&detail.Level,
			&detail.MaxPlayers,
			&detail.IsActive,
			&detail.CreatedAt,
			&detail.UpdatedAt,
			&detail.ActiveMembers,
		); err != nil {
			return nil, err
		}
		groups = append(groups, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) CountActiveMembers(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM group_players WHERE group_id = $1 AND is_active`,
		groupID,
	).Scan(&count)
	return count, err
}

func (r *GroupRepository) ListActiveMemberIDs(ctx context.Context, groupID int64) (map[int64]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT player_id FROM group_players WHERE group_id = $1 AND is_active`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make(map[int64]struct{})
	for rows.Next() {
		var playerID int64
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		members[playerID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// UpsertMembership reactivates a soft-deleted edge instead of duplicating it.
func (r *GroupRepository) UpsertMembership(ctx context.Context, groupID, playerID int64) (*models.GroupPlayer, error) {
	query := `
		INSERT INTO group_players (group_id, player_id, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (group_id, player_id) DO UPDATE SET is_active = TRUE
		RETURNING id, group_id, player_id, is_active, created_at
	`
	var member models.GroupPlayer
	err := r.db.QueryRow(ctx, query, groupID, playerID).Scan(
		&member.ID,
		&member.GroupID,
		&member.PlayerID,
		&member.IsActive,
		&member.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GroupRepository) DeactivateMembership(ctx context.Context, groupID, playerID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE group_players SET is_active = FALSE WHERE group_id = $1 AND player_id = $2 AND is_active`,
		groupID, playerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *GroupRepository) HasAttendanceHistory(ctx context.Context, groupID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendance WHERE group_id = $1)`,
		groupID,
	).Scan(&exists)
	return exists, err
}
