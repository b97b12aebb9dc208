package repository

import (
	"context"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CreateSubscriptionInput struct {
	PlayerID      int64
	PackageID     int64
	SessionsTotal int
}

type SubscriptionRepository struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, input CreateSubscriptionInput) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (player_id, package_id, sessions_total, sessions_remaining, status)
		VALUES ($1, $2, $3, $3, 'pending')
		RETURNING id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
	`

	var sub models.Subscription
	err := r.db.QueryRow(ctx, query, input.PlayerID, input.PackageID, input.SessionsTotal).Scan(
		&sub.ID,
		&sub.PlayerID,
		&sub.PackageID,
		&sub.SessionsTotal,
		&sub.SessionsRemaining,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*models.Subscription, error) {
	query := `
		SELECT id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`
	var sub models.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.PlayerID,
		&sub.PackageID,
		&sub.SessionsTotal,
		&sub.SessionsRemaining,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Subscription, error) {
	query := `
		SELECT id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
		FOR UPDATE
	`
	var sub models.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.PlayerID,
		&sub.PackageID,
		&sub.SessionsTotal,
		&sub.SessionsRemaining,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetConsumableForPlayerForUpdate resolves the player's currently debitable
// subscription under the live eligibility rule. When several qualify the most
// recently created one wins.
func (r *SubscriptionRepository) GetConsumableForPlayerForUpdate(ctx context.Context, playerID int64) (*models.Subscription, error) {
	query := `
		SELECT id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE player_id = $1
		  AND status = 'active'
		  AND sessions_remaining > 0
		  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE
	`
	var sub models.Subscription
	err := r.db.QueryRow(ctx, query, playerID).Scan(
		&sub.ID,
		&sub.PlayerID,
		&sub.PackageID,
		&sub.SessionsTotal,
		&sub.SessionsRemaining,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Activate flips a pending subscription to active and stamps its validity
// window. The WHERE status guard makes double activation report no rows.
func (r *SubscriptionRepository) Activate(ctx context.Context, id int64, validityDays int) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = 'active',
		    start_date = CURRENT_DATE,
		    end_date = CURRENT_DATE + $2 * INTERVAL '1 day',
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
	`
	var sub models.Subscription
	err := r.db.QueryRow(ctx, query, id, validityDays).Scan(
		&sub.ID,
		&sub.PlayerID,
		&sub.PackageID,
		&sub.SessionsTotal,
		&sub.SessionsRemaining,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) UpdateStatusIfCurrent(ctx context.Context, id int64, currentStatus, nextStatus string) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
	`
	var sub models.Subscription
	err := r.db.QueryRow(ctx, query, id, currentStatus, nextStatus).Scan(
		&sub.ID,
		&sub.PlayerID,
		&sub.PackageID,
		&sub.SessionsTotal,
		&sub.SessionsRemaining,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DecrementRemaining debits one session, clamped at zero, and returns the
// resulting balance.
func (r *SubscriptionRepository) DecrementRemaining(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE subscriptions
		SET sessions_remaining = GREATEST(sessions_remaining - 1, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING sessions_remaining
	`
	var remaining int
	if err := r.db.QueryRow(ctx, query, id).Scan(&remaining); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *SubscriptionRepository) ListByPlayer(ctx context.Context, playerID int64) ([]models.Subscription, error) {
	query := `
		SELECT id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE player_id = $1
		ORDER BY id DESC
	`
	return r.list(ctx, query, playerID)
}

func (r *SubscriptionRepository) ListByStatus(ctx context.Context, status string) ([]models.Subscription, error) {
	query := `
		SELECT id, player_id, package_id, sessions_total, sessions_remaining, start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE ($1 = '' OR status = $1)
		ORDER BY id DESC
	`
	return r.list(ctx, query, status)
}

// MarkExpired labels overrun active subscriptions for display. Consumption
// never trusts this label, it always re-checks the live eligibility rule.
func (r *SubscriptionRepository) MarkExpired(ctx context.Context) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date < CURRENT_DATE
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SubscriptionRepository) list(ctx context.Context, query string, args ...any) ([]models.Subscription, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.PlayerID,
			&sub.PackageID,
			&sub.SessionsTotal,
			&sub.SessionsRemaining,
			&sub.StartDate,
			&sub.EndDate,
			&sub.Status,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
