package repository

import (
	"context"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CreatePaymentInput struct {
	SubscriptionID int64
	PlayerID       int64
	Amount         float64
	Method         string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (subscription_id, player_id, amount, method, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, input.SubscriptionID, input.PlayerID, input.Amount, input.Method).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	query := `
		SELECT id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
		FROM payments
		WHERE id = $1
	`
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Payment, error) {
	query := `
		SELECT id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetBySubscriptionID(ctx context.Context, subscriptionID int64) (*models.Payment, error) {
	query := `
		SELECT id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
		FROM payments
		WHERE subscription_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, subscriptionID).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListBySubscriptionIDs(ctx context.Context, subscriptionIDs []int64) (map[int64]models.Payment, error) {
	payments := make(map[int64]models.Payment, len(subscriptionIDs))
	if len(subscriptionIDs) == 0 {
		return payments, nil
	}

	query := `
		SELECT DISTINCT ON (subscription_id) id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
		FROM payments
		WHERE subscription_id = ANY($1)
		ORDER BY subscription_id, id DESC
	`

	rows, err := r.db.Query(ctx, query, subscriptionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.SubscriptionID,
			&payment.PlayerID,
			&payment.Amount,
			&payment.Method,
			&payment.ScreenshotURL,
			&payment.Status,
			&payment.ConfirmedAt,
			&payment.ConfirmedBy,
			&payment.RejectionReason,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments[payment.SubscriptionID] = payment
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// Confirm is a compare-and-swap on the pending status; re-confirming a
// terminal payment reports no rows.
func (r *PaymentRepository) Confirm(ctx context.Context, id int64, reviewerID int64) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'confirmed', confirmed_at = NOW(), confirmed_by = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
	`
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id, reviewerID).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Reject(ctx context.Context, id int64, reviewerID int64, reason string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'rejected', confirmed_by = $2, rejection_reason = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
	`
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id, reviewerID, reason).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) UpdateScreenshotURL(ctx context.Context, id int64, screenshotURL string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET screenshot_url = $2
		WHERE id = $1
		RETURNING id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
	`
	var payment models.Payment
	err := r.db.QueryRow(ctx, query, id, screenshotURL).Scan(
		&payment.ID,
		&payment.SubscriptionID,
		&payment.PlayerID,
		&payment.Amount,
		&payment.Method,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.ConfirmedAt,
		&payment.ConfirmedBy,
		&payment.RejectionReason,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, status string) ([]models.Payment, error) {
	query := `
		SELECT id, subscription_id, player_id, amount, method, screenshot_url, status, confirmed_at, confirmed_by, rejection_reason, created_at
		FROM payments
		WHERE ($1 = '' OR status = $1)
		ORDER BY id DESC
	`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		var payment models.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.SubscriptionID,
			&payment.PlayerID,
			&payment.Amount,
			&payment.Method,
			&payment.ScreenshotURL,
			&payment.Status,
			&payment.ConfirmedAt,
			&payment.ConfirmedBy,
			&payment.RejectionReason,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
