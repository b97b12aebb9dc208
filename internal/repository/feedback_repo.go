package repository

import (
	"context"
	"time"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type CreateFeedbackInput struct {
	PlayerID    int64
	CoachID     int64
	SessionDate time.Time
	Rating      int
	Comment     *string
}

type FeedbackRepository struct {
	db DBTX
}

func NewFeedbackRepository(db DBTX) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, input CreateFeedbackInput) (*models.Feedback, error) {
	query := `
		INSERT INTO feedback (player_id, coach_id, session_date, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, player_id, coach_id, session_date, rating, comment, created_at, updated_at
	`
	var fb models.Feedback
	err := r.db.QueryRow(ctx, query, input.PlayerID, input.CoachID, input.SessionDate, input.Rating, input.Comment).Scan(
		&fb.ID,
		&fb.PlayerID,
		&fb.CoachID,
		&fb.SessionDate,
		&fb.Rating,
		&fb.Comment,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	query := `
		SELECT id, player_id, coach_id, session_date, rating, comment, created_at, updated_at
		FROM feedback
		WHERE id = $1
	`
	var fb models.Feedback
	err := r.db.QueryRow(ctx, query, id).Scan(
		&fb.ID,
		&fb.PlayerID,
		&fb.CoachID,
		&fb.SessionDate,
		&fb.Rating,
		&fb.Comment,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *FeedbackRepository) Update(ctx context.Context, id int64, rating int, comment *string) (*models.Feedback, error) {
	query := `
		UPDATE feedback
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, player_id, coach_id, session_date, rating, comment, created_at, updated_at
	`
	var fb models.Feedback
	err := r.db.QueryRow(ctx, query, id, rating, comment).Scan(
		&fb.ID,
		&fb.PlayerID,
		&fb.CoachID,
		&fb.SessionDate,
		&fb.Rating,
		&fb.Comment,
		&fb.CreatedAt,
		&fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *FeedbackRepository) ListByPlayer(ctx context.Context, playerID int64) ([]models.Feedback, error) {
	query := `
		SELECT id, player_id, coach_id, session_date, rating, comment, created_at, updated_at
		FROM feedback
		WHERE player_id = $1
		ORDER BY session_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedback := make([]models.Feedback, 0)
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.PlayerID,
			&fb.CoachID,
			&fb.SessionDate,
			&fb.Rating,
			&fb.Comment,
			&fb.CreatedAt,
			&fb.UpdatedAt,
		); err != nil {
			return nil, err
		}
		feedback = append(feedback, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return feedback, nil
}
