package services

import (
	"context"
	"time"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
)

// Authors may edit or delete their feedback only within this window of its
// creation. Admins bypass both the author check and the window.
const feedbackEditWindow = 48 * time.Hour

type feedbackStore interface {
	Create(ctx context.Context, input repository.CreateFeedbackInput) (*models.Feedback, error)
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	Update(ctx context.Context, id int64, rating int, comment *string) (*models.Feedback, error)
	Delete(ctx context.Context, id int64) error
	ListByPlayer(ctx context.Context, playerID int64) ([]models.Feedback, error)
}

type FeedbackService struct {
	feedbackRepo feedbackStore
}

func NewFeedbackService(feedbackRepo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo}
}

type CreateFeedbackInput struct {
	PlayerID    int64
	SessionDate time.Time
	Rating      int
	Comment     *string
}

func (s *FeedbackService) Create(ctx context.Context, actorID int64, role string, input CreateFeedbackInput) (*models.Feedback, error) {
	if role != models.RoleCoach && role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if input.PlayerID <= 0 || input.SessionDate.IsZero() {
		return nil, ErrInvalidInput
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidInput
	}

	return s.feedbackRepo.Create(ctx, repository.CreateFeedbackInput{
		PlayerID:    input.PlayerID,
		CoachID:     actorID,
		SessionDate: dateOnly(input.SessionDate),
		Rating:      input.Rating,
		Comment:     input.Comment,
	})
}

func (s *FeedbackService) Update(ctx context.Context, actorID int64, role string, id int64, rating int, comment *string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}
	if _, err := s.authorizeEdit(ctx, actorID, role, id); err != nil {
		return nil, err
	}
	return s.feedbackRepo.Update(ctx, id, rating, comment)
}

func (s *FeedbackService) Delete(ctx context.Context, actorID int64, role string, id int64) error {
	if _, err := s.authorizeEdit(ctx, actorID, role, id); err != nil {
		return err
	}
	return s.feedbackRepo.Delete(ctx, id)
}

func (s *FeedbackService) ListByPlayer(ctx context.Context, actorID int64, role string, playerID int64) ([]models.Feedback, error) {
	if role == models.RolePlayer && actorID != playerID {
		return nil, ErrForbidden
	}
	return s.feedbackRepo.ListByPlayer(ctx, playerID)
}

func (s *FeedbackService) authorizeEdit(ctx context.Context, actorID int64, role string, id int64) (*models.Feedback, error) {
	fb, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		return fb, nil
	}
	if fb.CoachID != actorID {
		return nil, ErrForbidden
	}
	if time.Since(fb.CreatedAt) > feedbackEditWindow {
		return nil, ErrOutOfWindow
	}
	return fb, nil
}
