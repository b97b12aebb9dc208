package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
)

type SubscriptionService struct {
	db               *pgxpool.Pool
	subscriptionRepo *repository.SubscriptionRepository
	paymentRepo      *repository.PaymentRepository
	packageRepo      *repository.PackageRepository
	storageService   StorageService
}

func NewSubscriptionService(
	db *pgxpool.Pool,
	subscriptionRepo *repository.SubscriptionRepository,
	paymentRepo *repository.PaymentRepository,
	packageRepo *repository.PackageRepository,
	storageService StorageService,
) *SubscriptionService {
	return &SubscriptionService{
		db:               db,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		packageRepo:      packageRepo,
		storageService:   storageService,
	}
}

type PurchaseInput struct {
	PackageID int64
	Method    string
}

// Purchase creates a pending subscription and its paired pending payment as
// one transaction. Neither ever exists without the other.
func (s *SubscriptionService) Purchase(ctx context.Context, playerID int64, input PurchaseInput) (*models.SubscriptionDetail, error) {
	if input.PackageID <= 0 || strings.TrimSpace(input.Method) == "" {
		return nil, ErrInvalidInput
	}

	pkg, err := s.packageRepo.GetByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrInvalidState
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSubscriptionRepo := repository.NewSubscriptionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)

	sub, err := txSubscriptionRepo.Create(ctx, repository.CreateSubscriptionInput{
		PlayerID:      playerID,
		PackageID:     pkg.ID,
		SessionsTotal: pkg.SessionCount,
	})
	if err != nil {
		return nil, err
	}

	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		SubscriptionID: sub.ID,
		PlayerID:       playerID,
		Amount:         pkg.Price,
		Method:         strings.TrimSpace(input.Method),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.SubscriptionDetail{Subscription: *sub, Payment: payment}, nil
}

// ConfirmPayment confirms a pending payment and activates its subscription in
// the same transaction. If activation fails the confirmation rolls back too,
// so a confirmed payment can never sit against a still-pending subscription.
func (s *SubscriptionService) ConfirmPayment(ctx context.Context, reviewerID, paymentID int64) (*models.SubscriptionDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	txSubscriptionRepo := repository.NewSubscriptionRepository(tx)

	payment, err := txPaymentRepo.GetByIDForUpdate(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrInvalidState
	}

	confirmed, err := txPaymentRepo.Confirm(ctx, paymentID, reviewerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	sub, err := s.activateTx(ctx, tx, txSubscriptionRepo, payment.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.SubscriptionDetail{Subscription: *sub, Payment: confirmed}, nil
}

// RejectPayment rejects a pending payment and cancels its subscription in the
// same transaction. A cancelled subscription is never consumable again.
func (s *SubscriptionService) RejectPayment(ctx context.Context, reviewerID, paymentID int64, reason string) (*models.SubscriptionDetail, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	txSubscriptionRepo := repository.NewSubscriptionRepository(tx)

	payment, err := txPaymentRepo.GetByIDForUpdate(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrInvalidState
	}

	rejected, err := txPaymentRepo.Reject(ctx, paymentID, reviewerID, reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	sub, err := txSubscriptionRepo.UpdateStatusIfCurrent(ctx, payment.SubscriptionID, models.SubscriptionPending, models.SubscriptionCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.SubscriptionDetail{Subscription: *sub, Payment: rejected}, nil
}

// Activate is the standalone admin path. It requires the paired payment to be
// confirmed already; the usual route is through ConfirmPayment.
func (s *SubscriptionService) Activate(ctx context.Context, subscriptionID int64) (*models.Subscription, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	txSubscriptionRepo := repository.NewSubscriptionRepository(tx)

	payment, err := txPaymentRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	if payment.Status != models.PaymentConfirmed {
		return nil, ErrInvalidState
	}

	sub, err := s.activateTx(ctx, tx, txSubscriptionRepo, subscriptionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) activateTx(ctx context.Context, tx pgx.Tx, txSubscriptionRepo *repository.SubscriptionRepository, subscriptionID int64) (*models.Subscription, error) {
	sub, err := txSubscriptionRepo.GetByIDForUpdate(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionPending {
		return nil, ErrInvalidState
	}

	txPackageRepo := repository.NewPackageRepository(tx)
	pkg, err := txPackageRepo.GetByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}

	activated, err := txSubscriptionRepo.Activate(ctx, subscriptionID, pkg.ValidityDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return activated, nil
}

// AttachScreenshot uploads the payment proof and stores the returned opaque
// reference. Only the paying player (or an admin) may attach, and only while
// the payment is still pending review.
func (s *SubscriptionService) AttachScreenshot(ctx context.Context, actorID int64, role string, paymentID int64, file multipart.File, filename string) (*models.Payment, error) {
	if s.storageService == nil {
		return nil, ErrStorageDisabled
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && payment.PlayerID != actorID {
		return nil, ErrForbidden
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrInvalidState
	}

	storedName := fmt.Sprintf("payment-%d-%s", paymentID, filename)
	fileURL, err := s.storageService.UploadFile(ctx, file, storedName, "payment-screenshots")
	if err != nil {
		return nil, err
	}

	updated, err := s.paymentRepo.UpdateScreenshotURL(ctx, paymentID, fileURL)
	if err != nil {
		if deleteErr := s.storageService.DeleteFile(ctx, fileURL); deleteErr != nil {
			return nil, fmt.Errorf("%w (cleanup failed: %v)", err, deleteErr)
		}
		return nil, err
	}
	return updated, nil
}

func (s *SubscriptionService) Get(ctx context.Context, actorID int64, role string, subscriptionID int64) (*models.SubscriptionDetail, error) {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && role != models.RoleCoach && sub.PlayerID != actorID {
		return nil, ErrForbidden
	}

	detail := &models.SubscriptionDetail{Subscription: *sub}
	payment, err := s.paymentRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

func (s *SubscriptionService) ListForPlayer(ctx context.Context, playerID int64) ([]models.SubscriptionDetail, error) {
	subs, err := s.subscriptionRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.attachPayments(ctx, subs)
}

// ListAll is the admin view. The expired sweep runs first so listings carry a
// fresh display label; consumption never reads that label.
func (s *SubscriptionService) ListAll(ctx context.Context, status string) ([]models.SubscriptionDetail, error) {
	if _, err := s.subscriptionRepo.MarkExpired(ctx); err != nil {
		return nil, err
	}
	subs, err := s.subscriptionRepo.ListByStatus(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}
	return s.attachPayments(ctx, subs)
}

func (s *SubscriptionService) attachPayments(ctx context.Context, subs []models.Subscription) ([]models.SubscriptionDetail, error) {
	subIDs := make([]int64, 0, len(subs))
	for _, sub := range subs {
		subIDs = append(subIDs, sub.ID)
	}

	paymentsBySub, err := s.paymentRepo.ListBySubscriptionIDs(ctx, subIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SubscriptionDetail, 0, len(subs))
	for _, sub := range subs {
		detail := models.SubscriptionDetail{Subscription: sub}
		if payment, ok := paymentsBySub[sub.ID]; ok {
			paymentCopy := payment
			detail.Payment = &paymentCopy
		}
		details = append(details, detail)
	}
	return details, nil
}
