package services

import (
	"context"
	"testing"
	"time"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

func TestSubscriptionPurchaseConfirmActivates(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSubscriptionService(pool)

	playerID := createTestUser(t, ctx, pool, models.RolePlayer)
	adminID := createTestUser(t, ctx, pool, models.RoleAdmin)
	packageID := createTestPackage(t, ctx, pool, 8, 30)
	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool, []int64{playerID, adminID}, nil)
		cleanupTestPackages(t, ctx, pool, packageID)
	})

	detail, err := service.Purchase(ctx, playerID, PurchaseInput{PackageID: packageID, Method: "instapay"})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if detail.Status != models.SubscriptionPending {
		t.Fatalf("expected pending subscription, got %q", detail.Status)
	}
	if detail.SessionsRemaining != 8 || detail.SessionsTotal != 8 {
		t.Fatalf("expected 8/8 sessions, got %d/%d", detail.SessionsRemaining, detail.SessionsTotal)
	}
	if detail.Payment == nil || detail.Payment.Status != models.PaymentPending {
		t.Fatalf("expected pending payment, got %+v", detail.Payment)
	}
	if detail.StartDate != nil || detail.EndDate != nil {
		t.Fatalf("pending subscription must not carry dates, got %v %v", detail.StartDate, detail.EndDate)
	}

	confirmed, err := service.ConfirmPayment(ctx, adminID, detail.Payment.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if confirmed.Status != models.SubscriptionActive {
		t.Fatalf("expected active subscription after confirm, got %q", confirmed.Status)
	}
	if confirmed.Payment.Status != models.PaymentConfirmed {
		t.Fatalf("expected confirmed payment, got %q", confirmed.Payment.Status)
	}
	if confirmed.Payment.ConfirmedBy == nil || *confirmed.Payment.ConfirmedBy != adminID {
		t.Fatalf("expected confirmed_by %d, got %v", adminID, confirmed.Payment.ConfirmedBy)
	}
	if confirmed.StartDate == nil || confirmed.EndDate == nil {
		t.Fatal("active subscription must carry start and end dates")
	}
	wantEnd := confirmed.StartDate.AddDate(0, 0, 30)
	if !confirmed.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date %v, got %v", wantEnd, *confirmed.EndDate)
	}
}

func TestSubscriptionConfirmPaymentTwiceFails(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSubscriptionService(pool)

	playerID := createTestUser(t, ctx, pool, models.RolePlayer)
	adminID := createTestUser(t, ctx, pool, models.RoleAdmin)
	packageID := createTestPackage(t, ctx, pool, 4, 14)
	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool, []int64{playerID, adminID}, nil)
		cleanupTestPackages(t, ctx, pool, packageID)
	})

	detail, err := service.Purchase(ctx, playerID, PurchaseInput{PackageID: packageID, Method: "cash"})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if _, err := service.ConfirmPayment(ctx, adminID, detail.Payment.ID); err != nil {
		t.Fatalf("first ConfirmPayment: %v", err)
	}
	if _, err := service.ConfirmPayment(ctx, adminID, detail.Payment.ID); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState on second confirm, got %v", err)
	}
}

func TestSubscriptionRejectPaymentCancels(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSubscriptionService(pool)

	playerID := createTestUser(t, ctx, pool, models.RolePlayer)
	adminID := createTestUser(t, ctx, pool, models.RoleAdmin)
	packageID := createTestPackage(t, ctx, pool, 4, 14)
	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool, []int64{playerID, adminID}, nil)
		cleanupTestPackages(t, ctx, pool, packageID)
	})

	detail, err := service.Purchase(ctx, playerID, PurchaseInput{PackageID: packageID, Method: "instapay"})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	if _, err := service.RejectPayment(ctx, adminID, detail.Payment.ID, ""); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for empty reason, got %v", err)
	}

	rejected, err := service.RejectPayment(ctx, adminID, detail.Payment.ID, "screenshot unreadable")
	if err != nil {
		t.Fatalf("RejectPayment: %v", err)
	}
	if rejected.Status != models.SubscriptionCancelled {
		t.Fatalf("expected cancelled subscription, got %q", rejected.Status)
	}
	if rejected.Payment.Status != models.PaymentRejected {
		t.Fatalf("expected rejected payment, got %q", rejected.Payment.Status)
	}
	if rejected.Payment.RejectionReason == nil || *rejected.Payment.RejectionReason != "screenshot unreadable" {
		t.Fatalf("expected rejection reason to persist, got %v", rejected.Payment.RejectionReason)
	}

	// A cancelled subscription cannot be activated through the standalone path.
	if _, err := service.Activate(ctx, detail.ID); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState on activating cancelled subscription, got %v", err)
	}
}

func TestSubscriptionActivateRequiresConfirmedPayment(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSubscriptionService(pool)

	playerID := createTestUser(t, ctx, pool, models.RolePlayer)
	packageID := createTestPackage(t, ctx, pool, 4, 14)
	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool, []int64{playerID}, nil)
		cleanupTestPackages(t, ctx, pool, packageID)
	})

	detail, err := service.Purchase(ctx, playerID, PurchaseInput{PackageID: packageID, Method: "cash"})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if _, err := service.Activate(ctx, detail.ID); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState while payment pending, got %v", err)
	}
}

func TestSubscriptionPurchaseRejectsInactivePackage(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSubscriptionService(pool)

	playerID := createTestUser(t, ctx, pool, models.RolePlayer)
	packageID := createTestPackage(t, ctx, pool, 4, 14)
	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool, []int64{playerID}, nil)
		cleanupTestPackages(t, ctx, pool, packageID)
	})

	if _, err := pool.Exec(ctx, "UPDATE packages SET is_active = FALSE WHERE id = $1", packageID); err != nil {
		t.Fatalf("deactivate package: %v", err)
	}
	if _, err := service.Purchase(ctx, playerID, PurchaseInput{PackageID: packageID, Method: "cash"}); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState for inactive package, got %v", err)
	}
}

func TestSubscriptionListAllSweepsExpired(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSubscriptionService(pool)

	playerID := createTestUser(t, ctx, pool, models.RolePlayer)
	adminID := createTestUser(t, ctx, pool, models.RoleAdmin)
	packageID := createTestPackage(t, ctx, pool, 4, 14)
	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool, []int64{playerID, adminID}, nil)
		cleanupTestPackages(t, ctx, pool, packageID)
	})

	detail, err := service.Purchase(ctx, playerID, PurchaseInput{PackageID: packageID, Method: "cash"})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if _, err := service.ConfirmPayment(ctx, adminID, detail.Payment.ID); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	// Backdate past the validity window.
	past := time.Now().UTC().AddDate(0, 0, -1)
	if _, err := pool.Exec(ctx, "UPDATE subscriptions SET end_date = $1 WHERE id = $2", past, detail.ID); err != nil {
		t.Fatalf("backdate subscription: %v", err)
	}

	listed, err := service.ListAll(ctx, models.SubscriptionExpired)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	found := false
	for _, item := range listed {
		if item.ID == detail.ID {
			found = true
			if item.Status != models.SubscriptionExpired {
				t.Fatalf("expected expired status, got %q", item.Status)
			}
		}
	}
	if !found {
		t.Fatalf("expected subscription %d in expired listing", detail.ID)
	}
}
