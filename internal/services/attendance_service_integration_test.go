package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kmagued/beachamp-training-sub001/internal/models"
)

type attendanceFixture struct {
	playerID          int64
	coachID           int64
	adminID           int64
	groupID           int64
	scheduleSessionID int64
	packageID         int64
}

func newAttendanceFixture(t *testing.T, ctx context.Context) (attendanceFixture, *AttendanceService, *SubscriptionService) {
	t.Helper()
	pool := integrationTestPool(t)

	fixture := attendanceFixture{
		playerID:  createTestUser(t, ctx, pool, models.RolePlayer),
		coachID:   createTestUser(t, ctx, pool, models.RoleCoach),
		adminID:   createTestUser(t, ctx, pool, models.RoleAdmin),
		groupID:   createTestGroup(t, ctx, pool, 12),
		packageID: createTestPackage(t, ctx, pool, 8, 30),
	}
	fixture.scheduleSessionID = createTestScheduleSession(t, ctx, pool, fixture.groupID)

	t.Cleanup(func() {
		cleanupTestData(t, ctx, pool,
			[]int64{fixture.playerID, fixture.coachID, fixture.adminID},
			[]int64{fixture.groupID},
		)
		cleanupTestPackages(t, ctx, pool, fixture.packageID)
	})

	return fixture, newIntegrationAttendanceService(pool), newIntegrationSubscriptionService(pool)
}

func activateTestSubscription(t *testing.T, ctx context.Context, subs *SubscriptionService, fixture attendanceFixture) *models.SubscriptionDetail {
	t.Helper()

	detail, err := subs.Purchase(ctx, fixture.playerID, PurchaseInput{PackageID: fixture.packageID, Method: "cash"})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	confirmed, err := subs.ConfirmPayment(ctx, fixture.adminID, detail.Payment.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	return confirmed
}

func TestLogAttendanceDeductsOnce(t *testing.T) {
	ctx := context.Background()
	fixture, service, subs := newAttendanceFixture(t, ctx)
	activateTestSubscription(t, ctx, subs, fixture)

	today := time.Now().UTC()
	input := LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       today,
		Status:            models.AttendancePresent,
	}

	first, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, input)
	if err != nil {
		t.Fatalf("first LogAttendance: %v", err)
	}
	if !first.Deducted || first.Updated {
		t.Fatalf("expected fresh deducting record, got %+v", first)
	}
	if first.SessionsRemaining == nil || *first.SessionsRemaining != 7 {
		t.Fatalf("expected 7 sessions remaining, got %v", first.SessionsRemaining)
	}

	// Same occurrence again: status may change, balance must not.
	input.Status = models.AttendanceAbsent
	second, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, input)
	if err != nil {
		t.Fatalf("second LogAttendance: %v", err)
	}
	if !second.Updated || second.Deducted {
		t.Fatalf("expected idempotent update, got %+v", second)
	}
	if second.SessionsRemaining == nil || *second.SessionsRemaining != 7 {
		t.Fatalf("expected 7 sessions remaining after re-log, got %v", second.SessionsRemaining)
	}
	if second.Attendance.Status != models.AttendanceAbsent {
		t.Fatalf("expected status updated to absent, got %q", second.Attendance.Status)
	}
}

func TestLogAttendanceConcurrentMarksDeductOnce(t *testing.T) {
	ctx := context.Background()
	fixture, service, subs := newAttendanceFixture(t, ctx)
	activateTestSubscription(t, ctx, subs, fixture)

	today := time.Now().UTC()
	const workers = 8

	var wg sync.WaitGroup
	results := make([]*LogAttendanceResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, LogAttendanceInput{
				PlayerID:          fixture.playerID,
				GroupID:           fixture.groupID,
				ScheduleSessionID: fixture.scheduleSessionID,
				SessionDate:       today,
				Status:            models.AttendancePresent,
			})
		}(i)
	}
	wg.Wait()

	deductions := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i].Deducted {
			deductions++
		}
	}
	if deductions != 1 {
		t.Fatalf("expected exactly 1 deduction across %d concurrent marks, got %d", workers, deductions)
	}

	pool := integrationTestPool(t)
	var remaining int
	err := pool.QueryRow(ctx,
		"SELECT sessions_remaining FROM subscriptions WHERE player_id = $1", fixture.playerID,
	).Scan(&remaining)
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if remaining != 7 {
		t.Fatalf("expected 7 sessions remaining, got %d", remaining)
	}
}

func TestLogAttendanceWithoutSubscriptionStillRecords(t *testing.T) {
	ctx := context.Background()
	fixture, service, _ := newAttendanceFixture(t, ctx)

	result, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       time.Now().UTC(),
		Status:            models.AttendancePresent,
	})
	if err != nil {
		t.Fatalf("LogAttendance: %v", err)
	}
	if result.Attendance == nil {
		t.Fatal("expected attendance record without a subscription")
	}
	if result.Deducted || result.SessionsRemaining != nil {
		t.Fatalf("expected no deduction without a subscription, got %+v", result)
	}
}

func TestLogAttendanceBalanceClampsAtZero(t *testing.T) {
	ctx := context.Background()
	fixture, service, subs := newAttendanceFixture(t, ctx)
	detail := activateTestSubscription(t, ctx, subs, fixture)

	pool := integrationTestPool(t)
	if _, err := pool.Exec(ctx,
		"UPDATE subscriptions SET sessions_remaining = 1 WHERE id = $1", detail.ID,
	); err != nil {
		t.Fatalf("set balance: %v", err)
	}

	today := time.Now().UTC()
	result, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       today,
		Status:            models.AttendancePresent,
	})
	if err != nil {
		t.Fatalf("LogAttendance: %v", err)
	}
	if result.SessionsRemaining == nil || *result.SessionsRemaining != 0 {
		t.Fatalf("expected balance 0, got %v", result.SessionsRemaining)
	}

	// The drained subscription is no longer consumable; yesterday's session
	// still records but deducts nothing.
	yesterday := today.AddDate(0, 0, -1)
	result, err = service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       yesterday,
		Status:            models.AttendancePresent,
	})
	if err != nil {
		t.Fatalf("LogAttendance after drain: %v", err)
	}
	if result.Deducted {
		t.Fatal("expected no deduction from a drained subscription")
	}
}

func TestLogAttendanceMostRecentSubscriptionWins(t *testing.T) {
	ctx := context.Background()
	fixture, service, subs := newAttendanceFixture(t, ctx)
	older := activateTestSubscription(t, ctx, subs, fixture)
	newer := activateTestSubscription(t, ctx, subs, fixture)

	result, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       time.Now().UTC(),
		Status:            models.AttendancePresent,
	})
	if err != nil {
		t.Fatalf("LogAttendance: %v", err)
	}
	if !result.Deducted {
		t.Fatal("expected a deduction")
	}

	pool := integrationTestPool(t)
	var olderRemaining, newerRemaining int
	if err := pool.QueryRow(ctx, "SELECT sessions_remaining FROM subscriptions WHERE id = $1", older.ID).Scan(&olderRemaining); err != nil {
		t.Fatalf("read older balance: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT sessions_remaining FROM subscriptions WHERE id = $1", newer.ID).Scan(&newerRemaining); err != nil {
		t.Fatalf("read newer balance: %v", err)
	}
	if olderRemaining != 8 {
		t.Fatalf("older subscription must be untouched, got %d", olderRemaining)
	}
	if newerRemaining != 7 {
		t.Fatalf("newer subscription must carry the deduction, got %d", newerRemaining)
	}
}

func TestUpdateRecordNeverRefunds(t *testing.T) {
	ctx := context.Background()
	fixture, service, subs := newAttendanceFixture(t, ctx)
	detail := activateTestSubscription(t, ctx, subs, fixture)

	result, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       time.Now().UTC(),
		Status:            models.AttendancePresent,
	})
	if err != nil {
		t.Fatalf("LogAttendance: %v", err)
	}

	updated, err := service.UpdateRecord(ctx, fixture.adminID, models.RoleAdmin, result.Attendance.ID, models.AttendanceExcused, nil)
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if updated.Status != models.AttendanceExcused {
		t.Fatalf("expected excused, got %q", updated.Status)
	}

	pool := integrationTestPool(t)
	var remaining int
	if err := pool.QueryRow(ctx, "SELECT sessions_remaining FROM subscriptions WHERE id = $1", detail.ID).Scan(&remaining); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if remaining != 7 {
		t.Fatalf("correction must not change the balance, got %d", remaining)
	}
}

func TestLogAttendanceRejectsDatesOutsideWindow(t *testing.T) {
	ctx := context.Background()
	fixture, service, _ := newAttendanceFixture(t, ctx)

	base := LogAttendanceInput{
		PlayerID:          fixture.playerID,
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		Status:            models.AttendancePresent,
	}

	future := base
	future.SessionDate = time.Now().UTC().AddDate(0, 0, 1)
	if _, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, future); err != ErrOutOfWindow {
		t.Fatalf("expected ErrOutOfWindow for tomorrow, got %v", err)
	}

	stale := base
	stale.SessionDate = time.Now().UTC().AddDate(0, 0, -8)
	if _, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, stale); err != ErrOutOfWindow {
		t.Fatalf("expected ErrOutOfWindow for 8 days back, got %v", err)
	}

	edge := base
	edge.SessionDate = time.Now().UTC().AddDate(0, 0, -7)
	if _, err := service.LogAttendance(ctx, fixture.coachID, models.RoleCoach, edge); err != nil {
		t.Fatalf("expected 7 days back to be accepted, got %v", err)
	}
}

func TestLogBatchReportsPerPlayerOutcomes(t *testing.T) {
	ctx := context.Background()
	fixture, service, subs := newAttendanceFixture(t, ctx)
	activateTestSubscription(t, ctx, subs, fixture)

	results, err := service.LogBatch(ctx, fixture.coachID, models.RoleCoach, LogBatchInput{
		GroupID:           fixture.groupID,
		ScheduleSessionID: fixture.scheduleSessionID,
		SessionDate:       time.Now().UTC(),
		Entries: []BatchEntry{
			{PlayerID: fixture.playerID, Status: models.AttendancePresent},
			{PlayerID: -1, Status: models.AttendancePresent},
		},
	})
	if err != nil {
		t.Fatalf("LogBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != "" || results[0].Result == nil || !results[0].Result.Deducted {
		t.Fatalf("expected first entry to succeed and deduct, got %+v", results[0])
	}
	if results[1].Error == "" {
		t.Fatalf("expected second entry to fail, got %+v", results[1])
	}
}
