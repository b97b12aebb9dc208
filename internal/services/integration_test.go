package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationSubscriptionService(pool *pgxpool.Pool) *SubscriptionService {
	return NewSubscriptionService(
		pool,
		repository.NewSubscriptionRepository(pool),
		repository.NewPaymentRepository(pool),
		repository.NewPackageRepository(pool),
		nil,
	)
}

func newIntegrationAttendanceService(pool *pgxpool.Pool) *AttendanceService {
	return NewAttendanceService(
		pool,
		repository.NewAttendanceRepository(pool),
		repository.NewSubscriptionRepository(pool),
		repository.NewScheduleRepository(pool),
	)
}

func newIntegrationGroupService(pool *pgxpool.Pool) *GroupService {
	return NewGroupService(
		pool,
		repository.NewGroupRepository(pool),
		repository.NewCoachGroupRepository(pool),
		repository.NewScheduleRepository(pool),
		repository.NewUserRepository(pool),
	)
}

func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string) int64 {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	user := &models.User{
		Email:        fmt.Sprintf("test-%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Role:         role,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", role, err)
	}
	return user.ID
}

func createTestPackage(t *testing.T, ctx context.Context, pool *pgxpool.Pool, sessions, validityDays int) int64 {
	t.Helper()

	packageRepo := repository.NewPackageRepository(pool)
	pkg, err := packageRepo.Create(ctx, repository.CreatePackageInput{
		Name:         fmt.Sprintf("test-package-%d", time.Now().UnixNano()),
		SessionCount: sessions,
		ValidityDays: validityDays,
		Price:        1500,
	})
	if err != nil {
		t.Fatalf("Create package: %v", err)
	}
	return pkg.ID
}

func createTestGroup(t *testing.T, ctx context.Context, pool *pgxpool.Pool, maxPlayers int) int64 {
	t.Helper()

	groupRepo := repository.NewGroupRepository(pool)
	group, err := groupRepo.Create(ctx, repository.CreateGroupInput{
		Name:       fmt.Sprintf("test-group-%d", time.Now().UnixNano()),
		Level:      "beginner",
		MaxPlayers: maxPlayers,
	})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	return group.ID
}

func createTestScheduleSession(t *testing.T, ctx context.Context, pool *pgxpool.Pool, groupID int64) int64 {
	t.Helper()

	scheduleRepo := repository.NewScheduleRepository(pool)
	session, err := scheduleRepo.Create(ctx, repository.CreateScheduleSessionInput{
		GroupID:   groupID,
		DayOfWeek: 1,
		StartTime: "18:00",
		EndTime:   "19:30",
	})
	if err != nil {
		t.Fatalf("Create schedule session: %v", err)
	}
	return session.ID
}

// cleanupTestData removes everything hanging off the given users and groups,
// child tables first.
func cleanupTestData(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs []int64, groupIDs []int64) {
	t.Helper()

	if len(groupIDs) > 0 {
		if _, err := pool.Exec(ctx, "DELETE FROM attendance WHERE group_id = ANY($1)", groupIDs); err != nil {
			t.Fatalf("cleanup attendance: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM schedule_sessions WHERE group_id = ANY($1)", groupIDs); err != nil {
			t.Fatalf("cleanup schedule_sessions: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM group_players WHERE group_id = ANY($1)", groupIDs); err != nil {
			t.Fatalf("cleanup group_players: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM coach_groups WHERE group_id = ANY($1)", groupIDs); err != nil {
			t.Fatalf("cleanup coach_groups: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM groups WHERE id = ANY($1)", groupIDs); err != nil {
			t.Fatalf("cleanup groups: %v", err)
		}
	}
	if len(userIDs) > 0 {
		if _, err := pool.Exec(ctx, "DELETE FROM feedback WHERE player_id = ANY($1) OR coach_id = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup feedback: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM attendance WHERE player_id = ANY($1) OR marked_by = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup attendance: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM payments WHERE player_id = ANY($1) OR confirmed_by = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup payments: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM subscriptions WHERE player_id = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup subscriptions: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM group_players WHERE player_id = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup group_players: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM coach_groups WHERE coach_id = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup coach_groups: %v", err)
		}
		if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
			t.Fatalf("cleanup users: %v", err)
		}
	}
}

func cleanupTestPackages(t *testing.T, ctx context.Context, pool *pgxpool.Pool, packageIDs ...int64) {
	t.Helper()

	if len(packageIDs) == 0 {
		return
	}
	if _, err := pool.Exec(ctx, "DELETE FROM packages WHERE id = ANY($1)", packageIDs); err != nil {
		t.Fatalf("cleanup packages: %v", err)
	}
}
