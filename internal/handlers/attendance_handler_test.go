package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

type stubAttendanceService struct {
	logResult    *services.LogAttendanceResult
	logErr       error
	batchResults []services.BatchEntryResult
	batchErr     error
	updateResult *models.Attendance
	updateErr    error
	listResult   []models.Attendance
	listTotal    int
	listErr      error
	lastMarkedBy int64
	lastRole     string
	lastInput    services.LogAttendanceInput
	lastBatch    services.LogBatchInput
}

func (s *stubAttendanceService) LogAttendance(_ context.Context, markedBy int64, role string, input services.LogAttendanceInput) (*services.LogAttendanceResult, error) {
	s.lastMarkedBy = markedBy
	s.lastRole = role
	s.lastInput = input
	return s.logResult, s.logErr
}

func (s *stubAttendanceService) LogBatch(_ context.Context, markedBy int64, role string, input services.LogBatchInput) ([]services.BatchEntryResult, error) {
	s.lastMarkedBy = markedBy
	s.lastRole = role
	s.lastBatch = input
	return s.batchResults, s.batchErr
}

func (s *stubAttendanceService) UpdateRecord(_ context.Context, actorID int64, role string, id int64, status string, notes *string) (*models.Attendance, error) {
	s.lastMarkedBy = actorID
	s.lastRole = role
	return s.updateResult, s.updateErr
}

func (s *stubAttendanceService) ListByOccurrence(_ context.Context, role string, scheduleSessionID int64, sessionDate time.Time) ([]models.Attendance, error) {
	s.lastRole = role
	return s.listResult, nil
}

func (s *stubAttendanceService) ListByPlayer(_ context.Context, actorID int64, role string, playerID int64, limit, offset int) ([]models.Attendance, int, error) {
	s.lastMarkedBy = actorID
	s.lastRole = role
	return s.listResult, s.listTotal, s.listErr
}

func newAttendanceTestApp(service attendanceApplicationService, userID, role string) *fiber.App {
	handler := &AttendanceHandler{service: service}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/api/v1/attendance", handler.LogAttendance)
	app.Post("/api/v1/attendance/batch", handler.LogBatch)
	app.Put("/api/v1/attendance/:id", handler.UpdateRecord)
	app.Get("/api/v1/attendance/players/:playerID", handler.ListByPlayer)
	return app
}

func TestLogAttendanceReturnsCreatedOnFreshRecord(t *testing.T) {
	remaining := 7
	service := &stubAttendanceService{
		logResult: &services.LogAttendanceResult{
			Attendance:        &models.Attendance{ID: 11, PlayerID: 3, Status: models.AttendancePresent},
			SessionsRemaining: &remaining,
			Deducted:          true,
		},
	}
	app := newAttendanceTestApp(service, "9", models.RoleCoach)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance", strings.NewReader(`{
		"player_id": 3,
		"group_id": 2,
		"schedule_session_id": 5,
		"session_date": "2026-08-28",
		"status": "present"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastMarkedBy != 9 || service.lastRole != models.RoleCoach {
		t.Fatalf("expected marker from token, got %d/%s", service.lastMarkedBy, service.lastRole)
	}
	if service.lastInput.PlayerID != 3 || service.lastInput.ScheduleSessionID != 5 {
		t.Fatalf("unexpected input %+v", service.lastInput)
	}
	wantDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !service.lastInput.SessionDate.Equal(wantDate) {
		t.Fatalf("expected parsed date %v, got %v", wantDate, service.lastInput.SessionDate)
	}

	var body struct {
		SessionsRemaining *int `json:"sessions_remaining"`
		Deducted          bool `json:"deducted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Deducted || body.SessionsRemaining == nil || *body.SessionsRemaining != 7 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestLogAttendanceReturnsOKOnIdempotentUpdate(t *testing.T) {
	service := &stubAttendanceService{
		logResult: &services.LogAttendanceResult{
			Attendance: &models.Attendance{ID: 11},
			Updated:    true,
		},
	}
	app := newAttendanceTestApp(service, "9", models.RoleCoach)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance", strings.NewReader(`{
		"player_id": 3,
		"group_id": 2,
		"schedule_session_id": 5,
		"session_date": "2026-08-28",
		"status": "absent"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for idempotent update, got %d", resp.StatusCode)
	}
}

func TestLogAttendanceMapsWindowError(t *testing.T) {
	service := &stubAttendanceService{logErr: services.ErrOutOfWindow}
	app := newAttendanceTestApp(service, "9", models.RoleCoach)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance", strings.NewReader(`{
		"player_id": 3,
		"group_id": 2,
		"schedule_session_id": 5,
		"session_date": "2026-01-01",
		"status": "present"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestLogAttendanceRejectsMalformedDate(t *testing.T) {
	service := &stubAttendanceService{}
	app := newAttendanceTestApp(service, "9", models.RoleCoach)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance", strings.NewReader(`{
		"player_id": 3,
		"group_id": 2,
		"schedule_session_id": 5,
		"session_date": "28/08/2026",
		"status": "present"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLogBatchPassesEntriesThrough(t *testing.T) {
	service := &stubAttendanceService{
		batchResults: []services.BatchEntryResult{
			{PlayerID: 3, Result: &services.LogAttendanceResult{Deducted: true}},
			{PlayerID: 4, Error: "invalid input"},
		},
	}
	app := newAttendanceTestApp(service, "9", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/batch", strings.NewReader(`{
		"group_id": 2,
		"schedule_session_id": 5,
		"session_date": "2026-08-28",
		"entries": [
			{"player_id": 3, "status": "present"},
			{"player_id": 4, "status": "present"}
		]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(service.lastBatch.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(service.lastBatch.Entries))
	}

	var body struct {
		Results []services.BatchEntryResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Results) != 2 || body.Results[1].Error == "" {
		t.Fatalf("unexpected results %+v", body.Results)
	}
}

func TestListByPlayerOwnRecords(t *testing.T) {
	service := &stubAttendanceService{listResult: []models.Attendance{{ID: 1, PlayerID: 3}}, listTotal: 1}
	app := newAttendanceTestApp(service, "3", models.RolePlayer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/players/3?page=1&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for own records, got %d", resp.StatusCode)
	}

	var body struct {
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Pagination.Total != 1 || body.Pagination.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", body.Pagination)
	}
}

func TestListByPlayerForeignRecordsForbidden(t *testing.T) {
	service := &stubAttendanceService{listErr: services.ErrForbidden}
	app := newAttendanceTestApp(service, "3", models.RolePlayer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/players/4", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
