package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmagued/beachamp-training-sub001/internal/config"
	"github.com/kmagued/beachamp-training-sub001/internal/handlers"
	"github.com/kmagued/beachamp-training-sub001/internal/middleware"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	coachGroupRepo := repository.NewCoachGroupRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	subscriptionService := services.NewSubscriptionService(db, subscriptionRepo, paymentRepo, packageRepo, storageService)
	attendanceService := services.NewAttendanceService(db, attendanceRepo, subscriptionRepo, scheduleRepo)
	groupService := services.NewGroupService(db, groupRepo, coachGroupRepo, scheduleRepo, userRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo)
	packageHandler := handlers.NewPackageHandler(packageRepo)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	paymentHandler := handlers.NewPaymentHandler(subscriptionService, paymentRepo)
	groupHandler := handlers.NewGroupHandler(groupService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleCoach, models.RoleAdmin)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users", adminOnly)
	users.Get("", userHandler.ListUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id/active", userHandler.SetActive)

	packages := authProtected.Group("/packages")
	packages.Get("", packageHandler.ListPackages)
	packages.Get("/:id", packageHandler.GetPackage)
	packages.Post("", adminOnly, packageHandler.CreatePackage)
	packages.Put("/:id", adminOnly, packageHandler.UpdatePackage)
	packages.Delete("/:id", adminOnly, packageHandler.DeactivatePackage)

	subscriptions := authProtected.Group("/subscriptions")
	subscriptions.Post("", subscriptionHandler.Purchase)
	subscriptions.Get("/mine", subscriptionHandler.ListMine)
	subscriptions.Get("", staffOnly, subscriptionHandler.ListAll)
	subscriptions.Get("/:id", subscriptionHandler.GetSubscription)
	subscriptions.Post("/:id/activate", adminOnly, subscriptionHandler.Activate)

	payments := authProtected.Group("/payments")
	payments.Get("", adminOnly, paymentHandler.ListPayments)
	payments.Post("/:id/screenshot", paymentHandler.UploadScreenshot)
	payments.Post("/:id/confirm", adminOnly, paymentHandler.ConfirmPayment)
	payments.Post("/:id/reject", adminOnly, paymentHandler.RejectPayment)

	groups := authProtected.Group("/groups")
	groups.Get("", groupHandler.ListGroups)
	groups.Get("/:id", groupHandler.GetGroup)
	groups.Post("", adminOnly, groupHandler.CreateGroup)
	groups.Put("/:id", adminOnly, groupHandler.UpdateGroup)
	groups.Delete("/:id", adminOnly, groupHandler.DeleteGroup)
	groups.Post("/:id/deactivate", adminOnly, groupHandler.DeactivateGroup)
	groups.Post("/:id/players", adminOnly, groupHandler.AddPlayers)
	groups.Delete("/:id/players/:playerID", adminOnly, groupHandler.RemovePlayer)
	groups.Get("/:id/coaches", groupHandler.ListCoaches)
	groups.Post("/:id/coaches", adminOnly, groupHandler.AssignCoach)
	groups.Delete("/:id/coaches/:coachID", adminOnly, groupHandler.UnassignCoach)
	groups.Get("/:id/schedule", groupHandler.ListSchedule)
	groups.Post("/:id/schedule", adminOnly, groupHandler.CreateScheduleSession)

	schedule := authProtected.Group("/schedule-sessions")
	schedule.Put("/:sessionID", adminOnly, groupHandler.UpdateScheduleSession)
	schedule.Delete("/:sessionID", adminOnly, groupHandler.DeleteScheduleSession)

	attendance := authProtected.Group("/attendance")
	attendance.Post("", staffOnly, attendanceHandler.LogAttendance)
	attendance.Post("/batch", staffOnly, attendanceHandler.LogBatch)
	attendance.Put("/:id", staffOnly, attendanceHandler.UpdateRecord)
	attendance.Get("/occurrences/:scheduleSessionID", staffOnly, attendanceHandler.ListByOccurrence)
	attendance.Get("/players/:playerID", attendanceHandler.ListByPlayer)

	feedback := authProtected.Group("/feedback")
	feedback.Post("", staffOnly, feedbackHandler.Create)
	feedback.Put("/:id", staffOnly, feedbackHandler.Update)
	feedback.Delete("/:id", staffOnly, feedbackHandler.Delete)
	feedback.Get("/players/:playerID", feedbackHandler.ListByPlayer)
}
