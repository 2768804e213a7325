package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	attendanceHandlers "attendly/internal/attendance/handlers"
	attendanceModels "attendly/internal/attendance/models"
	attendanceRepo "attendly/internal/attendance/repository"
	attendanceServices "attendly/internal/attendance/services"
	"attendly/internal/attendance/verify"
	bookingHandlers "attendly/internal/booking/handlers"
	bookingModels "attendly/internal/booking/models"
	bookingRepo "attendly/internal/booking/repository"
	bookingServices "attendly/internal/booking/services"
	"attendly/internal/common/clock"
	"attendly/internal/common/database"
	commonHandlers "attendly/internal/common/handlers"
	"attendly/internal/common/health"
	"attendly/internal/common/middleware"
	"attendly/internal/notify"
	officeHandlers "attendly/internal/office/handlers"
	officeModels "attendly/internal/office/models"
	officeRepo "attendly/internal/office/repository"
	"attendly/internal/recommend"
	recommendHandlers "attendly/internal/recommend/handlers"
	"attendly/pkg/config"
	"attendly/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (SQLite for development, PostgreSQL for production)
	if err := database.InitWithType(cfg.Database.Type, cfg.Database.DSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := db.AutoMigrate(
		&officeModels.OfficeLocation{},
		&officeModels.OfficeNetwork{},
		&officeModels.CheckInToken{},
		&attendanceModels.AttendanceRecord{},
		&attendanceModels.UserWorkProfile{},
		&bookingModels.Room{},
		&bookingModels.ParkingSpot{},
		&bookingModels.Reservation{},
	); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// Stores
	locations := officeRepo.NewLocationStore(db)
	tokens := officeRepo.NewTokenStore(db)
	records := attendanceRepo.NewStore(db)
	profiles := attendanceRepo.NewProfileStore(db)
	reservations := bookingRepo.NewStore(db)
	resources := bookingRepo.NewResourceStore(db)

	// Services
	clk := clock.System{}
	notifier := notify.NewLogNotifier()
	arbiter := verify.NewArbiter(
		verify.NewGeoVerifier(cfg.Verification.AccuracyCeilingMeters),
		verify.NewNetworkVerifier(),
		verify.NewTokenVerifier(clk, tokens),
		cfg.Verification.OverrideConfidence,
	)
	tracker := attendanceServices.NewWFHTracker(records, profiles)
	checkins := attendanceServices.NewCheckInService(
		locations, arbiter, tracker, records, notifier, clk, cfg.WFH.QuotaWarningAt)
	bookings := bookingServices.NewBookingService(reservations, resources, notifier, clk)
	scheduler := bookingServices.NewAutoReleaseScheduler(reservations, locations, notifier, clk,
		bookingServices.AutoReleaseConfig{
			SweepInterval:    cfg.AutoRelease.SweepInterval,
			GracePeriod:      cfg.AutoRelease.GracePeriod,
			ReleaseThreshold: cfg.AutoRelease.ReleaseThreshold,
			DefaultOfficeID:  cfg.AutoRelease.DefaultOfficeID,
		})
	recommender := recommend.NewService(reservations, resources, records, clk)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Handlers
	attendance := attendanceHandlers.NewAttendanceHandler(checkins)
	profile := attendanceHandlers.NewProfileHandler(profiles)
	booking := bookingHandlers.NewBookingHandler(bookings)
	admin := bookingHandlers.NewAdminHandler(resources, scheduler)
	office := officeHandlers.NewOfficeHandler(locations, tokens)
	recommendation := recommendHandlers.NewRecommendHandler(recommender)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	healthChecker := health.NewHealthChecker(db, "1.0.0")
	healthHandler := commonHandlers.NewHealthHandler(healthChecker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/readiness", healthHandler.Readiness)
	router.GET("/health/liveness", healthHandler.Liveness)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthRequired(cfg.Server.JWTSecret)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		attendanceGroup := v1.Group("/attendance")
		{
			attendanceGroup.POST("/check-in", auth, attendance.CheckIn)
			attendanceGroup.POST("/check-out", auth, attendance.CheckOut)
			attendanceGroup.GET("/wfh-eligibility", auth, attendance.WFHEligibility)
			attendanceGroup.GET("/history/:month", auth, attendance.History)
		}

		bookingGroup := v1.Group("/bookings")
		{
			bookingGroup.POST("/rooms", auth, booking.BookRoom)
			bookingGroup.POST("/parking", auth, booking.ReserveParking)
			bookingGroup.GET("", auth, booking.List)
			bookingGroup.DELETE("/:id", auth, booking.Cancel)
			bookingGroup.POST("/:id/occupy", auth, booking.Occupy)
			bookingGroup.GET("/timeline/:resource_id", booking.Timeline)
		}

		v1.GET("/rooms", admin.ListRooms)
		v1.GET("/parking-spots", admin.ListSpots)
		v1.GET("/offices", office.List)
		v1.GET("/offices/:id", office.Get)

		recommendGroup := v1.Group("/recommendations")
		{
			recommendGroup.POST("/rooms", auth, recommendation.RankRooms)
			recommendGroup.GET("/attendance", auth, recommendation.PredictAttendance)
		}

		adminGroup := v1.Group("/admin", auth)
		{
			adminGroup.POST("/rooms", admin.SaveRoom)
			adminGroup.POST("/parking-spots", admin.SaveSpot)
			adminGroup.GET("/release/candidates", admin.ReleaseCandidates)
			adminGroup.POST("/release/:id", admin.ReleaseNow)
			adminGroup.POST("/offices", office.Save)
			adminGroup.DELETE("/offices/:id", office.Delete)
			adminGroup.POST("/offices/:id/tokens", office.SaveToken)
			adminGroup.DELETE("/tokens/:token_id", office.DeleteToken)
			adminGroup.GET("/tokens/:token_id/qr", office.TokenQR)
			adminGroup.GET("/profiles/:user_id", profile.Get)
			adminGroup.PUT("/profiles/:user_id", profile.Save)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: address, Handler: router}

	go func() {
		logger.Get().Info("starting server", zap.String("address", address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Get().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Get().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("forced shutdown", zap.Error(err))
	}
}
