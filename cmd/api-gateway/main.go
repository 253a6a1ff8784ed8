package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dance-studio-api/api/swagger"
	"github.com/noah-isme/dance-studio-api/internal/handler"
	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/repository"
	"github.com/noah-isme/dance-studio-api/internal/service"
	"github.com/noah-isme/dance-studio-api/pkg/config"
	"github.com/noah-isme/dance-studio-api/pkg/database"
	"github.com/noah-isme/dance-studio-api/pkg/export"
	"github.com/noah-isme/dance-studio-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dance-studio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dance-studio-api/pkg/middleware/requestid"
	"github.com/noah-isme/dance-studio-api/pkg/redisclient"
)

// @title Dance Studio API
// @version 1.0.0
// @description Courses, sessions, enrollments and attendance for a dance studio
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate schema", zap.Error(err))
		}
		logr.Info("schema applied")
	}

	redisClient, err := redisclient.New(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	dancerRepo := repository.NewDancerRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, tokenRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, sessionRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, courseRepo, attendanceRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo,
		service.CapacityPolicy{ReleaseOnDrop: cfg.Enrollments.ReleaseSlotOnDrop}, metricsSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, sessionRepo, courseRepo, enrollmentRepo, metricsSvc, validate, logr)
	dancerSvc := service.NewDancerService(dancerRepo, validate, logr)
	exportSvc := service.NewExportService(courseRepo, sessionRepo, enrollmentRepo, attendanceRepo, logr,
		export.NewCSVExporter(), export.NewPDFExporter())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))

	registerRoutes(r, cfg, routeHandlers{
		auth:        handler.NewAuthHandler(authSvc),
		users:       handler.NewUserHandler(userSvc),
		courses:     handler.NewCourseHandler(courseSvc),
		sessions:    handler.NewSessionHandler(sessionSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		attendance:  handler.NewAttendanceHandler(attendanceSvc),
		dancers:     handler.NewDancerHandler(dancerSvc),
		exports:     handler.NewExportHandler(exportSvc),
		ops: handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
