package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/database"
	"github.com/noah-isme/campus-go-api/internal/events"
	"github.com/noah-isme/campus-go-api/internal/handler"
	"github.com/noah-isme/campus-go-api/internal/logging"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
	"github.com/noah-isme/campus-go-api/internal/router"
	"github.com/noah-isme/campus-go-api/internal/service"
	cloud "github.com/noah-isme/campus-go-api/pkg/cloudinary"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile, Service: "campus-api"})
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to initialise logger")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	app, cleanup, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}
	defer cleanup()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

// newServer connects the stores and builds the fiber app with every route
// registered. cleanup releases the connections it opened.
func newServer(cfg config.Config, logger zerolog.Logger) (*fiber.App, func(), error) {
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	checks := map[string]handler.HealthChecker{"database": sqlCheck(db)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, dashboard caching disabled")
		} else {
			closers = append(closers, func() { _ = redisClient.Close() })
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		} else {
			closers = append(closers, func() { _ = natsConn.Drain() })
			checks["nats"] = func(context.Context) error {
				if !natsConn.IsConnected() {
					return errors.New("nats disconnected")
				}
				return nil
			}
		}
	}

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("create cloudinary client: %w", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, uploads will be rejected")
	}

	observability.RegisterMetrics()
	validate := validator.New(validator.WithRequiredStructEnabled())
	publisher := events.NewPublisher(natsConn, logger)
	intake := service.NewFileIntake(storage, cfg.UploadMaxSizeMB, cfg.UploadAllowedTypes, logger)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	userService := service.NewUserService(userRepo, studentRepo, validate, activityService, logger)
	lecturerService := service.NewLecturerService(lecturerRepo, userService, userRepo, validate, activityService, logger)
	courseService := service.NewCourseService(courseRepo, validate, activityService, logger)
	subjectService := service.NewSubjectService(subjectRepo, courseRepo, lecturerRepo, validate, activityService, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, subjectRepo, enrollmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, enrollmentRepo, validate, intake, activityService, logger)
	gradingService := service.NewGradingService(service.GradingDependencies{
		Subjects:    subjectRepo,
		Enrollments: enrollmentRepo,
		Grades:      gradeRepo,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
	}, validate, activityService, publisher, logger)
	admissionService := service.NewAdmissionService(admissionRepo, courseRepo, validate, intake, activityService, publisher, logger)
	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		Enrollments: enrollmentRepo,
		Admissions:  admissionRepo,
		Students:    studentRepo,
		Courses:     courseRepo,
	}, validate, activityService, publisher, logger)
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		Reports:     reportRepo,
		Admissions:  admissionRepo,
		Enrollments: enrollmentRepo,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Grades:      gradeRepo,
	}, redisClient, cfg.DashboardCacheTTL, logger)
	studentService := service.NewStudentService(service.StudentDependencies{
		Students:    studentRepo,
		Enrollments: enrollmentRepo,
		Submissions: submissionRepo,
		Grades:      gradeRepo,
	}, logger)
	reportService := service.NewReportService(reportRepo, admissionRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, CORSOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, lecturerService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, subjectService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		AdmissionHandler:  handler.NewAdmissionHandler(admissionService, enrollmentService, logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		HealthChecks:      checks,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	return app, cleanup, nil
}

func sqlCheck(db *gorm.DB) handler.HealthChecker {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
