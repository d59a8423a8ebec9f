package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/handler"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	AdmissionHandler  *handler.AdmissionHandler
	EnrollmentHandler *handler.EnrollmentHandler
	DashboardHandler  *handler.DashboardHandler
	ReportHandler     *handler.ReportHandler
	ActivityHandler   *handler.ActivityHandler
	StudentHandler    *handler.StudentHandler
	HealthChecks      map[string]handler.HealthChecker
	JWTMiddleware     fiber.Handler
	AdmissionLimiter  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	limiter := deps.AdmissionLimiter
	if limiter == nil {
		limiter = middleware.RateLimit("admissions", cfg.AdmissionRateLimit, cfg.AdmissionRateWindow)
	}

	admin := middleware.RequireRole(middleware.AuthRoleAdmin)
	staff := middleware.RequireRole(middleware.AuthRoleAdmin, middleware.AuthRoleLecturer)
	student := middleware.RequireRole(middleware.AuthRoleStudent)

	// Routes mixing public and protected endpoints register the JWT check
	// per route so the public ones stay reachable.
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), jwtMiddleware)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterCourses(api.Group("/courses"), jwtMiddleware, admin)
		deps.CourseHandler.RegisterSubjects(api.Group("/subjects", jwtMiddleware), admin)
	}
	if deps.AdmissionHandler != nil {
		deps.AdmissionHandler.Register(api.Group("/admissions"), limiter, jwtMiddleware, admin)
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", jwtMiddleware), staff)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware), student, staff)
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(api.Group("/grading", jwtMiddleware, staff))
		deps.GradingHandler.RegisterStudent(api.Group("/grades", jwtMiddleware, student))
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(api.Group("/enrollments", jwtMiddleware), admin)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.RegisterStudent(api.Group("/students", jwtMiddleware, student))
		deps.StudentHandler.RegisterLecturer(api.Group("/lecturer", jwtMiddleware, middleware.RequireRole(middleware.AuthRoleLecturer)))
	}

	adminGroup := api.Group("/admin", jwtMiddleware, admin)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterUsers(adminGroup.Group("/users"))
		deps.UserHandler.RegisterLecturers(adminGroup.Group("/lecturers"))
	}
	if deps.AdmissionHandler != nil {
		deps.AdmissionHandler.RegisterReconcile(adminGroup.Group("/admissions"))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(adminGroup.Group("/reports"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(adminGroup.Group("/activity"))
	}
}
