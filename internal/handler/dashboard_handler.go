package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// DashboardHandler exposes the per-role dashboards.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches /dashboard routes with their role guards.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/admin", middleware.WithAuth(h.admin, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
	router.Get("/lecturer", middleware.WithAuth(h.lecturer, middleware.AuthOptions{Role: middleware.AuthRoleLecturer}))
	router.Get("/student", middleware.WithAuth(h.student, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

func (h *DashboardHandler) admin(c *fiber.Ctx) error {
	dashboard, err := h.service.Admin(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) lecturer(c *fiber.Ctx) error {
	dashboard, err := h.service.Lecturer(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *DashboardHandler) student(c *fiber.Ctx) error {
	dashboard, err := h.service.Student(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
