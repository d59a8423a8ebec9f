package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// EnrollmentHandler manages course enrollments.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches /enrollments routes; writes need the admin guard.
func (h *EnrollmentHandler) Register(router fiber.Router, admin fiber.Handler) {
	router.Get("", h.list)
	router.Post("", admin, h.create)
	router.Put("/:id", admin, h.update)
	router.Delete("/:id", admin, h.delete)
}

func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	filter := dto.EnrollmentFilter{Status: c.Query("status")}
	var err error
	if filter.StudentID, err = parseQueryUint(c, "student_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.CourseID, err = parseQueryUint(c, "course_id"); err != nil {
		return badRequest(c, err.Error())
	}

	// Students only ever see their own enrollments.
	if session := sessionFromContext(c); session.IsStudent() {
		if session.StudentID == nil {
			return utils.SendSuccess(c, "enrollments retrieved", []dto.EnrollmentResponse{})
		}
		filter.StudentID = session.StudentID
	}

	enrollments, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *EnrollmentHandler) create(c *fiber.Ctx) error {
	var payload dto.EnrollmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	enrollment, err := h.service.Create(c.UserContext(), payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrollment created", enrollment)
}

func (h *EnrollmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var payload dto.EnrollmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	enrollment, err := h.service.Update(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment updated", enrollment)
}

func (h *EnrollmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.service.Delete(c.UserContext(), id, sessionFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment deleted", fiber.Map{"id": id})
}
