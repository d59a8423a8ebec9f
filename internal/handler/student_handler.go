package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// StudentHandler serves the student profile and the lecturer's student list.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// RegisterStudent attaches /students routes. The group must already be student-only.
func (h *StudentHandler) RegisterStudent(router fiber.Router) {
	router.Get("/me", h.profile)
}

// RegisterLecturer attaches /lecturer routes. The group must already be lecturer-only.
func (h *StudentHandler) RegisterLecturer(router fiber.Router) {
	router.Get("/students", h.lecturerStudents)
}

func (h *StudentHandler) profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *StudentHandler) lecturerStudents(c *fiber.Ctx) error {
	students, err := h.service.LecturerStudents(c.UserContext(), sessionFromContext(c), c.Query("search"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "students retrieved", students)
}
