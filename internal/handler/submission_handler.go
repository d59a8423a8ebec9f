package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router, student, staff fiber.Handler) {
	router.Get("", h.list)
	router.Post("", student, h.create)
	router.Put("/:id/grade", staff, h.grade)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	var (
		filter dto.SubmissionFilter
		err    error
	)
	if filter.AssignmentID, err = parseQueryUint(c, "assignment_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.StudentID, err = parseQueryUint(c, "student_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.LecturerID, err = parseQueryUint(c, "lecturer_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.SubjectID, err = parseQueryUint(c, "subject_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}

	submissions, err := h.service.List(c.UserContext(), filter, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	assignmentID, err := strconv.ParseUint(c.FormValue("assignment_id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid assignment_id")
	}
	payload := dto.SubmissionCreateRequest{
		AssignmentID:   uint(assignmentID),
		SubmissionText: c.FormValue("submission_text"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	submission, err := h.service.Create(c.UserContext(), payload, file, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission stored", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.SubmissionGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	submission, err := h.service.Grade(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}
