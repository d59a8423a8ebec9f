package handler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// GradingHandler exposes lecturer grading and student grade views.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches /grading routes; the group is expected to be staff only.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Get("/subjects", h.subjects)
	router.Get("/subjects/:subjectId", h.roster)
	router.Post("/subjects/:subjectId/grades", h.save)
	router.Post("/subjects/:subjectId/bulk", h.bulk)
	router.Post("/subjects/:subjectId/bulk/xlsx", h.bulkXLSX)
	router.Get("/subjects/:subjectId/template.csv", h.template("csv"))
	router.Get("/subjects/:subjectId/template.xlsx", h.template("xlsx"))
}

// RegisterStudent attaches /grades routes for the signed-in student.
func (h *GradingHandler) RegisterStudent(router fiber.Router) {
	router.Get("/me", h.myGrades)
	router.Get("/me/transcript.csv", h.transcript)
}

func (h *GradingHandler) subjects(c *fiber.Ctx) error {
	subjects, err := h.service.LecturerSubjects(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *GradingHandler) roster(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	roster, err := h.service.Roster(c.UserContext(), subjectID, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "roster retrieved", roster)
}

func (h *GradingHandler) save(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.GradeSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	if c.QueryBool("dryRun") {
		payload.DryRun = true
	}

	if payload.DryRun {
		preview, err := h.service.Preview(c.UserContext(), subjectID, payload)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return utils.SendSuccess(c, "grade preview", preview)
	}

	grade, err := h.service.SaveGrade(c.UserContext(), subjectID, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grade saved", grade)
}

// bulk accepts either raw CSV text or a JSON {records:[...]} body.
func (h *GradingHandler) bulk(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	session := sessionFromContext(c)

	var response dto.BulkGradeResponse
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		var payload dto.BulkGradeRequest
		if err := c.BodyParser(&payload); err != nil {
			return badRequest(c, "invalid request body")
		}
		response, err = h.service.BulkRecords(c.UserContext(), subjectID, payload, session)
	} else {
		body := c.Body()
		if len(bytes.TrimSpace(body)) == 0 {
			return badRequest(c, "csv body is required")
		}
		response, err = h.service.BulkCSV(c.UserContext(), subjectID, bytes.NewReader(body), session)
	}
	if err != nil {
		return respondError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("subject_id", subjectID).
		Int("completed", response.Completed).
		Int("total", response.Total).
		Msg("bulk grades applied")
	return utils.SendSuccess(c, fmt.Sprintf("%d of %d grades saved", response.Completed, response.Total), response)
}

func (h *GradingHandler) bulkXLSX(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return badRequest(c, "unable to read file")
	}
	defer file.Close()

	response, err := h.service.BulkXLSX(c.UserContext(), subjectID, file, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, fmt.Sprintf("%d of %d grades saved", response.Completed, response.Total), response)
}

func (h *GradingHandler) template(format string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, err := parseUintParam(c, "subjectId")
		if err != nil {
			return badRequest(c, err.Error())
		}
		file, err := h.service.Template(c.UserContext(), subjectID, format, sessionFromContext(c))
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return sendFile(c, file)
	}
}

func (h *GradingHandler) myGrades(c *fiber.Ctx) error {
	grades, err := h.service.StudentGrades(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradingHandler) transcript(c *fiber.Ctx) error {
	file, err := h.service.Transcript(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendFile(c, file)
}

func sendFile(c *fiber.Ctx, file service.TemplateFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Status(fiber.StatusOK).Send(file.Data)
}
