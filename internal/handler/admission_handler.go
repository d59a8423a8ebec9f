package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// AdmissionHandler serves the public application form and the admin review.
type AdmissionHandler struct {
	admissions  service.AdmissionService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewAdmissionHandler constructs the handler.
func NewAdmissionHandler(admissions service.AdmissionService, enrollments service.EnrollmentService, logger zerolog.Logger) *AdmissionHandler {
	return &AdmissionHandler{
		admissions:  admissions,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "admission_handler").Logger(),
	}
}

// Register attaches /admissions. Applicant routes are public and throttled
// by limit; review routes need auth followed by the admin guard.
func (h *AdmissionHandler) Register(router fiber.Router, limit, auth, admin fiber.Handler) {
	router.Post("", limit, h.submit)
	router.Get("/track", h.track)
	router.Post("/:id/documents", limit, h.uploadDocument)

	router.Get("", auth, admin, h.list)
	router.Delete("/documents/:docId", auth, admin, h.deleteDocument)
	router.Get("/:id", auth, admin, h.get)
	router.Put("/:id/status", auth, admin, h.changeStatus)
	router.Get("/:id/documents", auth, admin, h.listDocuments)
}

// RegisterReconcile attaches /admin/admissions routes.
func (h *AdmissionHandler) RegisterReconcile(router fiber.Router) {
	router.Post("/reconcile", h.reconcile)
	router.Get("/enrollment-log", h.enrollmentLog)
}

func (h *AdmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.AdmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	response, err := h.admissions.Submit(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", response)
}

func (h *AdmissionHandler) track(c *fiber.Ctx) error {
	req := dto.AdmissionTrackRequest{Email: c.Query("email")}
	id, err := parseQueryUint(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if id != nil {
		req.ID = *id
	}

	response, err := h.admissions.Track(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "application found", response)
}

func (h *AdmissionHandler) list(c *fiber.Ctx) error {
	req := dto.AdmissionListRequest{Status: c.Query("status"), Search: c.Query("search")}
	admissions, err := h.admissions.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, admissions, "admissions retrieved", fiber.Map{"count": len(admissions)})
}

func (h *AdmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	admission, err := h.admissions.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "admission retrieved", admission)
}

func (h *AdmissionHandler) changeStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.AdmissionStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}

	admission, err := h.admissions.ChangeStatus(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "admission status updated", admission)
}

func (h *AdmissionHandler) uploadDocument(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	payload := dto.AdmissionDocumentRequest{DocumentType: c.FormValue("document_type")}
	document, err := h.admissions.UploadDocument(c.UserContext(), id, payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", document)
}

func (h *AdmissionHandler) listDocuments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	documents, err := h.admissions.ListDocuments(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "documents retrieved", documents)
}

func (h *AdmissionHandler) deleteDocument(c *fiber.Ctx) error {
	docID, err := parseUintParam(c, "docId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.admissions.DeleteDocument(c.UserContext(), docID, sessionFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "document deleted", fiber.Map{"id": docID})
}

func (h *AdmissionHandler) reconcile(c *fiber.Ctx) error {
	result, err := h.enrollments.Reconcile(c.UserContext(), sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	requestLogger(h.logger, c).Info().
		Int("checked", result.Checked).
		Int("users_created", result.UsersCreated).
		Msg("admissions reconciled")
	return utils.SendSuccess(c, "admissions reconciled", result)
}

func (h *AdmissionHandler) enrollmentLog(c *fiber.Ctx) error {
	entries, err := h.enrollments.EnrollmentLog(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment log retrieved", entries)
}
