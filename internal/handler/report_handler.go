package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// ReportHandler serves aggregated admin reports.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches /admin/reports.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("", h.generate)
}

func (h *ReportHandler) generate(c *fiber.Ctx) error {
	report, err := h.service.Generate(c.UserContext(), dto.ReportRequest{Type: c.Query("type")})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "report generated", report)
}
