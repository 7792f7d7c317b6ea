package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/service"
)

// ReportsHandler serves dashboard aggregations.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Summary GET /reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// MonthlyTrend GET /reports/monthly.
func (h *ReportsHandler) MonthlyTrend(c *fiber.Ctx) error {
	buckets, err := h.service.MonthlyTrend(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": buckets})
}
