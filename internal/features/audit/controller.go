package audit

import (
	"go-erp/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary List audit logs
// @Tags audit
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param module query string false "Filter by module"
// @Success 200 {array} models.AuditLog
// @Router /api/audit [get]
func (c *AuditController) ListLogs(ctx *fiber.Ctx) error {
	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 20))

	filters := map[string]interface{}{}
	if module := ctx.Query("module"); module != "" {
		filters["module"] = module
	}
	if recordID := ctx.Query("record_id"); recordID != "" {
		filters["record_id"] = recordID
	}

	logs, err := c.Service.ListLogs(ctx.UserContext(), filters, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(logs)
}

// GetTrail godoc
// @Summary Approval trail for a request
// @Description Append-only record of who approved or declined at each stage
// @Tags audit
// @Produce json
// @Param kind path string true "Workflow kind (leave, performance, procurement)"
// @Param id path string true "Request ID"
// @Success 200 {array} workflow.TrailEntry
// @Router /api/audit/trail/{kind}/{id} [get]
func (c *AuditController) GetTrail(ctx *fiber.Ctx) error {
	kind := workflow.Kind(ctx.Params("kind"))
	requestID := ctx.Params("id")

	entries, err := c.Service.Trail(ctx.UserContext(), kind, requestID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(entries)
}
