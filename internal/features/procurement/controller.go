package procurement

import (
	"fmt"
	"time"

	common_api "go-erp/internal/common/api"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProcurementController struct {
	Service ProcurementService
}

func NewProcurementController(service ProcurementService) *ProcurementController {
	return &ProcurementController{Service: service}
}

// CreateRequest godoc
// @Summary Submit a procurement request
// @Description Creates the request at the department head stage with item costs totalled
// @Tags procurement
// @Accept json
// @Produce json
// @Param request body CreateProcurementInput true "Procurement request"
// @Success 201 {object} ProcurementRequest
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]string "No approver available"
// @Router /api/procurement-requests [post]
func (c *ProcurementController) CreateRequest(ctx *fiber.Ctx) error {
	var input CreateProcurementInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req, err := c.Service.CreateRequest(ctx.UserContext(), claims.UserID, claims.DepartmentID, input)
	if err != nil {
		return common_api.WorkflowError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// GetRequest godoc
// @Summary Get a procurement request
// @Tags procurement
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} ProcurementRequest
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/procurement-requests/{id} [get]
func (c *ProcurementController) GetRequest(ctx *fiber.Ctx) error {
	req, err := c.Service.GetRequest(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Procurement request not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(req)
}

// ListRequests godoc
// @Summary List procurement requests
// @Tags procurement
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by workflow status"
// @Success 200 {object} map[string]interface{}
// @Router /api/procurement-requests [get]
func (c *ProcurementController) ListRequests(ctx *fiber.Ctx) error {
	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 20))

	filter := map[string]interface{}{}
	if status := ctx.Query("status"); status != "" {
		filter["workflow.status"] = status
	}
	if requester := ctx.Query("requester_id"); requester != "" {
		oid, err := primitive.ObjectIDFromHex(requester)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid requester id"})
		}
		filter["requester_id"] = oid
	}

	requests, total, err := c.Service.ListRequests(ctx.UserContext(), filter, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"data":  requests,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Approve godoc
// @Summary Approve a procurement request at its current stage
// @Tags procurement
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} workflow.State
// @Failure 403 {object} map[string]string "Not the current stage approver"
// @Failure 409 {object} map[string]string "Already finalized or modified concurrently"
// @Failure 422 {object} map[string]string "No approver available for the next stage"
// @Router /api/procurement-requests/{id}/approve [post]
func (c *ProcurementController) Approve(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	actor, err := claims.Actor()
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	state, err := c.Service.Approve(ctx.UserContext(), ctx.Params("id"), actor)
	if err != nil {
		return common_api.WorkflowError(ctx, err)
	}
	return ctx.JSON(state)
}

// Decline godoc
// @Summary Decline a procurement request
// @Tags procurement
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} workflow.State
// @Failure 403 {object} map[string]string "Not the current stage approver"
// @Failure 409 {object} map[string]string "Already finalized or modified concurrently"
// @Router /api/procurement-requests/{id}/decline [post]
func (c *ProcurementController) Decline(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	actor, err := claims.Actor()
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid principal"})
	}

	state, err := c.Service.Decline(ctx.UserContext(), ctx.Params("id"), actor)
	if err != nil {
		return common_api.WorkflowError(ctx, err)
	}
	return ctx.JSON(state)
}

// Export godoc
// @Summary Export procurement requests to a spreadsheet
// @Tags procurement
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by workflow status"
// @Success 200 {file} binary
// @Router /api/procurement-requests/export [get]
func (c *ProcurementController) Export(ctx *fiber.Ctx) error {
	filter := map[string]interface{}{}
	if status := ctx.Query("status"); status != "" {
		filter["workflow.status"] = status
	}

	data, err := c.Service.Export(ctx.UserContext(), filter)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := fmt.Sprintf("procurement_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(data)
}
