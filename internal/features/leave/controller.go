package leave

import (
	common_api "go-erp/internal/common/api"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LeaveController struct {
	Service LeaveService
}

func NewLeaveController(service LeaveService) *LeaveController {
	return &LeaveController{Service: service}
}

// CreateLeave godoc
// @Summary Submit a leave request
// @Description Creates the request at the first approval stage with its approver resolved
// @Tags leave
// @Accept json
// @Produce json
// @Param request body CreateLeaveInput true "Leave request"
// @Success 201 {object} LeaveRequest
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]string "No approver available"
// @Router /api/leave-requests [post]
func (c *LeaveController) CreateLeave(ctx *fiber.Ctx) error {
	var input CreateLeaveInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req, err := c.Service.CreateLeave(ctx.UserContext(), claims.UserID, claims.DepartmentID, input)
	if err != nil {
		return common_api.WorkflowError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(req)
}

// GetLeave godoc
// @Summary Get a leave request
// @Tags leave
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} LeaveRequest
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/leave-requests/{id} [get]
func (c *LeaveController) GetLeave(ctx *fiber.Ctx) error {
	req, err := c.Service.GetLeave(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Leave request not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(req)
}

// ListLeaves godoc
// @Summary List leave requests
// @Tags leave
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by workflow status"
// @Success 200 {object} map[string]interface{}
// @Router /api/leave-requests [get]
func (c *LeaveController) ListLeaves(ctx *fiber.Ctx) error {
	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 20))

	filter := map[string]interface{}{}
	if status := ctx.Query("status"); status != "" {
		filter["workflow.status"] = status
	}
	if employee := ctx.Query("employee_id"); employee != "" {
		oid, err := primitive.ObjectIDFromHex(employee)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid employee id"})
		}
		filter["employee_id"] = oid
	}

	requests, total, err := c.Service.ListLeaves(ctx.UserContext(), filter, page, limit)
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
// @Summary Approve a leave request at its current stage
// @Tags leave
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} workflow.State
// @Failure 403 {object} map[string]string "Not the current stage approver"
// @Failure 409 {object} map[string]string "Already finalized or modified concurrently"
// @Failure 422 {object} map[string]string "No approver available for the next stage"
// @Router /api/leave-requests/{id}/approve [post]
func (c *LeaveController) Approve(ctx *fiber.Ctx) error {
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
// @Summary Decline a leave request
// @Description Declining finalizes the request regardless of remaining stages
// @Tags leave
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} workflow.State
// @Failure 403 {object} map[string]string "Not the current stage approver"
// @Failure 409 {object} map[string]string "Already finalized or modified concurrently"
// @Router /api/leave-requests/{id}/decline [post]
func (c *LeaveController) Decline(ctx *fiber.Ctx) error {
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
