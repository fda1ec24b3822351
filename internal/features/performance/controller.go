package performance

import (
	common_api "go-erp/internal/common/api"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReviewController struct {
	Service ReviewService
}

func NewReviewController(service ReviewService) *ReviewController {
	return &ReviewController{Service: service}
}

// CreateReview godoc
// @Summary Submit a performance review
// @Description Creates the review at the first approval stage, routed through the rated employee's department
// @Tags performance
// @Accept json
// @Produce json
// @Param request body CreateReviewInput true "Performance review"
// @Success 201 {object} Review
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]string "No approver available"
// @Router /api/performance-reviews [post]
func (c *ReviewController) CreateReview(ctx *fiber.Ctx) error {
	var input CreateReviewInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	review, err := c.Service.CreateReview(ctx.UserContext(), claims.UserID, input)
	if err != nil {
		return common_api.WorkflowError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(review)
}

// GetReview godoc
// @Summary Get a performance review
// @Tags performance
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} Review
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/performance-reviews/{id} [get]
func (c *ReviewController) GetReview(ctx *fiber.Ctx) error {
	review, err := c.Service.GetReview(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(review)
}

// ListReviews godoc
// @Summary List performance reviews
// @Tags performance
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by workflow status"
// @Success 200 {object} map[string]interface{}
// @Router /api/performance-reviews [get]
func (c *ReviewController) ListReviews(ctx *fiber.Ctx) error {
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
	if period := ctx.Query("period"); period != "" {
		filter["period"] = period
	}

	reviews, total, err := c.Service.ListReviews(ctx.UserContext(), filter, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"data":  reviews,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Approve godoc
// @Summary Approve a performance review at its current stage
// @Tags performance
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} workflow.State
// @Failure 403 {object} map[string]string "Not the current stage approver"
// @Failure 409 {object} map[string]string "Already finalized or modified concurrently"
// @Failure 422 {object} map[string]string "No approver available for the next stage"
// @Router /api/performance-reviews/{id}/approve [post]
func (c *ReviewController) Approve(ctx *fiber.Ctx) error {
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
// @Summary Decline a performance review
// @Description Declining finalizes the review regardless of remaining stages
// @Tags performance
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} workflow.State
// @Failure 403 {object} map[string]string "Not the current stage approver"
// @Failure 409 {object} map[string]string "Already finalized or modified concurrently"
// @Router /api/performance-reviews/{id}/decline [post]
func (c *ReviewController) Decline(ctx *fiber.Ctx) error {
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
