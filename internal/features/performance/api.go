package performance

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReviewApi struct {
	controller *ReviewController
	config     *config.Config
}

func NewReviewApi(controller *ReviewController, config *config.Config) *ReviewApi {
	return &ReviewApi{
		controller: controller,
		config:     config,
	}
}

func (h *ReviewApi) Setup(app *fiber.App) {
	reviews := app.Group("/api/performance-reviews", middleware.AuthMiddleware(h.config.SkipAuth))

	reviews.Post("/", h.controller.CreateReview)
	reviews.Get("/", h.controller.ListReviews)
	reviews.Get("/:id", h.controller.GetReview)
	reviews.Post("/:id/approve", h.controller.Approve)
	reviews.Post("/:id/decline", h.controller.Decline)
}
