package leave

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeaveApi struct {
	controller *LeaveController
	config     *config.Config
}

func NewLeaveApi(controller *LeaveController, config *config.Config) *LeaveApi {
	return &LeaveApi{
		controller: controller,
		config:     config,
	}
}

func (h *LeaveApi) Setup(app *fiber.App) {
	leaves := app.Group("/api/leave-requests", middleware.AuthMiddleware(h.config.SkipAuth))

	leaves.Post("/", h.controller.CreateLeave)
	leaves.Get("/", h.controller.ListLeaves)
	leaves.Get("/:id", h.controller.GetLeave)
	leaves.Post("/:id/approve", h.controller.Approve)
	leaves.Post("/:id/decline", h.controller.Decline)
}
