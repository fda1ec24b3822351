package procurement

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"
	"go-erp/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type ProcurementApi struct {
	controller *ProcurementController
	config     *config.Config
}

func NewProcurementApi(controller *ProcurementController, config *config.Config) *ProcurementApi {
	return &ProcurementApi{
		controller: controller,
		config:     config,
	}
}

func (h *ProcurementApi) Setup(app *fiber.App) {
	requests := app.Group("/api/procurement-requests", middleware.AuthMiddleware(h.config.SkipAuth))

	requests.Post("/", h.controller.CreateRequest)
	requests.Get("/", h.controller.ListRequests)
	requests.Get("/export", middleware.RequireRole(workflow.RoleHR, workflow.RoleCD), h.controller.Export)
	requests.Get("/:id", h.controller.GetRequest)
	requests.Post("/:id/approve", h.controller.Approve)
	requests.Post("/:id/decline", h.controller.Decline)
}
