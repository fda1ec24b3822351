package audit

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"
	"go-erp/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth))

	audit.Get("/", middleware.RequireRole(workflow.RoleHR, workflow.RoleCD), h.controller.ListLogs)
	audit.Get("/trail/:kind/:id", h.controller.GetTrail)
}
