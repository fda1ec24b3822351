package department

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"
	"go-erp/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type DepartmentApi struct {
	controller *DepartmentController
	config     *config.Config
}

func NewDepartmentApi(controller *DepartmentController, config *config.Config) *DepartmentApi {
	return &DepartmentApi{
		controller: controller,
		config:     config,
	}
}

func (h *DepartmentApi) Setup(app *fiber.App) {
	depts := app.Group("/api/departments", middleware.AuthMiddleware(h.config.SkipAuth))

	depts.Post("/", middleware.RequireRole(workflow.RoleHR, workflow.RoleCD), h.controller.CreateDepartment)
	depts.Get("/", h.controller.ListDepartments)
	depts.Get("/:id", h.controller.GetDepartment)
}
