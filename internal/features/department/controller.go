package department

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

type DepartmentController struct {
	Service DepartmentService
}

func NewDepartmentController(service DepartmentService) *DepartmentController {
	return &DepartmentController{Service: service}
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Param request body CreateDepartmentInput true "Department"
// @Success 201 {object} models.Department
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /api/departments [post]
func (c *DepartmentController) CreateDepartment(ctx *fiber.Ctx) error {
	var input CreateDepartmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	dept, err := c.Service.CreateDepartment(ctx.UserContext(), input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(dept)
}

// GetDepartment godoc
// @Summary Get a department
// @Tags departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} models.Department
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/departments/{id} [get]
func (c *DepartmentController) GetDepartment(ctx *fiber.Ctx) error {
	dept, err := c.Service.GetDepartment(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Department not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(dept)
}

// ListDepartments godoc
// @Summary List departments
// @Tags departments
// @Produce json
// @Success 200 {array} models.Department
// @Router /api/departments [get]
func (c *DepartmentController) ListDepartments(ctx *fiber.Ctx) error {
	depts, err := c.Service.ListDepartments(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(depts)
}
