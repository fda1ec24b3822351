package api

import (
	"errors"

	"go-erp/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// WorkflowError maps engine failures onto the HTTP contract shared by all
// approval endpoints: authorization failures are 403, acting on a finalized or
// concurrently modified request is 409, an unresolvable approver is 422.
// Unknown stages are configuration bugs and stay 500.
func WorkflowError(c *fiber.Ctx, err error) error {
	var unknown *workflow.UnknownStageError

	switch {
	case errors.Is(err, workflow.ErrNotAuthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrAlreadyFinalized):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrStaleState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrNoApprover):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, mongo.ErrNoDocuments):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	case errors.As(err, &unknown):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
