package notification

import (
	"go-erp/internal/middleware"
	"go-erp/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Service NotificationService
	Hub     *Hub
}

func NewNotificationController(service NotificationService, hub *Hub) *NotificationController {
	return &NotificationController{
		Service: service,
		Hub:     hub,
	}
}

// ListNotifications godoc
// @Summary List notifications for the current user
// @Tags notifications
// @Produce json
// @Param unread query bool false "Unread only"
// @Success 200 {array} Notification
// @Router /api/notifications [get]
func (c *NotificationController) ListNotifications(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	unreadOnly := ctx.QueryBool("unread", false)
	limit := int64(ctx.QueryInt("limit", 50))

	notifications, err := c.Service.ListNotifications(ctx.UserContext(), claims.UserID, unreadOnly, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(notifications)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.Service.MarkRead(ctx.UserContext(), ctx.Params("id"), claims.UserID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Success 200 {object} map[string]string
// @Router /api/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := c.Service.MarkAllRead(ctx.UserContext(), claims.UserID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "All notifications marked as read"})
}

// HandleStream keeps a websocket open and pushes new notifications to it. The
// token travels as a query parameter since browsers cannot set headers on
// websocket upgrades.
func (c *NotificationController) HandleStream(conn *websocket.Conn) {
	token := conn.Query("token")
	claims, err := utils.ValidateToken(token)
	if err != nil {
		conn.WriteJSON(fiber.Map{"error": "Invalid token"})
		conn.Close()
		return
	}

	c.Hub.Register(claims.UserID, conn)
	defer func() {
		c.Hub.Unregister(claims.UserID, conn)
		conn.Close()
	}()

	// Drain client frames until the connection drops
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
