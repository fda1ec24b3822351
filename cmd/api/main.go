package main

import (
	"context"
	"fmt"
	common_api "go-erp/internal/common/api"
	"go-erp/internal/config"
	"go-erp/internal/database"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/department"
	"go-erp/internal/features/leave"
	"go-erp/internal/features/notification"
	"go-erp/internal/features/performance"
	"go-erp/internal/features/procurement"
	"go-erp/internal/features/system"
	"go-erp/internal/features/user"
	"go-erp/internal/logger"
	"go-erp/internal/middleware"
	"go-erp/pkg/utils"
	"log"

	_ "go-erp/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartReminders wires the pending-approval digest job into the app lifecycle.
func StartReminders(lc fx.Lifecycle, scheduler *notification.ReminderScheduler, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start(cfg.ReminderCron)
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

// @title           ERP Approvals API
// @version         1.0
// @description     Sequential role-gated approval workflows for leave requests, performance reviews and procurement.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			user.NewUserRepository,
			department.NewDepartmentRepository,
			audit.NewAuditRepository,
			audit.NewTrailRepository,
			notification.NewNotificationRepository,
			leave.NewLeaveRepository,
			performance.NewReviewRepository,
			procurement.NewProcurementRepository,

			notification.NewHub,

			user.NewUserService,
			department.NewDepartmentService,
			audit.NewAuditService,
			notification.NewNotificationService,
			leave.NewLeaveService,
			performance.NewReviewService,
			procurement.NewProcurementService,
			notification.NewReminderScheduler,

			// Interface Adapters to satisfy Fx
			func(r user.UserRepository) audit.UserFinder { return r },
			func(l leave.LeaveRepository, p performance.ReviewRepository, pr procurement.ProcurementRepository) []notification.PendingSource {
				return []notification.PendingSource{l, p, pr}
			},

			// Initialize Controller
			user.NewUserController,
			department.NewDepartmentController,
			audit.NewAuditController,
			notification.NewNotificationController,
			leave.NewLeaveController,
			performance.NewReviewController,
			procurement.NewProcurementController,

			// Initialize API Routes
			AsRoute(user.NewUserApi),
			AsRoute(department.NewDepartmentApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(leave.NewLeaveApi),
			AsRoute(performance.NewReviewApi),
			AsRoute(procurement.NewProcurementApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartReminders,
		),
	)

	app.Run()
}
