package main

import (
	"context"
	"fmt"

	common_api "go-lms/internal/common/api"
	"go-lms/internal/common/validation"
	"go-lms/internal/config"
	"go-lms/internal/database"
	"go-lms/internal/features/access"
	"go-lms/internal/features/assessment"
	"go-lms/internal/features/audit"
	"go-lms/internal/features/auth"
	"go-lms/internal/features/lesson"
	"go-lms/internal/features/module"
	"go-lms/internal/features/progress"
	"go-lms/internal/features/role"
	"go-lms/internal/features/section"
	"go-lms/internal/features/system"
	"go-lms/internal/features/user"
	"go-lms/internal/logger"
	"go-lms/internal/middleware"

	_ "go-lms/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.NewErrorHandler(logger),
	})

	app.Use(middleware.CORSMiddleware(cfg))

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
func RegisterAllRoutes(app *fiber.App, logger *zap.Logger, routes []common_api.Route) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for i, route := range routes {
		logger.Debug("Setting up route", zap.Int("index", i+1), zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	logger.Info("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, ``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				logger.Info("Starting HTTP server", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					logger.Fatal("Server failed to start", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartSweeper runs the stale attempt sweeper for the lifetime of the app.
func StartSweeper(lc fx.Lifecycle, sweeper *assessment.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sweeper.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return sweeper.Stop()
		},
	})
}

// @title           Go LMS API
// @version         1.0
// @description     Learning management backend with role based module and section access.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Databases and Logger
			database.NewDatabase,
			database.NewPostgres,
			logger.NewLogger,
			validation.NewValidator,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Repository
			audit.NewAuditRepository,
			role.NewRoleRepository,
			user.NewUserRepository,
			module.NewModuleRepository,
			section.NewSectionRepository,
			lesson.NewLessonRepository,
			assessment.NewAssessmentRepository,
			assessment.NewAttemptRepository,
			access.NewRuleRepository,
			access.NewHierarchyRepository,
			progress.NewProgressRepository,

			// Initialize Service
			audit.NewAuditService,
			access.NewResolver,
			access.NewRoleAccessService,
			role.NewRoleService,
			user.NewUserService,
			auth.NewAuthService,
			module.NewModuleService,
			section.NewSectionService,
			lesson.NewLessonService,
			assessment.NewAssessmentService,
			assessment.NewAttemptService,
			assessment.NewSweeper,
			progress.NewHub,
			progress.NewProgressService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(s role.RoleService) middleware.RoleLookup { return s },
			func(r section.SectionRepository) lesson.SectionLookup { return r },
			func(r section.SectionRepository) assessment.SectionLookup { return r },
			func(s progress.ProgressService) lesson.ProgressTracker { return s },
			func(s progress.ProgressService) assessment.ProgressRecorder { return s },

			// Initialize Controller
			auth.NewAuthController,
			role.NewRoleController,
			user.NewUserController,
			audit.NewAuditController,
			access.NewRoleAccessController,
			module.NewModuleController,
			section.NewSectionController,
			lesson.NewLessonController,
			assessment.NewAssessmentController,
			assessment.NewAttemptController,
			progress.NewProgressController,
			system.NewStatusController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(role.NewRoleApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(access.NewRoleAccessApi),
			AsRoute(module.NewModuleApi),
			AsRoute(section.NewSectionApi),
			AsRoute(lesson.NewLessonApi),
			AsRoute(assessment.NewAssessmentApi),
			AsRoute(progress.NewProgressApi),
			AsRoute(system.NewStatusApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartSweeper,
		),
	)

	app.Run()
}
