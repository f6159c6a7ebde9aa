package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/n3wth/skillflow/pkg/eventbus"
	"github.com/n3wth/skillflow/pkg/events"
	"github.com/n3wth/skillflow/pkg/persistence"
	"github.com/n3wth/skillflow/pkg/registry"
	"github.com/n3wth/skillflow/pkg/services"
	"github.com/n3wth/skillflow/pkg/web"
)

type API struct {
	logger       *slog.Logger
	persistence  persistence.Persistence
	registry     *registry.Registry
	eventBus     eventbus.EventBus
	runner       services.Runner
	validate     *validator.Validate
	shareBaseURL string
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	runner services.Runner,
	shareBaseURL string,
) *API {
	return &API{
		logger:       logger,
		persistence:  persistence,
		registry:     registry,
		eventBus:     eventBus,
		runner:       runner,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		shareBaseURL: shareBaseURL,
	}
}

func (a *API) App() *fiber.App {
	opts := []services.Option{services.WithLogger(a.logger)}

	if a.eventBus != nil {
		opts = append(opts, services.WithPublisher(a.eventBus))
	}

	if a.runner != nil {
		opts = append(opts, services.WithRunner(a.runner))
	}

	workflowService := services.NewWorkflow(a.persistence, a.registry, opts...)
	handlers := web.NewAPIHandlers(workflowService, a.validate, a.registry, a.shareBaseURL)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Skillflow API")
	})

	handlers.RegisterRoutes(app)

	return app
}

// Start serves until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		if err := app.Shutdown(); err != nil {
			a.logger.Error("Failed to shut down API", "error", err)
		}
	}()

	return app.Listen(":" + strconv.Itoa(port))
}

// logEvents subscribes to the lifecycle events and logs them.
func logEvents(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	for _, eventType := range []events.EventType{
		events.ExecutionStartedEvent,
		events.ExecutionCompletedEvent,
		events.ExecutionFailedEvent,
		events.WorkflowSavedEvent,
		events.WorkflowDeletedEvent,
	} {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "Event received", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
