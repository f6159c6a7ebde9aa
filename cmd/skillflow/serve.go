package main

import (
	"context"
	"fmt"

	"github.com/n3wth/skillflow/pkg/cmd"
	"github.com/n3wth/skillflow/pkg/executor"
	"github.com/n3wth/skillflow/pkg/log"
	"github.com/n3wth/skillflow/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the workflow API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Simulated time spent on each skill during runs",
				Value: executor.DefaultDelay,
			},
			&cli.StringFlag{
				Name:    "share-base-url",
				Usage:   "Base URL used in share links; defaults to the request URL",
				Sources: cli.EnvVars("SKILLFLOW_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "otel-endpoint",
				Usage:   "OTLP/HTTP endpoint; tracing is disabled when empty",
				Sources: cli.EnvVars("OTEL_EXPORTER_OTLP_ENDPOINT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing skillflow API")

			catalog, err := cmd.NewRegistry(logger, command.String("catalog"))
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if err := logEvents(ctx, eventBus, logger); err != nil {
				return fmt.Errorf("failed to subscribe to events: %w", err)
			}

			execOpts := []executor.Option{
				executor.WithLogger(logger),
				executor.WithDelay(command.Duration("delay")),
				executor.WithPublisher(eventBus),
			}

			if command.String("otel-endpoint") != "" {
				tracer, shutdown, err := otelhelper.NewTracer(ctx, "skillflow")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					if err := shutdown(context.WithoutCancel(ctx)); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()

				execOpts = append(execOpts, executor.WithTracer(tracer))
			}

			api := NewAPI(
				logger,
				persistence,
				catalog,
				eventBus,
				executor.NewExecutor(catalog, execOpts...),
				command.String("share-base-url"),
			)

			logger.InfoContext(ctx, "Starting skillflow API", "port", command.Int("port"))

			return api.Start(ctx, command.Int("port"))
		},
	}
}
