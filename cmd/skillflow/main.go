// Package main provides the skillflow command line: it validates, runs and
// shares skill workflows and serves the workflow API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/n3wth/skillflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "skillflow",
		Usage:                 "Compose skills into workflows and compile them into prompts",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Path to a skill catalog file (YAML or JSON); the built-in catalog is used when empty",
				Sources: cli.EnvVars("SKILLFLOW_CATALOG"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"), command.String("log-format"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewRunCommand(),
			NewComposeCommand(),
			NewInputsCommand(),
			NewImportCommand(),
			NewExportCommand(),
			NewShareCommand(),
			NewTemplatesCommand(),
			NewSkillsCommand(),
			NewServeCommand(),
		},
	}
}
