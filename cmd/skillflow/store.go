package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/builder"
	"github.com/n3wth/skillflow/pkg/cmd"
	"github.com/n3wth/skillflow/pkg/codec"
	"github.com/n3wth/skillflow/pkg/log"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/services"
	"github.com/n3wth/skillflow/pkg/templates"
	cli "github.com/urfave/cli/v3"
)

var (
	ErrWorkflowIDRequired = errors.New("workflow id argument is required")
	ErrTemplateIDRequired = errors.New("template id argument is required")
	ErrInvalidImportFile  = errors.New("invalid workflow file")
)

func databaseURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "database-url",
		Usage:    "Database connection URL for persistence (file://, postgres://, redis://)",
		Required: required,
		Sources:  cli.EnvVars("DATABASE_URL"),
	}
}

// withService opens the store named by --database-url, runs fn and closes it.
func withService(
	ctx context.Context,
	command *cli.Command,
	logger *slog.Logger,
	fn func(*services.Workflow) error,
) error {
	catalog, err := cmd.NewRegistry(logger, command.String("catalog"))
	if err != nil {
		return err
	}

	store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	return fn(services.NewWorkflow(store, catalog, services.WithLogger(logger)))
}

func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import an exported workflow file, storing it when a database is configured",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{databaseURLFlag(false)},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("import")

			path := command.Args().First()
			if path == "" {
				return ErrWorkflowFileRequired
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read workflow file: %w", err)
			}

			if command.String("database-url") == "" {
				catalog, err := cmd.NewRegistry(logger, command.String("catalog"))
				if err != nil {
					return err
				}

				session := builder.NewSession(catalog, builder.WithLogger(logger))
				if err := session.Import(string(data)); err != nil {
					return fmt.Errorf("%w: %w", ErrInvalidImportFile, err)
				}

				document, err := session.Export()
				if err != nil {
					return err
				}

				return writeOutput(command, "", document+"\n")
			}

			return withService(ctx, command, logger, func(service *services.Workflow) error {
				imported, err := service.Import(ctx, string(data))
				if err != nil {
					return err
				}

				fmt.Fprintf(writer(command), "imported %s as %s\n", imported.Name, imported.ID)

				return nil
			})
		},
	}
}

func NewExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a stored workflow as JSON",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			databaseURLFlag(true),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the document to this file instead of stdout",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			id := command.Args().First()
			if id == "" {
				return ErrWorkflowIDRequired
			}

			return withService(ctx, command, log.WithModule("export"), func(service *services.Workflow) error {
				document, err := service.Export(ctx, id)
				if err != nil {
					return err
				}

				return writeOutput(command, command.String("output"), document+"\n")
			})
		},
	}
}

func NewTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:    "templates",
		Aliases: []string{"t"},
		Usage:   "List the built-in workflow templates",
		Action: func(ctx context.Context, command *cli.Command) error {
			tw := tabwriter.NewWriter(writer(command), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSKILLS\tTAGS")

			for _, tpl := range templates.All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%v\n", tpl.ID, tpl.Name, len(tpl.Nodes), tpl.Tags)
			}

			return tw.Flush()
		},
		Commands: []*cli.Command{
			{
				Name:      "copy",
				Usage:     "Copy a template into the store, or print the copy when no database is configured",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{databaseURLFlag(false)},
				Action: func(ctx context.Context, command *cli.Command) error {
					id := command.Args().First()
					if id == "" {
						return ErrTemplateIDRequired
					}

					if command.String("database-url") == "" {
						tpl, ok := templates.Get(id)
						if !ok {
							return fmt.Errorf("%w: %s", services.ErrTemplateNotFound, id)
						}

						document, err := codec.Export(templates.Copy(tpl, nowUTC(), newID()))
						if err != nil {
							return err
						}

						return writeOutput(command, "", document+"\n")
					}

					return withService(ctx, command, log.WithModule("templates"), func(service *services.Workflow) error {
						copied, err := service.CreateFromTemplate(ctx, id)
						if err != nil {
							return err
						}

						fmt.Fprintf(writer(command), "created %s as %s\n", copied.Name, copied.ID)

						return nil
					})
				},
			},
		},
	}
}

func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List the skills of the catalog with their ports",
		Action: func(ctx context.Context, command *cli.Command) error {
			catalog, err := cmd.NewRegistry(log.WithModule("skills"), command.String("catalog"))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(writer(command), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tINPUTS\tOUTPUTS")

			for _, skill := range catalog.Skills() {
				inputs, outputs := "-", "-"

				if schema, ok := catalog.Lookup(skill.ID); ok {
					inputs = portList(schema.Inputs)
					outputs = portList(schema.Outputs)
				}

				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", skill.ID, skill.Name, skill.Category, inputs, outputs)
			}

			return tw.Flush()
		},
	}
}

// portList renders ports as id:type, marking required inputs with '*'.
func portList(ports []models.SkillIO) string {
	if len(ports) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(ports))
	for _, port := range ports {
		part := port.ID + ":" + string(port.Type)
		if port.Required {
			part += "*"
		}

		parts = append(parts, part)
	}

	return strings.Join(parts, ",")
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func newID() string {
	return uuid.NewString()
}
