package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/n3wth/skillflow/pkg/builder"
	"github.com/n3wth/skillflow/pkg/cmd"
	"github.com/n3wth/skillflow/pkg/codec"
	"github.com/n3wth/skillflow/pkg/log"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var (
	ErrSkillRequired      = errors.New("at least one --skill is required")
	ErrInvalidConnectFlag = errors.New("connection must look like <from>.<output>=<to>.<input> with 1-based skill positions")
)

// documentSaver writes the saved workflow as an export document.
type documentSaver struct {
	command *cli.Command
	path    string
}

func (d documentSaver) Save(_ context.Context, wf *models.Workflow) error {
	document, err := codec.Export(wf)
	if err != nil {
		return err
	}

	return writeOutput(d.command, d.path, document+"\n")
}

// connectFlag is a parsed --connect value.
type connectFlag struct {
	from, to      int
	output, input string
}

func NewComposeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compose",
		Usage: "Build a workflow from skills and connections, then save it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Workflow name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Workflow description",
			},
			&cli.StringSliceFlag{
				Name:    "skill",
				Aliases: []string{"s"},
				Usage:   "Skill id to place on the canvas; repeatable, positions start at 1",
			},
			&cli.StringSliceFlag{
				Name:    "connect",
				Aliases: []string{"c"},
				Usage:   "Connection as <from>.<output>=<to>.<input>, e.g. 1.findings=2.draft; repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "tag",
				Usage: "Tag; repeatable",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Mark the workflow public",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the document to this file instead of stdout",
			},
			databaseURLFlag(false),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("compose")

			skills := command.StringSlice("skill")
			if len(skills) == 0 {
				return ErrSkillRequired
			}

			connections := make([]connectFlag, 0, len(command.StringSlice("connect")))

			for _, value := range command.StringSlice("connect") {
				conn, err := parseConnect(value)
				if err != nil {
					return err
				}

				connections = append(connections, conn)
			}

			catalog, err := cmd.NewRegistry(logger, command.String("catalog"))
			if err != nil {
				return err
			}

			opts := builder.SaveOptions{
				Name:        command.String("name"),
				Description: command.String("description"),
				IsPublic:    command.Bool("public"),
				Tags:        command.StringSlice("tag"),
			}

			if command.String("database-url") == "" {
				session := builder.NewSession(catalog,
					builder.WithLogger(logger),
					builder.WithSaver(documentSaver{command: command, path: command.String("output")}),
				)

				return compose(ctx, command, session, skills, connections, opts)
			}

			return withService(ctx, command, logger, func(service *services.Workflow) error {
				session := builder.NewSession(catalog, builder.WithLogger(logger), builder.WithSaver(service))

				if err := compose(ctx, command, session, skills, connections, opts); err != nil {
					return err
				}

				wf := session.Workflow()
				fmt.Fprintf(writer(command), "saved %s as %s\n", wf.Name, wf.ID)

				return nil
			})
		},
	}
}

// compose replays the flags as editor actions on session and saves.
func compose(
	ctx context.Context,
	command *cli.Command,
	session *builder.Session,
	skills []string,
	connections []connectFlag,
	opts builder.SaveOptions,
) error {
	nodes := make([]*models.WorkflowNode, 0, len(skills))

	for _, skillID := range skills {
		node, err := session.AddNode(skillID)
		if err != nil {
			return fmt.Errorf("cannot place %q: %w", skillID, err)
		}

		nodes = append(nodes, node)
	}

	for _, conn := range connections {
		if conn.from > len(nodes) || conn.to > len(nodes) {
			return fmt.Errorf("%w: only %d skills placed", ErrInvalidConnectFlag, len(nodes))
		}

		session.StartConnection(nodes[conn.from-1].ID, conn.output)

		if _, err := session.CompleteConnection(nodes[conn.to-1].ID, conn.input); err != nil {
			return fmt.Errorf("cannot connect %d.%s to %d.%s: %w", conn.from, conn.output, conn.to, conn.input, err)
		}
	}

	if err := session.SaveWithName(ctx, opts); err != nil {
		for _, message := range session.Errors() {
			fmt.Fprintf(writer(command), "- %s\n", message)
		}

		return err
	}

	return nil
}

func parseConnect(value string) (connectFlag, error) {
	source, target, ok := strings.Cut(value, "=")
	if !ok {
		return connectFlag{}, fmt.Errorf("%w: %q", ErrInvalidConnectFlag, value)
	}

	from, output, err := parseEndpoint(source)
	if err != nil {
		return connectFlag{}, fmt.Errorf("%w: %q", ErrInvalidConnectFlag, value)
	}

	to, input, err := parseEndpoint(target)
	if err != nil {
		return connectFlag{}, fmt.Errorf("%w: %q", ErrInvalidConnectFlag, value)
	}

	return connectFlag{from: from, output: output, to: to, input: input}, nil
}

func parseEndpoint(value string) (int, string, error) {
	position, port, ok := strings.Cut(value, ".")
	if !ok || port == "" {
		return 0, "", ErrInvalidConnectFlag
	}

	index, err := strconv.Atoi(position)
	if err != nil || index < 1 {
		return 0, "", ErrInvalidConnectFlag
	}

	return index, port, nil
}
