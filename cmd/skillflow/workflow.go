package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/n3wth/skillflow/pkg/builder"
	"github.com/n3wth/skillflow/pkg/cmd"
	"github.com/n3wth/skillflow/pkg/codec"
	"github.com/n3wth/skillflow/pkg/executor"
	"github.com/n3wth/skillflow/pkg/log"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/scheduler"
	"github.com/n3wth/skillflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

// Static error variables for linter compliance.
var (
	ErrWorkflowFileRequired = errors.New("workflow file argument is required")
	ErrInvalidWorkflow      = errors.New("workflow is invalid")
	ErrInvalidInputFlag     = errors.New("input must look like <node>.<input>=<value>")
	ErrShareTooLarge        = errors.New("workflow is too large to share")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate a workflow file against the skill catalog",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("validate")

			wf, err := readWorkflow(command.Args().First())
			if err != nil {
				return err
			}

			catalog, err := cmd.NewRegistry(logger, command.String("catalog"))
			if err != nil {
				return err
			}

			session := builder.NewSession(catalog, builder.WithWorkflow(wf), builder.WithLogger(logger))
			w := writer(command)

			if _, err := session.PrepareRun(); err != nil {
				for _, message := range session.Errors() {
					fmt.Fprintf(w, "- %s\n", message)
				}

				return ErrInvalidWorkflow
			}

			fmt.Fprintf(w, "%s: valid (%d skills, %d connections)\n", wf.ID, len(wf.Nodes), len(wf.Connections))

			return nil
		},
	}
}

func NewInputsCommand() *cli.Command {
	return &cli.Command{
		Name:      "inputs",
		Usage:     "List the inputs a run of the workflow needs",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, command *cli.Command) error {
			wf, err := readWorkflow(command.Args().First())
			if err != nil {
				return err
			}

			catalog, err := cmd.NewRegistry(log.WithModule("inputs"), command.String("catalog"))
			if err != nil {
				return err
			}

			w := writer(command)
			for _, input := range scheduler.RequiredInputs(wf, catalog) {
				fmt.Fprintf(w, "%s.%s\t%s: %s (%s)\t%s\n",
					input.NodeID, input.InputID, input.NodeName, input.InputName, input.InputType, input.Description)
			}

			return nil
		},
	}
}

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Run a workflow file and print the compiled prompt",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Initial input as <node>.<input>=<value>; repeatable",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Simulated time spent on each skill",
				Value: executor.DefaultDelay,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the compiled prompt to this file instead of stdout",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("run")

			wf, err := readWorkflow(command.Args().First())
			if err != nil {
				return err
			}

			inputs, err := parseInputs(command.StringSlice("input"))
			if err != nil {
				return err
			}

			catalog, err := cmd.NewRegistry(logger, command.String("catalog"))
			if err != nil {
				return err
			}

			session := builder.NewSession(catalog,
				builder.WithWorkflow(wf),
				builder.WithLogger(logger),
				builder.WithRunner(executor.NewExecutor(catalog,
					executor.WithLogger(logger),
					executor.WithDelay(command.Duration("delay")),
				)),
			)

			required, err := session.PrepareRun()
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidWorkflow, strings.Join(session.Errors(), "; "))
			}

			if missing := services.MissingInputs(required, inputs); len(missing) > 0 {
				return fmt.Errorf("%w: %s", services.ErrMissingRequiredInputs, strings.Join(missing, ", "))
			}

			state, err := session.Run(ctx, inputs, progressLogger(logger))
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			return writeOutput(command, command.String("output"), state.CompiledPrompt+"\n")
		},
	}
}

func NewShareCommand() *cli.Command {
	return &cli.Command{
		Name:      "share",
		Usage:     "Print a share link that carries the workflow",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Base URL of the skillflow web app",
				Value:   "http://localhost:9091",
				Sources: cli.EnvVars("SKILLFLOW_BASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			wf, err := readWorkflow(command.Args().First())
			if err != nil {
				return err
			}

			link, ok := codec.ShareURL(strings.TrimRight(command.String("base-url"), "/"), wf)
			if !ok {
				return fmt.Errorf("%w: limit is %d characters", ErrShareTooLarge, codec.MaxShareLength)
			}

			fmt.Fprintln(writer(command), link)

			return nil
		},
	}
}

// readWorkflow loads a workflow document as written by export.
func readWorkflow(path string) (*models.Workflow, error) {
	if path == "" {
		return nil, ErrWorkflowFileRequired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf models.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}

	if err := validate.Struct(wf); err != nil {
		return nil, fmt.Errorf("malformed workflow file %s: %w", path, err)
	}

	return &wf, nil
}

// parseInputs turns repeated node.input=value flags into initial inputs.
func parseInputs(values []string) (models.InitialInputs, error) {
	inputs := make(models.InitialInputs)

	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInputFlag, value)
		}

		nodeID, inputID, ok := strings.Cut(key, ".")
		if !ok || nodeID == "" || inputID == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInputFlag, value)
		}

		if inputs[nodeID] == nil {
			inputs[nodeID] = make(map[string]string)
		}

		inputs[nodeID][inputID] = val
	}

	return inputs, nil
}

func progressLogger(logger *slog.Logger) executor.ProgressFunc {
	started := time.Now()

	return func(state *models.ExecutionState) {
		if state.CurrentNodeID == "" {
			return
		}

		logger.Info("progress",
			"node_id", state.CurrentNodeID,
			"state", state.NodeStates[state.CurrentNodeID],
			"completed", len(state.Results),
			"elapsed", time.Since(started).Round(time.Millisecond),
		)
	}
}

func writer(command *cli.Command) io.Writer {
	if w := command.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func writeOutput(command *cli.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(writer(command), content)

		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
