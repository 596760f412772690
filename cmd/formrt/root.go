package main

import (
	"context"
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formruntime/internal/config"
	"github.com/goliatone/go-formruntime/internal/logging"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/orchestrator"
	"github.com/goliatone/go-formruntime/pkg/renderers/tui"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath    string
	logLevel      string
	presetPath    string
	sequentialIDs bool

	cfg    *config.Config
	logger *log.Logger

	// driver replaces the survey prompts of the edit command, for tests.
	driver tui.PromptDriver
}

func newRootCmd() *cobra.Command {
	return rootCmd(&app{})
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "formrt",
		Short:         "Load, render, edit and serve adaptive form definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	flags.StringVar(&a.presetPath, "preset", "", "JSON preset applied to definitions before they are built")
	flags.BoolVar(&a.sequentialIDs, "sequential-ids", false, "generate readable sequential ids instead of UUIDs")

	cmd.AddCommand(
		newRenderCmd(a),
		newStateCmd(a),
		newValidateCmd(a),
		newEditCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// orchestratorOptions returns the options every command builds forms with.
func (a *app) orchestratorOptions() ([]orchestrator.Option, error) {
	options := []orchestrator.Option{
		orchestrator.WithBuilderOptions(
			model.WithDefaultMinOccur(a.cfg.Forms.DefaultMinOccur),
			model.WithDefaultInitialOccur(a.cfg.Forms.DefaultInitialOccur),
		),
	}
	if a.sequentialIDs {
		options = append(options, orchestrator.WithIDGeneratorFactory(func() model.IDGenerator {
			return model.NewSequentialGenerator()
		}))
	}
	if a.presetPath != "" {
		raw, err := os.ReadFile(a.presetPath)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		preset, err := orchestrator.NewJSONPresetTransformer(raw)
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithTransformer(preset))
	}
	return options, nil
}

// load builds a runtime for the definition file at path.
func (a *app) load(ctx context.Context, path string, extra ...orchestrator.Option) (*orchestrator.Orchestrator, *runtime.Container, error) {
	options, err := a.orchestratorOptions()
	if err != nil {
		return nil, nil, err
	}
	gen := orchestrator.New(append(options, extra...)...)
	container, err := gen.Load(ctx, orchestrator.Request{Source: orchestrator.SourceFromFile(path)})
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug().Str("definition", path).Int("fields", len(container.AllFields())).Msg("definition loaded")
	return gen, container, nil
}

// writeOutput writes out to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, out []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", path)
	return nil
}
