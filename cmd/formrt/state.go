package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/renderers/jsonstate"
)

func newStateCmd(a *app) *cobra.Command {
	var (
		add    []string
		remove []string
		output string
	)
	cmd := &cobra.Command{
		Use:   "state <definition>",
		Short: "Print the runtime state and data of a definition",
		Long: "Print the runtime state and data of a definition. --add and --remove\n" +
			"apply instance operations, by manager or instance id, before printing.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, container, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range add {
				changed, err := container.AddInstance(id)
				if err != nil {
					return err
				}
				a.logger.Info().Str("target", id).Bool("changed", changed).Msg("add instance")
			}
			for _, id := range remove {
				changed, err := container.RemoveInstance(id)
				if err != nil {
					return err
				}
				a.logger.Info().Str("target", id).Bool("changed", changed).Msg("remove instance")
			}

			doc := jsonstate.New(jsonstate.WithData(true)).Snapshot(container, render.RenderOptions{})
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, append(out, '\n'))
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&add, "add", nil, "add an instance to the given repeatable")
	f.StringSliceVar(&remove, "remove", nil, "remove the last instance of the given repeatable")
	f.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
