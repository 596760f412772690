package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/renderers/tui"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "edit <definition>",
		Short: "Fill in a form interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch tui.OutputFormat(format) {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown output format %q", format)
			}

			_, container, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			editor, err := tui.New(
				tui.WithPromptDriver(a.driver),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithTheme(tui.Theme{ErrorPrefix: "x "}),
			)
			if err != nil {
				return err
			}
			out, err := editor.Render(cmd.Context(), container, render.RenderOptions{})
			if err != nil {
				return err
			}
			if tui.OutputFormat(format) != tui.OutputFormatPrettyText {
				out = append(out, '\n')
			}
			return writeOutput(cmd, output, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", string(tui.OutputFormatJSON), "output format (json, form or pretty)")
	f.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
