package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formruntime/pkg/validation"
)

var errInvalid = errors.New("validation failed")

func newValidateCmd(a *app) *cobra.Command {
	var values bool
	cmd := &cobra.Command{
		Use:   "validate <definition>...",
		Short: "Check definitions against the definition schema",
		Long: "Check definitions against the definition schema. With --values the\n" +
			"authored values of every visible input are checked as well.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}

				result := validation.ValidateDefinition(raw)
				if result.Valid && values {
					_, container, err := a.load(cmd.Context(), path)
					if err != nil {
						return err
					}
					result = validation.ValidateValues(container.Model())
				}

				if result.Valid {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				failed++
				for _, issue := range result.Issues {
					location := issue.Field
					if location == "" {
						location = issue.Path
					}
					fmt.Fprintf(out, "%s: %s: %s\n", path, location, issue.Message)
				}
				a.logger.Debug().Str("definition", path).Int("issues", len(result.Issues)).Msg("definition rejected")
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d definitions", errInvalid, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&values, "values", false, "also check authored field values")
	return cmd
}
