package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formruntime/pkg/orchestrator"
	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/renderers/html"
	"github.com/goliatone/go-formruntime/pkg/renderers/jsonstate"
)

type renderFlags struct {
	renderer   string
	document   bool
	lang       string
	templates  string
	actionsURL string
	output     string
}

func newRenderCmd(a *app) *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Render a definition as HTML or JSON state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := renderRegistry(a, flags)
			if err != nil {
				return err
			}
			gen, container, err := a.load(cmd.Context(), args[0], orchestrator.WithRegistry(registry))
			if err != nil {
				return err
			}
			out, err := gen.Render(cmd.Context(), container, flags.renderer, render.RenderOptions{
				ActionsURL: flags.actionsURL,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, flags.output, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.renderer, "renderer", html.Name, fmt.Sprintf("renderer to use (%s or %s)", html.Name, jsonstate.Name))
	f.BoolVar(&flags.document, "document", false, "wrap HTML output in a standalone page")
	f.StringVar(&flags.lang, "lang", "", "document language, defaults to render.lang")
	f.StringVar(&flags.templates, "templates", "", "directory overriding the embedded templates")
	f.StringVar(&flags.actionsURL, "actions-url", "", "base URL of the instance endpoints")
	f.StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func renderRegistry(a *app, flags renderFlags) (*render.Registry, error) {
	var options []html.Option
	if flags.document {
		lang := flags.lang
		if lang == "" {
			lang = a.cfg.Render.Lang
		}
		options = append(options, html.WithDocument(lang))
	}
	templates := flags.templates
	if templates == "" {
		templates = a.cfg.Render.TemplatesDir
	}
	if templates != "" {
		options = append(options, html.WithTemplatesDir(templates))
	}

	page, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(page)
	registry.MustRegister(jsonstate.New(jsonstate.WithIndent("  ")))
	return registry, nil
}
