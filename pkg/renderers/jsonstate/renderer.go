// Package jsonstate renders a JSON snapshot of the runtime state tree.
package jsonstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// Name is the registry name of the renderer.
const Name = "json"

// Document is the payload produced by Render.
type Document struct {
	runtime.FormState
	Data       map[string]any      `json:"data,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
}

type Option func(*Renderer)

// WithIndent pretty prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithData includes the exported field values next to the state tree.
func WithData(enabled bool) Option {
	return func(r *Renderer) {
		r.includeData = enabled
	}
}

type Renderer struct {
	indent      string
	includeData bool
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Snapshot builds the document without encoding it.
func (r *Renderer) Snapshot(container *runtime.Container, opts render.RenderOptions) Document {
	doc := Document{
		FormState:  container.State(),
		Errors:     opts.Errors,
		FormErrors: opts.FormErrors,
	}
	if r.includeData {
		doc.Data = container.Data()
	}
	return doc
}

func (r *Renderer) Render(ctx context.Context, container *runtime.Container, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if container == nil {
		return nil, errors.New("jsonstate: container is nil")
	}

	doc := r.Snapshot(container, opts)
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonstate: encode state: %w", err)
	}
	return out, nil
}
