package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/model"
)

// Transformer mutates a decoded Definition before it is built. Patches applied
// here reach repeatable panel templates, so later instances inherit them.
type Transformer interface {
	Transform(ctx context.Context, def *model.Definition) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, def *model.Definition) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, def *model.Definition) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, def)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// Fields are addressed by dotted name paths through named panels:
//
//	{
//	  "title": "Staff onboarding",
//	  "fields": {
//	    "people": {"minOccur": 2, "label": "Employee"},
//	    "people.fullName": {"placeholder": "Jane Doe"},
//	    "wrapper.dates.when": {"required": true},
//	    "notes": {"visibleWhen": "people.0.age >= 18"}
//	  }
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Fields      map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label            string `json:"label"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Placeholder      string `json:"placeholder"`
	Rename           string `json:"rename"`
	Visible          *bool  `json:"visible"`
	Enabled          *bool  `json:"enabled"`
	Required         *bool  `json:"required"`
	VisibleWhen      string `json:"visibleWhen"`
	EnabledWhen      string `json:"enabledWhen"`
	MinOccur         *int   `json:"minOccur"`
	MaxOccur         *int   `json:"maxOccur"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var document jsonTransformDocument
	if err := dec.Decode(&document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied definition.
func (t *JSONPresetTransformer) Transform(ctx context.Context, def *model.Definition) error {
	if def == nil {
		return errors.New("json preset transformer: definition is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Title != "" {
		def.Title = t.document.Title
	}
	if t.document.Description != "" {
		def.Description = t.document.Description
	}

	// resolve every path before any rename is applied
	type target struct {
		item  *model.ItemDefinition
		patch jsonFieldPatch
	}
	targets := make([]target, 0, len(t.document.Fields))
	for path, patch := range t.document.Fields {
		item := findItemByPath(def.Items, path)
		if item == nil {
			return fmt.Errorf("json preset transformer: field %q not found", path)
		}
		targets = append(targets, target{item: item, patch: patch})
	}
	for _, tgt := range targets {
		if err := applyFieldPatch(tgt.item, tgt.patch); err != nil {
			return err
		}
	}
	return nil
}

func applyFieldPatch(item *model.ItemDefinition, patch jsonFieldPatch) error {
	if patch.Label != "" {
		item.Label = patch.Label
	}
	if patch.ShortDescription != "" {
		item.ShortDescription = patch.ShortDescription
	}
	if patch.Description != "" {
		item.Description = patch.Description
	}
	if patch.Placeholder != "" {
		item.Placeholder = patch.Placeholder
	}
	if patch.Visible != nil {
		item.Visible = boolPtr(*patch.Visible)
	}
	if patch.Enabled != nil {
		item.Enabled = boolPtr(*patch.Enabled)
	}
	if patch.Required != nil {
		item.Required = *patch.Required
	}
	if patch.VisibleWhen != "" {
		item.VisibleWhen = patch.VisibleWhen
	}
	if patch.EnabledWhen != "" {
		item.EnabledWhen = patch.EnabledWhen
	}
	if patch.MinOccur != nil || patch.MaxOccur != nil {
		if !item.Repeatable {
			return fmt.Errorf("json preset transformer: field %q is not repeatable", item.Name)
		}
		if patch.MinOccur != nil {
			item.MinOccur = intPtr(*patch.MinOccur)
		}
		if patch.MaxOccur != nil {
			item.MaxOccur = intPtr(*patch.MaxOccur)
		}
	}
	if name := strings.TrimSpace(patch.Rename); name != "" {
		item.Name = name
	}
	return nil
}

func findItemByPath(items []model.ItemDefinition, path string) *model.ItemDefinition {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return walkItemsByPath(items, strings.Split(path, "."))
}

func walkItemsByPath(items []model.ItemDefinition, segments []string) *model.ItemDefinition {
	if len(segments) == 0 {
		return nil
	}
	head := segments[0]
	for idx := range items {
		item := &items[idx]
		if item.Name != head {
			continue
		}
		if len(segments) == 1 {
			return item
		}
		return walkItemsByPath(item.Items, segments[1:])
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
