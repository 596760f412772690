package model

import (
	"encoding/base64"
	"strings"
)

// FieldType identifies the kind of node a form item represents.
type FieldType string

const (
	FieldTypeForm            FieldType = "form"
	FieldTypePanel           FieldType = "panel"
	FieldTypeInstanceManager FieldType = "instance-manager"
	FieldTypeTextInput       FieldType = "text-input"
	FieldTypeNumberInput     FieldType = "number-input"
	FieldTypeDateInput       FieldType = "date-input"
	FieldTypeCheckbox        FieldType = "checkbox"
	FieldTypeImage           FieldType = "image"
	FieldTypeButton          FieldType = "button"
)

// Unbounded is the MaxOccur value used when a repeatable panel has no upper
// limit.
const Unbounded = -1

// IsContainer reports whether the field type holds child items.
func (t FieldType) IsContainer() bool {
	switch t {
	case FieldTypeForm, FieldTypePanel, FieldTypeInstanceManager:
		return true
	default:
		return false
	}
}

// IsInput reports whether the field type captures a value.
func (t FieldType) IsInput() bool {
	switch t {
	case FieldTypeTextInput, FieldTypeNumberInput, FieldTypeDateInput, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// Valid reports whether the field type is one the runtime knows how to build.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypePanel, FieldTypeInstanceManager, FieldTypeTextInput,
		FieldTypeNumberInput, FieldTypeDateInput, FieldTypeCheckbox,
		FieldTypeImage, FieldTypeButton:
		return true
	default:
		return false
	}
}

// NumberConstraints carries the numeric bounds and digit limits of a number
// input. Nil pointers mean "not constrained".
type NumberConstraints struct {
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	LeadDigits       *int     `json:"leadDigits,omitempty"`
	FracDigits       *int     `json:"fracDigits,omitempty"`
}

// Image describes the asset rendered by an image component.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Item is a node of the form tree. Panels and instance managers hold child
// Items; inputs hold a Value. Instance-manager nodes keep the panel Template
// used to create new instances and their occurrence bounds.
type Item struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	FieldType        FieldType          `json:"fieldType"`
	Label            string             `json:"label,omitempty"`
	ShortDescription string             `json:"shortDescription,omitempty"`
	Description      string             `json:"description,omitempty"`
	Placeholder      string             `json:"placeholder,omitempty"`
	Visible          bool               `json:"visible"`
	Enabled          bool               `json:"enabled"`
	Required         bool               `json:"required,omitempty"`
	VisibleWhen      string             `json:"visibleWhen,omitempty"`
	EnabledWhen      string             `json:"enabledWhen,omitempty"`
	Value            any                `json:"value,omitempty"`
	MinOccur         int                `json:"minOccur,omitempty"`
	MaxOccur         int                `json:"maxOccur,omitempty"`
	Number           *NumberConstraints `json:"number,omitempty"`
	Image            *Image             `json:"image,omitempty"`
	Properties       map[string]string  `json:"properties,omitempty"`
	Items            []*Item            `json:"items,omitempty"`
	Template         *Item              `json:"-"`
}

// ItemState is a value snapshot of the mutable properties of an item.
type ItemState struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FieldType FieldType `json:"fieldType"`
	Visible   bool      `json:"visible"`
	Enabled   bool      `json:"enabled"`
	Value     any       `json:"value,omitempty"`
	Items     int       `json:"items"`
}

// State returns a snapshot of the item.
func (i *Item) State() ItemState {
	if i == nil {
		return ItemState{}
	}
	return ItemState{
		ID:        i.ID,
		Name:      i.Name,
		FieldType: i.FieldType,
		Visible:   i.Visible,
		Enabled:   i.Enabled,
		Value:     i.Value,
		Items:     len(i.Items),
	}
}

// Repeatable reports whether the item is an instance manager.
func (i *Item) Repeatable() bool {
	return i != nil && i.FieldType == FieldTypeInstanceManager
}

// Metadata records the definition version and rule grammar.
type Metadata struct {
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	Grammar string `yaml:"grammar,omitempty" json:"grammar,omitempty"`
}

// Form is the form container. It is always visible and enabled and has no
// field type of its own.
type Form struct {
	ID              string         `json:"id"`
	Title           string         `json:"title,omitempty"`
	Description     string         `json:"description,omitempty"`
	Action          string         `json:"action,omitempty"`
	ThankYouMessage string         `json:"thankYouMessage,omitempty"`
	ThankYouPage    string         `json:"thankYouPage,omitempty"`
	DocumentPath    string         `json:"documentPath,omitempty"`
	PagePath        string         `json:"pagePath,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
	Metadata        Metadata       `json:"metadata"`
	Items           []*Item        `json:"items"`
}

// EncodedPagePath returns the page path base64 encoded, or an empty string
// when no page path is set.
func (f *Form) EncodedPagePath() string {
	if f == nil || strings.TrimSpace(f.PagePath) == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(f.PagePath))
}
