package model

// Definition is the authored form document. It is decoded from YAML or JSON
// and converted into a Form by the Builder.
type Definition struct {
	Title           string           `yaml:"title,omitempty" json:"title,omitempty"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	Action          string           `yaml:"action,omitempty" json:"action,omitempty"`
	ThankYouMessage string           `yaml:"thankYouMessage,omitempty" json:"thankYouMessage,omitempty"`
	ThankYouPage    string           `yaml:"thankYouPage,omitempty" json:"thankYouPage,omitempty"`
	DocumentPath    string           `yaml:"documentPath,omitempty" json:"documentPath,omitempty"`
	PagePath        string           `yaml:"pagePath,omitempty" json:"pagePath,omitempty"`
	Data            map[string]any   `yaml:"data,omitempty" json:"data,omitempty"`
	Metadata        Metadata         `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Items           []ItemDefinition `yaml:"items" json:"items"`
}

// ItemDefinition describes a single authored component. Pointer fields
// distinguish "not set" from zero values so builder defaults can apply.
type ItemDefinition struct {
	Name             string            `yaml:"name" json:"name"`
	FieldType        FieldType         `yaml:"fieldType" json:"fieldType"`
	Label            string            `yaml:"label,omitempty" json:"label,omitempty"`
	ShortDescription string            `yaml:"shortDescription,omitempty" json:"shortDescription,omitempty"`
	Description      string            `yaml:"description,omitempty" json:"description,omitempty"`
	Placeholder      string            `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Visible          *bool             `yaml:"visible,omitempty" json:"visible,omitempty"`
	Enabled          *bool             `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Required         bool              `yaml:"required,omitempty" json:"required,omitempty"`
	VisibleWhen      string            `yaml:"visibleWhen,omitempty" json:"visibleWhen,omitempty"`
	EnabledWhen      string            `yaml:"enabledWhen,omitempty" json:"enabledWhen,omitempty"`
	Default          any               `yaml:"default,omitempty" json:"default,omitempty"`
	Repeatable       bool              `yaml:"repeatable,omitempty" json:"repeatable,omitempty"`
	MinOccur         *int              `yaml:"minOccur,omitempty" json:"minOccur,omitempty"`
	MaxOccur         *int              `yaml:"maxOccur,omitempty" json:"maxOccur,omitempty"`
	InitialOccur     *int              `yaml:"initialOccur,omitempty" json:"initialOccur,omitempty"`
	Minimum          *float64          `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum          *float64          `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMinimum *float64          `yaml:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64          `yaml:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"`
	LeadDigits       *int              `yaml:"leadDigits,omitempty" json:"leadDigits,omitempty"`
	FracDigits       *int              `yaml:"fracDigits,omitempty" json:"fracDigits,omitempty"`
	Src              string            `yaml:"src,omitempty" json:"src,omitempty"`
	Alt              string            `yaml:"alt,omitempty" json:"alt,omitempty"`
	Properties       map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
	Items            []ItemDefinition  `yaml:"items,omitempty" json:"items,omitempty"`
}
