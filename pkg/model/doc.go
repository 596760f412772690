// Package model defines the form model the runtime operates on: the form
// container, panels, fields and the instance-manager nodes that own the
// instances of a repeatable panel. Definitions (YAML or JSON documents) are
// decoded into Definition values and turned into a *Form by the Builder, which
// assigns ids through an IDGenerator and expands repeatable panels into an
// instance-manager node holding the panel template plus its initial
// instances.
//
// The model is plain data. Views, events and occurrence bounds are handled by
// the runtime and instance packages.
package model
