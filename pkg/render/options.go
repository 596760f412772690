package render

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the runtime.
type RenderOptions struct {
	// Errors surfaces validation feedback keyed by field id. Use MapErrors to
	// translate name paths ("people[1].fullName") into ids.
	Errors map[string][]string
	// FormErrors are messages that do not belong to a single field.
	FormErrors []string
	// ActionsURL is the base URL of the instance and field endpoints. When
	// set, repeatable panels render add/remove buttons posting to
	// <ActionsURL>/instances/<id>/add and .../remove.
	ActionsURL string
	// SubmitURL replaces the form's authored action when set.
	SubmitURL string
	// Theme is the resolved theme selection: partial overrides, tokens, CSS
	// variables and asset URLs. Nil renders the built-in look.
	Theme *theme.RendererConfig
}

// InstanceActionURL returns the endpoint that applies action ("add" or
// "remove") to the instance manager id, or "" when no actions URL is set.
func (o RenderOptions) InstanceActionURL(id, action string) string {
	base := strings.TrimRight(strings.TrimSpace(o.ActionsURL), "/")
	if base == "" {
		return ""
	}
	return base + "/instances/" + id + "/" + action
}
