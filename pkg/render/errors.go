package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// ErrorMapping splits an error payload into field-level messages keyed by
// field id and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors resolves payload keys onto the fields of the container. A key can
// be a field id or a name path where instance indexes are segments:
// "people.1.fullName", "people[1].fullName" or "/people/1/fullName". Unknown
// keys are treated as form-level errors so messages are not lost.
func MapErrors(container *runtime.Container, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 || container == nil {
		return mapping
	}

	paths := make(map[string]string)
	collectFieldPaths(container.Children(), "", paths)
	fields := container.AllFields()

	for rawKey, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		key := strings.TrimSpace(rawKey)
		if _, ok := fields[key]; ok {
			mapping.Fields[key] = append(mapping.Fields[key], normalized...)
			continue
		}

		id, formLevel := mapErrorPath(key, paths)
		if formLevel {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[id] = append(mapping.Fields[id], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, paths map[string]string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", true
	}

	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return "", true
	}

	for end := len(segments); end > 0; end-- {
		if id, ok := paths[strings.Join(segments[:end], ".")]; ok {
			return id, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":    {},
		"payload": {},
		"data":    {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

// collectFieldPaths maps the name path of every named view to its id. Named
// panels add a segment, unnamed panels do not, instance managers add their
// name and each instance adds its index.
func collectFieldPaths(views []*runtime.View, prefix string, dest map[string]string) {
	for _, view := range views {
		item := view.Model()
		name := strings.TrimSpace(item.Name)

		switch item.FieldType {
		case model.FieldTypeInstanceManager:
			if name == "" {
				continue
			}
			path := joinPath(prefix, name)
			dest[path] = item.ID
			for idx, instance := range view.Children() {
				instancePath := joinPath(path, strconv.Itoa(idx))
				dest[instancePath] = instance.ID()
				collectFieldPaths(instance.Children(), instancePath, dest)
			}
		case model.FieldTypePanel:
			path := prefix
			if name != "" {
				path = joinPath(prefix, name)
				dest[path] = item.ID
			}
			collectFieldPaths(view.Children(), path, dest)
		default:
			if name != "" {
				dest[joinPath(prefix, name)] = item.ID
			}
		}
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
