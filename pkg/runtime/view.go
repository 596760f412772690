package runtime

import (
	"github.com/goliatone/go-formruntime/pkg/instance"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// Component names exposed through data-cmp-is.
const (
	ComponentFormContainer   = "adaptiveFormContainer"
	ComponentPanel           = "adaptiveFormPanel"
	ComponentInstanceManager = "adaptiveFormInstanceManager"
	ComponentTextInput       = "adaptiveFormTextInput"
	ComponentNumberInput     = "adaptiveFormNumberInput"
	ComponentDateInput       = "adaptiveFormDatePicker"
	ComponentCheckbox        = "adaptiveFormCheckBox"
	ComponentImage           = "adaptiveFormImage"
	ComponentButton          = "adaptiveFormButton"
)

// View is the runtime counterpart of a model item. Its children mirror the
// item's Items one to one.
type View struct {
	model    *model.Item
	parent   *View
	children []*View
	manager  *instance.Manager
}

// ID returns the id of the underlying model item.
func (v *View) ID() string {
	if v == nil || v.model == nil {
		return ""
	}
	return v.model.ID
}

// Model returns the item the view renders.
func (v *View) Model() *model.Item {
	if v == nil {
		return nil
	}
	return v.model
}

// Parent returns the parent view, or nil for top-level views.
func (v *View) Parent() *View {
	if v == nil {
		return nil
	}
	return v.parent
}

// Children returns the child views in model order.
func (v *View) Children() []*View {
	if v == nil {
		return nil
	}
	return append([]*View(nil), v.children...)
}

// InstanceManager returns the manager owning this view: the manager itself for
// an instance-manager view, the parent's manager for a panel instance, nil
// otherwise.
func (v *View) InstanceManager() *instance.Manager {
	if v == nil {
		return nil
	}
	if v.manager != nil {
		return v.manager
	}
	if v.parent != nil && v.parent.model.FieldType == model.FieldTypeInstanceManager {
		return v.parent.manager
	}
	return nil
}

// Visible reports whether the view and all of its ancestors are visible.
func (v *View) Visible() bool {
	for cur := v; cur != nil; cur = cur.parent {
		if !cur.model.Visible {
			return false
		}
	}
	return v != nil
}

// Enabled reports whether the view and all of its ancestors are enabled.
func (v *View) Enabled() bool {
	for cur := v; cur != nil; cur = cur.parent {
		if !cur.model.Enabled {
			return false
		}
	}
	return v != nil
}

// Component returns the data-cmp-is name of the view.
func (v *View) Component() string {
	if v == nil || v.model == nil {
		return ""
	}
	return ComponentName(v.model.FieldType)
}

// ComponentName maps a field type to its component name.
func ComponentName(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypeForm:
		return ComponentFormContainer
	case model.FieldTypePanel:
		return ComponentPanel
	case model.FieldTypeInstanceManager:
		return ComponentInstanceManager
	case model.FieldTypeTextInput:
		return ComponentTextInput
	case model.FieldTypeNumberInput:
		return ComponentNumberInput
	case model.FieldTypeDateInput:
		return ComponentDateInput
	case model.FieldTypeCheckbox:
		return ComponentCheckbox
	case model.FieldTypeImage:
		return ComponentImage
	case model.FieldTypeButton:
		return ComponentButton
	default:
		return ""
	}
}
