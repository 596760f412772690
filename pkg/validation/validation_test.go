package validation_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/testsupport"
	"github.com/goliatone/go-formruntime/pkg/validation"
)

func TestValidateDefinition_Fixtures(t *testing.T) {
	t.Parallel()

	for _, name := range []string{testsupport.PanelContainer, testsupport.Prefilled} {
		result := validation.ValidateDefinition(testsupport.MustReadFixture(t, name))
		if !result.Valid {
			t.Fatalf("%s: expected valid definition, got %#v", name, result.Issues)
		}
	}
}

func TestValidateDefinition_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{
			name: "unknown field type",
			raw: `
items:
  - name: x
    fieldType: slider`,
			field: "items.0.fieldType",
		},
		{
			name: "repeatable input",
			raw: `
items:
  - name: x
    fieldType: text-input
    repeatable: true`,
			field: "items.0.fieldType",
		},
		{
			name: "negative min occur",
			raw: `
items:
  - name: people
    fieldType: panel
    repeatable: true
    minOccur: -2`,
			field: "items.0.minOccur",
		},
		{
			name: "nested wrong type",
			raw: `{"items":[{"fieldType":"panel","items":[{"fieldType":"checkbox","visible":"yes"}]}]}`,
			field: "items.0.items.0.visible",
		},
	}

	for _, tc := range cases {
		result := validation.ValidateDefinition([]byte(tc.raw))
		if result.Valid {
			t.Fatalf("%s: expected invalid definition", tc.name)
		}
		found := false
		for _, issue := range result.Issues {
			if issue.Field == tc.field {
				found = true
				if issue.Message == "" {
					t.Fatalf("%s: issue without message", tc.name)
				}
			}
		}
		if !found {
			t.Fatalf("%s: expected an issue on %q, got %#v", tc.name, tc.field, result.Issues)
		}
	}
}

func TestValidateDefinition_RootIssues(t *testing.T) {
	t.Parallel()

	result := validation.ValidateDefinition([]byte("title: t\ncolour: red\n"))
	if result.Valid || len(result.Issues) == 0 {
		t.Fatalf("expected unknown key and missing items issues")
	}
	for _, issue := range result.Issues {
		if issue.Field != "" || issue.Path != "#" {
			t.Fatalf("expected root issue, got %#v", issue)
		}
	}

	if result := validation.ValidateDefinition([]byte("items: [")); result.Valid {
		t.Fatalf("expected parse failure")
	}
	if result := validation.ValidateDefinition(nil); result.Valid {
		t.Fatalf("expected empty document failure")
	}
}

func TestValidateValues_RequiredFields(t *testing.T) {
	t.Parallel()

	form, _ := testsupport.MustBuildForm(t, testsupport.PanelContainer)

	result := validation.ValidateValues(form)
	if result.Valid {
		t.Fatalf("expected required full names to fail")
	}
	want := map[string][]string{
		"text-input-8":  {"This field is required."},
		"text-input-11": {"This field is required."},
		"text-input-14": {"This field is required."},
		"text-input-17": {"This field is required."},
	}
	if diff := cmp.Diff(want, result.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if result.Issues[0].Path != "fullName" {
		t.Fatalf("unexpected path %q", result.Issues[0].Path)
	}

	form.Element("panel-7").Visible = false
	form.Element("text-input-11").Value = "Ada"
	form.Element("text-input-14").Value = "Grace"
	form.Element("text-input-17").Value = "  "
	result = validation.ValidateValues(form)
	if diff := cmp.Diff(map[string][]string{"text-input-17": {"This field is required."}}, result.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckValue_Numbers(t *testing.T) {
	t.Parallel()

	form, _ := testsupport.MustBuildForm(t, testsupport.PanelContainer)
	age := form.Element("number-input-9")

	cases := []struct {
		value any
		want  []string
	}{
		{value: 42, want: nil},
		{value: "42", want: nil},
		{value: 0.0, want: nil},
		{value: -1, want: []string{"Value must be greater than or equal to 0."}},
		{value: 150, want: []string{"Value must be less than 150."}},
		{value: 12.5, want: []string{"Value must have at most 0 digits after the decimal point."}},
		{value: 1000, want: []string{
			"Value must be less than 150.",
			"Value must have at most 3 digits before the decimal point.",
		}},
		{value: "abc", want: []string{"Please enter a valid number."}},
		{value: nil, want: nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, validation.CheckValue(age, tc.value)); diff != "" {
			t.Fatalf("value %v mismatch (-want +got):\n%s", tc.value, diff)
		}
	}
}

func TestCheckValue_DatesAndCheckboxes(t *testing.T) {
	t.Parallel()

	date := &model.Item{ID: "d", FieldType: model.FieldTypeDateInput, Visible: true}
	if got := validation.CheckValue(date, "2024-02-29"); got != nil {
		t.Fatalf("expected valid leap day, got %v", got)
	}
	if got := validation.CheckValue(date, "2023-02-29"); len(got) != 1 {
		t.Fatalf("expected invalid date, got %v", got)
	}

	box := &model.Item{ID: "c", FieldType: model.FieldTypeCheckbox, Visible: true, Required: true}
	if got := validation.CheckValue(box, false); len(got) != 1 {
		t.Fatalf("unchecked required checkbox must fail, got %v", got)
	}
	if got := validation.CheckValue(box, true); got != nil {
		t.Fatalf("checked checkbox must pass, got %v", got)
	}

	panel := &model.Item{ID: "p", FieldType: model.FieldTypePanel, Required: true}
	if got := validation.CheckValue(panel, nil); got != nil {
		t.Fatalf("panels hold no value, got %v", got)
	}
}

func TestCheckValue_ConstraintTags(t *testing.T) {
	t.Parallel()

	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }
	amount := &model.Item{
		ID:        "amount",
		FieldType: model.FieldTypeNumberInput,
		Visible:   true,
		Required:  true,
		Number: &model.NumberConstraints{
			ExclusiveMinimum: f(-2.5),
			Maximum:          f(99.5),
			LeadDigits:       n(2),
			FracDigits:       n(1),
		},
	}

	cases := []struct {
		value any
		want  []string
	}{
		{value: "  ", want: []string{"This field is required."}},
		{value: nil, want: []string{"This field is required."}},
		{value: 0, want: nil},
		{value: "-2.4", want: nil},
		{value: -2.5, want: []string{"Value must be greater than -2.5."}},
		{value: 99.5, want: nil},
		{value: 99.55, want: []string{
			"Value must be less than or equal to 99.5.",
			"Value must have at most 1 digits after the decimal point.",
		}},
		{value: -120, want: []string{
			"Value must be greater than -2.5.",
			"Value must have at most 2 digits before the decimal point.",
		}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, validation.CheckValue(amount, tc.value)); diff != "" {
			t.Fatalf("value %v mismatch (-want +got):\n%s", tc.value, diff)
		}
	}

	optional := &model.Item{ID: "note", FieldType: model.FieldTypeTextInput, Visible: true}
	if got := validation.CheckValue(optional, "   "); got != nil {
		t.Fatalf("blank optional field must pass, got %v", got)
	}
	text := &model.Item{ID: "flag", FieldType: model.FieldTypeTextInput, Visible: true, Required: true}
	if got := validation.CheckValue(text, false); got != nil {
		t.Fatalf("non checkbox bool counts as set, got %v", got)
	}
	date := &model.Item{ID: "when", FieldType: model.FieldTypeDateInput, Visible: true}
	if got := validation.CheckValue(date, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)); got != nil {
		t.Fatalf("time values must pass, got %v", got)
	}
	if diff := cmp.Diff([]string{"Please enter a valid date (YYYY-MM-DD)."}, validation.CheckValue(date, "15/01/2024")); diff != "" {
		t.Fatalf("date mismatch (-want +got):\n%s", diff)
	}
}
