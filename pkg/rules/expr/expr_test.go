package expr

import (
	"testing"

	"github.com/goliatone/go-formruntime/pkg/rules"
)

func TestEvaluator_Rules(t *testing.T) {
	t.Parallel()

	ctx := rules.Context{
		Values: map[string]any{
			"newsletter": true,
			"contact":    map[string]any{"email": "ada@example.com", "country": "NZ"},
			"people": []any{
				map[string]any{"fullName": "Ada", "age": 36.0},
				map[string]any{"fullName": "Alan", "age": "17"},
			},
			"cta.headline": "Hello",
			"quote":        `a"b`,
			"motto":        `it's "fine"`,
		},
		Scope:  map[string]any{"age": 12},
		Extras: map[string]any{"beta": "true"},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{rule: "", want: true},
		{rule: "newsletter", want: true},
		{rule: "!newsletter", want: false},
		{rule: "newsletter == true", want: true},
		{rule: "newsletter != false", want: true},
		{rule: `contact.country == "NZ"`, want: true},
		{rule: `contact.country == 'NZ'`, want: true},
		{rule: "contact.country == NZ", want: true},
		{rule: `contact.country != "NZ"`, want: false},
		{rule: "contact.phone == null", want: true},
		{rule: "contact.email != null", want: true},
		{rule: "people.0.age >= 18", want: true},
		{rule: "people.1.age >= 18", want: false},
		{rule: "people.1.age == 17", want: true},
		{rule: "people.5.age < 100", want: false},
		{rule: "age < 13", want: true},
		{rule: "age > 13 || people.0.fullName == Ada", want: true},
		{rule: "(age > 13 || newsletter) && !extras.beta", want: false},
		{rule: "extras.beta", want: true},
		{rule: `cta.headline == "Hello"`, want: true},
		{rule: `quote == 'a\"b'`, want: true},
		{rule: `quote == 'a"b'`, want: true},
		{rule: `motto == 'it\'s "fine"'`, want: true},
		{rule: `motto == "it's \"fine\""`, want: true},
		{rule: "missing", want: false},
		{rule: "missing != 3", want: true},
	}

	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval("field", tc.rule, ctx)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluator_CompileErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		"a = 1",
		"a & b",
		"a | b",
		`a == "open`,
		"(a == 1",
		"a == 1)",
		"a >= true",
		`a < "x"`,
		"a ==",
		"== 1",
		"a && ",
	} {
		if err := eval.Compile(rule); err == nil {
			t.Fatalf("%q: expected compile error", rule)
		}
		if _, err := eval.Eval("field", rule, rules.Context{}); err == nil {
			t.Fatalf("%q: expected eval error", rule)
		}
	}
	if err := eval.Compile("  "); err != nil {
		t.Fatalf("blank rule must compile: %v", err)
	}
}
