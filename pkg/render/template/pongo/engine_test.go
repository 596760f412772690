package pongo_test

import (
	"testing"
	"testing/fstest"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formruntime/pkg/render/template/pongo"
)

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tmpl":    {Data: []byte("Hello {{ name }}!")},
		"attrs.tmpl":    {Data: []byte(`<div data-cmp-visible="{{ visible|boolattr }}" data-cmp-enabled="{{ enabled|boolattr }}">{{ body|safe }}{{ text }}</div>`)},
		"describe.tmpl": {Data: []byte(`{% with text=description|sanitize:policy %}{% if text %}[{{ text }}]{% else %}none{% endif %}{% endwith %}`)},
	}
	engine, err := pongo.New(files)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	for i := 0; i < 2; i++ {
		result, err := engine.Render("hello.tmpl", map[string]any{"name": "Ada"})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if result != "Hello Ada!" {
			t.Fatalf("unexpected output %q", result)
		}
	}

	if _, err := engine.Render("missing.tmpl", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func TestEngine_BoolAttrAndEscaping(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	result, err := engine.Render("attrs.tmpl", map[string]any{
		"visible": true,
		"enabled": false,
		"body":    "<b>ok</b>",
		"text":    "<i>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<div data-cmp-visible="true" data-cmp-enabled="false"><b>ok</b>&lt;i&gt;</div>`
	if result != want {
		t.Fatalf("unexpected output\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_SanitizeFilter(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	policy := bluemonday.UGCPolicy()

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{
			name: "allowed markup survives",
			data: map[string]any{"description": " <b>bold</b><script>alert(1)</script> ", "policy": policy},
			want: "[<b>bold</b>]",
		},
		{
			name: "markup stripped to nothing",
			data: map[string]any{"description": "<script>alert(1)</script>", "policy": policy},
			want: "none",
		},
		{
			name: "no policy",
			data: map[string]any{"description": "<b>bold</b>"},
			want: "none",
		},
		{
			name: "blank",
			data: map[string]any{"description": "  ", "policy": policy},
			want: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := engine.Render("describe.tmpl", tt.data)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNew_RequiresFS(t *testing.T) {
	t.Parallel()

	if _, err := pongo.New(nil); err == nil {
		t.Fatalf("expected error without templates")
	}
}
