package testsupport

import (
	"context"
	"embed"
	"io/fs"
	"testing"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// Fixture names shipped with the package.
const (
	PanelContainer = "panelcontainer.yaml"
	Prefilled      = "prefilled.yaml"
)

// FixturesFS exposes the shared definition fixtures.
func FixturesFS() fs.FS {
	sub, err := fs.Sub(fixtures, "testdata")
	if err != nil {
		return fixtures
	}
	return sub
}

// MustReadFixture returns the raw bytes of a shared fixture.
func MustReadFixture(t testing.TB, name string) []byte {
	t.Helper()

	raw, err := fs.ReadFile(FixturesFS(), name)
	if err != nil {
		t.Fatalf("read fixture %q: %v", name, err)
	}
	return raw
}

// MustLoadDefinition decodes a shared fixture.
func MustLoadDefinition(t testing.TB, name string) model.Definition {
	t.Helper()

	def, err := model.LoadFS(FixturesFS(), name)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// MustBuildForm builds a fixture with a sequential id generator so ids are
// predictable ("form-1", "panel-2", ...). The generator is returned so the
// runtime can keep using it for cloned instances.
func MustBuildForm(t testing.TB, name string, options ...model.BuilderOption) (*model.Form, model.IDGenerator) {
	t.Helper()

	ids := model.NewSequentialGenerator()
	opts := append([]model.BuilderOption{model.WithIDGenerator(ids)}, options...)
	form, err := model.NewBuilder(opts...).Build(MustLoadDefinition(t, name))
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	return form, ids
}

// MustContainer builds a fixture and wraps it in a runtime container.
func MustContainer(t testing.TB, name string, options ...model.BuilderOption) *runtime.Container {
	t.Helper()

	form, ids := MustBuildForm(t, name, options...)
	container, err := runtime.New(form, runtime.WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	return container
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
