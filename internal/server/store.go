package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/orchestrator"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// ErrFormNotFound is returned for names with no loaded definition.
var ErrFormNotFound = errors.New("server: form not found")

// Form is one loaded definition and its live runtime. The runtime is single
// threaded, so every access goes through Do.
type Form struct {
	name     string
	path     string
	loadedAt time.Time

	mu         sync.Mutex
	definition model.Definition
	container  *runtime.Container
}

// Name returns the form name derived from its file name.
func (f *Form) Name() string { return f.name }

// Path returns the definition file the form was loaded from.
func (f *Form) Path() string { return f.path }

// LoadedAt reports when the definition was last read.
func (f *Form) LoadedAt() time.Time { return f.loadedAt }

// Do runs fn with exclusive access to the runtime.
func (f *Form) Do(fn func(*runtime.Container) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.container)
}

// Store keeps the forms of a definitions directory.
type Store struct {
	dir string
	gen *orchestrator.Orchestrator

	mu    sync.RWMutex
	forms map[string]*Form
}

// NewStore creates an empty store for dir. Definitions are built with gen.
func NewStore(dir string, gen *orchestrator.Orchestrator) *Store {
	if gen == nil {
		gen = orchestrator.New()
	}
	return &Store{
		dir:   dir,
		gen:   gen,
		forms: make(map[string]*Form),
	}
}

// Dir returns the watched definitions directory.
func (s *Store) Dir() string { return s.dir }

// LoadAll loads every definition file in the directory. Files that fail to
// load are reported together; the others stay available.
func (s *Store) LoadAll(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("server: read definitions dir: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !orchestrator.IsDefinitionFile(entry.Name()) {
			continue
		}
		if _, err := s.LoadFile(ctx, filepath.Join(s.dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadFile (re)loads a single definition and replaces the runtime of the
// form with the same name.
func (s *Store) LoadFile(ctx context.Context, path string) (*Form, error) {
	src := orchestrator.SourceFromFile(path)
	def, err := s.gen.Definition(ctx, orchestrator.Request{Source: src})
	if err != nil {
		return nil, err
	}
	container, err := s.gen.Build(def)
	if err != nil {
		return nil, err
	}

	form := &Form{
		name:       orchestrator.FormName(src),
		path:       src.Location(),
		loadedAt:   time.Now(),
		definition: def,
		container:  container,
	}

	s.mu.Lock()
	s.forms[form.name] = form
	s.mu.Unlock()
	return form, nil
}

// Remove drops the form loaded from path, if any.
func (s *Store) Remove(path string) (string, bool) {
	name := orchestrator.FormName(orchestrator.SourceFromFile(path))

	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[name]
	if !ok || form.path != filepath.Clean(path) {
		return name, false
	}
	delete(s.forms, name)
	return name, true
}

// Get returns the named form.
func (s *Store) Get(name string) (*Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	form, ok := s.forms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, name)
	}
	return form, nil
}

// Names returns the sorted form names.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.forms))
	for name := range s.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded forms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.forms)
}

// Reset rebuilds the runtime of a form from its last loaded definition,
// discarding instance and value changes.
func (s *Store) Reset(name string) error {
	form, err := s.Get(name)
	if err != nil {
		return err
	}

	form.mu.Lock()
	defer form.mu.Unlock()
	container, err := s.gen.Build(form.definition)
	if err != nil {
		return err
	}
	form.container = container
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
