package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SourceKind enumerates where a definition can be read from.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindFS    SourceKind = "fs"
	SourceKindBytes SourceKind = "bytes"
)

// Source identifies a definition document and knows how to read it.
type Source interface {
	Kind() SourceKind
	Location() string
	Read(ctx context.Context) ([]byte, error)
}

type fileSource struct {
	path string
}

func (s fileSource) Kind() SourceKind { return SourceKindFile }

func (s fileSource) Location() string { return s.path }

func (s fileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: read %s: %w", s.path, err)
	}
	return raw, nil
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	fsys fs.FS
	name string
}

func (s fsSource) Kind() SourceKind { return SourceKindFS }

func (s fsSource) Location() string { return s.name }

func (s fsSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.fsys == nil {
		return nil, errors.New("orchestrator: filesystem is nil")
	}
	raw, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: read %s: %w", s.name, err)
	}
	return raw, nil
}

// SourceFromFS returns a Source identifying a file inside fsys.
func SourceFromFS(fsys fs.FS, name string) Source {
	return fsSource{fsys: fsys, name: name}
}

type bytesSource struct {
	name string
	raw  []byte
}

func (s bytesSource) Kind() SourceKind { return SourceKindBytes }

func (s bytesSource) Location() string { return s.name }

func (s bytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), s.raw...), nil
}

// SourceFromBytes wraps an in-memory document. name is only used in errors and
// by FormName.
func SourceFromBytes(name string, raw []byte) Source {
	return bytesSource{name: name, raw: append([]byte(nil), raw...)}
}

// FormName derives the form name from a source location: the base name
// without its extension ("forms/people.yaml" → "people").
func FormName(src Source) string {
	if src == nil {
		return ""
	}
	base := path.Base(filepath.ToSlash(src.Location()))
	return strings.TrimSuffix(base, path.Ext(base))
}

// IsDefinitionFile reports whether name has a definition extension.
func IsDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
