package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode reads a YAML or JSON definition. JSON is accepted because it is a
// subset of YAML.
func Decode(r io.Reader) (Definition, error) {
	if r == nil {
		return Definition{}, errors.New("model: definition reader is nil")
	}
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return Definition{}, fmt.Errorf("%w: empty document", ErrInvalidDefinition)
		}
		return Definition{}, fmt.Errorf("model: decode definition: %w", err)
	}
	return def, nil
}

// DecodeBytes decodes a definition held in memory.
func DecodeBytes(raw []byte) (Definition, error) {
	return Decode(bytes.NewReader(raw))
}

// LoadFile decodes the definition stored at path.
func LoadFile(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("model: open definition: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// LoadFS decodes the named definition from fsys.
func LoadFS(fsys fs.FS, name string) (Definition, error) {
	if fsys == nil {
		return Definition{}, errors.New("model: filesystem is nil")
	}
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Definition{}, fmt.Errorf("model: read definition %q: %w", name, err)
	}
	return DecodeBytes(raw)
}
