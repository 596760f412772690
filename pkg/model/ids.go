package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces the ids assigned to form items.
type IDGenerator interface {
	NewID(fieldType FieldType) string
}

// IDGeneratorFunc adapts a function into an IDGenerator.
type IDGeneratorFunc func(FieldType) string

// NewID calls the underlying function.
func (fn IDGeneratorFunc) NewID(fieldType FieldType) string {
	return fn(fieldType)
}

// UUIDGenerator returns the default generator: "<prefix>-<10 hex chars>" where
// the hex is taken from a random UUID.
func UUIDGenerator() IDGenerator {
	return IDGeneratorFunc(func(fieldType FieldType) string {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		return idPrefix(fieldType) + "-" + raw[:10]
	})
}

// SequentialGenerator yields predictable ids ("panel-1", "text-input-2", ...)
// from a single counter shared across field types.
type SequentialGenerator struct {
	mu   sync.Mutex
	next int
}

// NewSequentialGenerator constructs a SequentialGenerator starting at 1.
func NewSequentialGenerator() *SequentialGenerator {
	return &SequentialGenerator{}
}

// NewID implements IDGenerator.
func (g *SequentialGenerator) NewID(fieldType FieldType) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", idPrefix(fieldType), g.next)
}

func idPrefix(fieldType FieldType) string {
	prefix := strings.TrimSpace(string(fieldType))
	if prefix == "" {
		return "item"
	}
	return prefix
}
