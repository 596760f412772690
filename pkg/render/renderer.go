package render

import (
	"context"

	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// Renderer converts the live state of a runtime container into a byte
// representation (HTML, JSON, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, container *runtime.Container, options RenderOptions) ([]byte, error)
}
