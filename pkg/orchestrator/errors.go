package orchestrator

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/validation"
)

// DefinitionError reports a definition rejected by the schema check. It
// unwraps to model.ErrInvalidDefinition.
type DefinitionError struct {
	Location string
	Result   validation.Result
}

func (e *DefinitionError) Error() string {
	parts := make([]string, 0, len(e.Result.Issues))
	for _, issue := range e.Result.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("orchestrator: invalid definition %s: %s", e.Location, strings.Join(parts, "; "))
}

func (e *DefinitionError) Unwrap() error {
	return model.ErrInvalidDefinition
}
