package model

import "errors"

var (
	// ErrInvalidDefinition is wrapped by every structural error the builder
	// reports while converting a Definition into a Form.
	ErrInvalidDefinition = errors.New("model: invalid definition")
)
