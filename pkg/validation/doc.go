// Package validation checks form definitions against the embedded definition
// schema and checks the values held by a built form against the constraints of
// each field (required, numeric bounds, digit limits, date format).
package validation
