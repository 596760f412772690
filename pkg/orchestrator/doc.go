// Package orchestrator wires the source → schema check → decode → transform →
// build → runtime → renderer pipeline behind a single entry point. Callers that
// only need a live runtime use Load; callers that want rendered bytes use
// Generate.
package orchestrator
