// Package render defines the renderer contract shared by the output formats
// of a form runtime, the registry used to select them and the helpers that
// map validation payloads onto field ids.
package render
