// Package runtime builds and maintains the view tree of a form. Each model
// item gets a View; each instance-manager item gets an instance.Manager whose
// view factory attaches new instance views to the manager's view and indexes
// them by id. The container exposes the same lookups the browser runtime does
// (all fields by id, element by id, instance manager of a panel) plus
// property setters that dispatch AF_ModelChanged.
package runtime
