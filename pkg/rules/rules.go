// Package rules defines how visibleWhen and enabledWhen expressions attached
// to form items are evaluated. The runtime re-evaluates every rule after a
// value changes or an instance is added or removed.
package rules

// Evaluator decides whether a rule holds for the given context. fieldPath is
// the name of the item owning the rule and is only used in error messages.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Compiler is implemented by evaluators that can check a rule without
// evaluating it. The runtime uses it to reject malformed rules at load time,
// including rules inside repeatable templates that have no instance yet.
type Compiler interface {
	Compile(rule string) error
}

// Context provides the inputs of an evaluation. Values is the form data
// (Container.Data). Scope holds the data of the enclosing repeatable instance
// and is consulted first, so rules inside an instance can refer to their
// siblings by name. Extras carries caller supplied values such as feature
// flags, addressed with the "extras." prefix.
type Context struct {
	Values map[string]any
	Scope  map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
