package eval

import "fmt"

// EvalError reports a failure while evaluating an expression. Line and
// Col are zero when the failure has no single source position.
type EvalError struct {
	Message string
	Line    int
	Col     int
}

func (e *EvalError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("eval: %s", e.Message)
	}
	return fmt.Sprintf("eval: %s at line %d col %d", e.Message, e.Line, e.Col)
}

// RecursionError reports a call expression that began evaluating again
// while its own evaluation was still in progress. The language has no
// conditionals, so such a call can never terminate.
type RecursionError struct {
	Function string
	Call     string
	Line     int
	Col      int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("eval: recursion detected at call %s (line %d col %d)", e.Call, e.Line, e.Col)
}
