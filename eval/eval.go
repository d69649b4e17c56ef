// Package eval evaluates parsed programs by structural recursion over
// their bodies. Arithmetic runs on wrapping int64 by default or on
// checked 256-bit integers in exact mode. A live-stack guard turns
// re-entry of a call expression into a RecursionError before any
// unbounded descent happens.
package eval

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/deflang/go-deflang/ast"
	"github.com/deflang/go-deflang/parser"
	"github.com/deflang/go-deflang/trace"
)

// Value is an evaluation result. It holds an int64 under machine
// arithmetic or a *uint256.Int under exact arithmetic.
type Value any

// Tracer receives call activity while an evaluation runs. Sequence
// numbers are assigned by the tracer, not the evaluator.
type Tracer interface {
	Record(ev trace.Event)
}

// Options configures an evaluation.
type Options struct {
	// Exact selects checked 256-bit arithmetic instead of wrapping
	// int64 arithmetic.
	Exact bool
	// Tracer, when set, receives call, return, and error events.
	Tracer Tracer
}

// Context is the state of one evaluation: the program, the arithmetic
// mode, and the stack of call expressions currently being evaluated.
// A Context runs one evaluation at a time.
type Context struct {
	prog   *parser.Program
	stack  []*ast.Call
	exact  bool
	tracer Tracer
}

// NewContext creates an evaluation context for prog. A nil opts
// selects machine arithmetic with no tracer.
func NewContext(prog *parser.Program, opts *Options) *Context {
	c := &Context{prog: prog}
	if opts != nil {
		c.exact = opts.Exact
		c.tracer = opts.Tracer
	}
	return c
}

// Run evaluates the entry function of prog with no arguments.
func Run(prog *parser.Program, opts *Options) (Value, error) {
	return NewContext(prog, opts).Invoke(parser.EntryName, nil)
}

// Invoke evaluates the named function with the given argument values.
// Arguments bind to parameters in declaration order, so a duplicated
// parameter name ends up bound to its last argument.
func (c *Context) Invoke(name string, args []Value) (Value, error) {
	def, ok := c.prog.Function(name)
	if !ok {
		return nil, &EvalError{Message: fmt.Sprintf("call to undefined function %s", name)}
	}
	if len(args) != len(def.Params) {
		return nil, &EvalError{
			Message: fmt.Sprintf("incorrect number of arguments for %s: got %d, want %d",
				name, len(args), len(def.Params)),
		}
	}

	binding := make(map[string]Value, len(def.Params))
	for i, param := range def.Params {
		binding[param] = args[i]
	}
	return c.eval(def.Body, binding)
}

func (c *Context) eval(node ast.Node, binding map[string]Value) (Value, error) {
	switch n := node.(type) {
	case *ast.Number:
		if c.exact {
			return uint256.NewInt(uint64(n.Value)), nil
		}
		return n.Value, nil

	case *ast.Param:
		val, ok := binding[n.Name]
		if !ok {
			return nil, &EvalError{
				Message: fmt.Sprintf("unbound parameter %q", n.Name),
				Line:    n.Position.Line,
				Col:     n.Position.Col,
			}
		}
		return val, nil

	case *ast.Sum:
		left, err := c.eval(n.Left, binding)
		if err != nil {
			return nil, err
		}
		right, err := c.eval(n.Right, binding)
		if err != nil {
			return nil, err
		}
		return c.add(left, right, n.Position)

	case *ast.Product:
		left, err := c.eval(n.Left, binding)
		if err != nil {
			return nil, err
		}
		right, err := c.eval(n.Right, binding)
		if err != nil {
			return nil, err
		}
		return c.mul(left, right, n.Position)

	case *ast.Call:
		return c.evalCall(n, binding)

	default:
		return nil, &EvalError{Message: fmt.Sprintf("unknown node type %T", node)}
	}
}

// evalCall guards against re-entering a call expression that is still
// being evaluated, then evaluates the arguments left to right and
// invokes the callee. The stack pop is deferred so the stack is empty
// after a failed evaluation too.
func (c *Context) evalCall(call *ast.Call, binding map[string]Value) (Value, error) {
	for _, live := range c.stack {
		if live == call {
			return nil, &RecursionError{
				Function: call.Function,
				Call:     ast.Render(call),
				Line:     call.Position.Line,
				Col:      call.Position.Col,
			}
		}
	}

	c.stack = append(c.stack, call)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	c.trace(trace.KindCall, call, "")

	args := make([]Value, len(call.Args))
	for i, arg := range call.Args {
		val, err := c.eval(arg, binding)
		if err != nil {
			c.trace(trace.KindError, call, err.Error())
			return nil, err
		}
		args[i] = val
	}

	result, err := c.Invoke(call.Function, args)
	if err != nil {
		c.trace(trace.KindError, call, err.Error())
		return nil, err
	}
	c.trace(trace.KindReturn, call, Format(result))
	return result, nil
}

func (c *Context) trace(kind trace.Kind, call *ast.Call, value string) {
	if c.tracer == nil {
		return
	}
	c.tracer.Record(trace.Event{
		Kind:     kind,
		Function: call.Function,
		Call:     ast.Render(call),
		Line:     call.Position.Line,
		Col:      call.Position.Col,
		Value:    value,
		Depth:    len(c.stack),
	})
}

func (c *Context) add(left, right Value, pos ast.Pos) (Value, error) {
	if isU256(left) || isU256(right) {
		l, lok := toU256(left)
		r, rok := toU256(right)
		if !lok || !rok {
			return nil, &EvalError{Message: "arithmetic operands must be numeric", Line: pos.Line, Col: pos.Col}
		}
		sum, overflow := new(uint256.Int).AddOverflow(l, r)
		if overflow {
			return nil, &EvalError{Message: "arithmetic overflow", Line: pos.Line, Col: pos.Col}
		}
		return sum, nil
	}

	l, lok := toInt64(left)
	r, rok := toInt64(right)
	if !lok || !rok {
		return nil, &EvalError{Message: "arithmetic operands must be numeric", Line: pos.Line, Col: pos.Col}
	}
	return l + r, nil
}

func (c *Context) mul(left, right Value, pos ast.Pos) (Value, error) {
	if isU256(left) || isU256(right) {
		l, lok := toU256(left)
		r, rok := toU256(right)
		if !lok || !rok {
			return nil, &EvalError{Message: "arithmetic operands must be numeric", Line: pos.Line, Col: pos.Col}
		}
		product, overflow := new(uint256.Int).MulOverflow(l, r)
		if overflow {
			return nil, &EvalError{Message: "arithmetic overflow", Line: pos.Line, Col: pos.Col}
		}
		return product, nil
	}

	l, lok := toInt64(left)
	r, rok := toInt64(right)
	if !lok || !rok {
		return nil, &EvalError{Message: "arithmetic operands must be numeric", Line: pos.Line, Col: pos.Col}
	}
	return l * r, nil
}

// Format renders a value as decimal text.
func Format(v Value) string {
	switch val := v.(type) {
	case int64:
		return strconv.FormatInt(val, 10)
	case *uint256.Int:
		return val.Dec()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isU256(v Value) bool {
	_, ok := v.(*uint256.Int)
	return ok
}

func toU256(v Value) (*uint256.Int, bool) {
	switch val := v.(type) {
	case *uint256.Int:
		return val, true
	case int64:
		if val < 0 {
			return nil, false
		}
		return uint256.NewInt(uint64(val)), true
	default:
		return nil, false
	}
}

func toInt64(v Value) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case *uint256.Int:
		if val.IsUint64() {
			return int64(val.Uint64()), true
		}
		return 0, false
	default:
		return 0, false
	}
}
