// Package circuit proves program evaluation with Groth16.
//
// A program body is sums and products of non-negative integers, which
// maps directly onto an arithmetic circuit: numbers become constants,
// parameters become wires carrying argument values, and calls inline
// the callee body. The claimed result is the single public input, so a
// verifier learns the value and nothing else.
package circuit

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/deflang/go-deflang/ast"
	"github.com/deflang/go-deflang/parser"
)

// ProgramCircuit constrains the inlined entry body to equal Result.
// The program rides along in an unexported field, so the frontend sees
// only the public Result variable.
type ProgramCircuit struct {
	Result frontend.Variable `gnark:",public"`

	prog *parser.Program
}

// Define builds the constraint system by inlining the entry body.
func (c *ProgramCircuit) Define(api frontend.API) error {
	if c.prog == nil {
		return errors.New("circuit: no program bound")
	}
	entry, ok := c.prog.Entry()
	if !ok {
		return errors.New("circuit: program has no entry function")
	}
	wire, err := c.inline(api, entry.Body, nil, nil)
	if err != nil {
		return err
	}
	api.AssertIsEqual(wire, c.Result)
	return nil
}

// inline converts an expression to a wire. bindings maps the enclosing
// function's parameters to argument wires. live holds the chain of
// call sites currently being inlined; reaching one of them again means
// the program recurses and has no finite circuit.
func (c *ProgramCircuit) inline(api frontend.API, node ast.Node, bindings map[string]frontend.Variable, live []*ast.Call) (frontend.Variable, error) {
	switch n := node.(type) {
	case *ast.Number:
		return n.Value, nil

	case *ast.Param:
		wire, ok := bindings[n.Name]
		if !ok {
			return nil, fmt.Errorf("circuit: unbound parameter %q", n.Name)
		}
		return wire, nil

	case *ast.Sum:
		left, err := c.inline(api, n.Left, bindings, live)
		if err != nil {
			return nil, err
		}
		right, err := c.inline(api, n.Right, bindings, live)
		if err != nil {
			return nil, err
		}
		return api.Add(left, right), nil

	case *ast.Product:
		left, err := c.inline(api, n.Left, bindings, live)
		if err != nil {
			return nil, err
		}
		right, err := c.inline(api, n.Right, bindings, live)
		if err != nil {
			return nil, err
		}
		return api.Mul(left, right), nil

	case *ast.Call:
		return c.inlineCall(api, n, bindings, live)
	}
	return nil, fmt.Errorf("circuit: unknown node %T", node)
}

func (c *ProgramCircuit) inlineCall(api frontend.API, call *ast.Call, bindings map[string]frontend.Variable, live []*ast.Call) (frontend.Variable, error) {
	for _, site := range live {
		if site == call {
			return nil, fmt.Errorf("circuit: recursive call %s cannot be inlined", ast.Render(call))
		}
	}

	def, ok := c.prog.Function(call.Function)
	if !ok {
		return nil, fmt.Errorf("circuit: call to undefined function %s", call.Function)
	}
	if len(call.Args) != len(def.Params) {
		return nil, fmt.Errorf("circuit: incorrect number of arguments for %s: got %d, want %d",
			call.Function, len(call.Args), len(def.Params))
	}

	// Argument wires build in the caller's bindings; a duplicate
	// parameter name keeps the last wire, matching the evaluator.
	inner := make(map[string]frontend.Variable, len(def.Params))
	for i, name := range def.Params {
		wire, err := c.inline(api, call.Args[i], bindings, live)
		if err != nil {
			return nil, err
		}
		inner[name] = wire
	}
	return c.inline(api, def.Body, inner, append(live, call))
}
