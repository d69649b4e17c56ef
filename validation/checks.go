package validation

import (
	"fmt"
	"strings"

	"github.com/deflang/go-deflang/ast"
	"github.com/deflang/go-deflang/parser"
)

// checkEntry requires the entry function to be defined
func (v *Validator) checkEntry() {
	if _, ok := v.prog.Entry(); !ok {
		v.AddError("entry", "No entry function defined", nil,
			fmt.Sprintf("Add a line DEF %s { ... } ;", parser.EntryName))
	}
}

// checkCallSites verifies that every call targets a defined function
// with a matching parameter count. These are the same conditions the
// parser's deferred checks enforce, reported per call site.
func (v *Validator) checkCallSites() {
	for _, call := range v.prog.CallSites() {
		def, ok := v.prog.Function(call.Function)
		if !ok {
			v.AddError("call",
				fmt.Sprintf("Call %s at line %d col %d targets undefined function '%s'",
					ast.Render(call), call.Position.Line, call.Position.Col, call.Function),
				[]string{call.Function},
				"Define the function or fix the call")
			continue
		}
		if len(call.Args) != len(def.Params) {
			v.AddError("call",
				fmt.Sprintf("Call %s at line %d col %d passes %d arguments but '%s' declares %d",
					ast.Render(call), call.Position.Line, call.Position.Col,
					len(call.Args), call.Function, len(def.Params)),
				[]string{call.Function},
				"Match the argument count to the declared parameters")
		}
	}
}

// checkDuplicateDefinitions warns when a name is defined more than
// once; only the last definition is evaluated.
func (v *Validator) checkDuplicateDefinitions() {
	counts := make(map[string]int)
	for _, def := range v.prog.Definitions() {
		counts[def.Name]++
	}

	reported := make(map[string]bool)
	for _, def := range v.prog.Definitions() {
		if counts[def.Name] > 1 && !reported[def.Name] {
			reported[def.Name] = true
			v.AddWarning("function",
				fmt.Sprintf("Function '%s' is defined %d times; the last definition wins",
					def.Name, counts[def.Name]),
				[]string{def.Name},
				"Remove or rename the earlier definitions")
		}
	}
}

// checkDuplicateParams warns when a definition repeats a parameter
// name; the last argument bound to that name wins.
func (v *Validator) checkDuplicateParams() {
	for _, def := range v.prog.Definitions() {
		seen := make(map[string]bool)
		reported := make(map[string]bool)
		for _, param := range def.Params {
			if seen[param] && !reported[param] {
				reported[param] = true
				v.AddWarning("parameter",
					fmt.Sprintf("Function '%s' declares parameter '%s' more than once; the last binding wins",
						def.Name, param),
					[]string{def.Name},
					"Rename the duplicate parameters")
			}
			seen[param] = true
		}
	}
}

// checkUnusedFunctions warns about functions no call site references.
func (v *Validator) checkUnusedFunctions() {
	called := make(map[string]bool)
	for _, call := range v.prog.CallSites() {
		called[call.Function] = true
	}

	seen := make(map[string]bool)
	for _, def := range v.prog.Definitions() {
		if def.Name == parser.EntryName || seen[def.Name] {
			continue
		}
		seen[def.Name] = true
		if !called[def.Name] {
			v.AddWarning("function",
				fmt.Sprintf("Function '%s' is never called", def.Name),
				[]string{def.Name},
				"Remove it or call it from another body")
		}
	}
}

// checkCallCycles looks for cycles in the call graph of the live
// definitions. The language has no conditional, so any cycle that
// evaluation reaches diverges.
func (v *Validator) checkCallCycles() {
	graph, names := v.liveGraph()

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int)
	flagged := make(map[string]bool)
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = inStack
		stack = append(stack, name)
		for _, callee := range graph[name] {
			switch state[callee] {
			case unvisited:
				visit(callee)
			case inStack:
				start := 0
				for i, n := range stack {
					if n == callee {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), callee)
				if !flagged[callee] {
					for _, n := range cycle {
						flagged[n] = true
					}
					v.AddWarning("recursion",
						fmt.Sprintf("Call cycle %s cannot terminate if evaluated",
							strings.Join(cycle, " -> ")),
						cycle[:len(cycle)-1],
						"Break the cycle; the language has no conditional to stop recursion")
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, name := range names {
		if state[name] == unvisited {
			visit(name)
		}
	}
}

// checkReachability notes functions the entry function can never
// reach through the live call graph.
func (v *Validator) checkReachability() {
	if _, ok := v.prog.Entry(); !ok {
		return
	}
	graph, names := v.liveGraph()

	reached := map[string]bool{parser.EntryName: true}
	queue := []string{parser.EntryName}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, callee := range graph[name] {
			if !reached[callee] {
				reached[callee] = true
				queue = append(queue, callee)
			}
		}
	}

	for _, name := range names {
		if !reached[name] {
			v.AddInfo("reachability",
				fmt.Sprintf("Function '%s' is not reachable from %s", name, parser.EntryName),
				[]string{name})
		}
	}
}

// liveGraph maps each live definition to the defined functions its
// body calls, in body order, along with the live names in source
// order. Shadowed definitions and calls to undefined names are
// excluded.
func (v *Validator) liveGraph() (map[string][]string, []string) {
	graph := make(map[string][]string)
	var names []string

	for _, def := range v.prog.Definitions() {
		live, _ := v.prog.Function(def.Name)
		if live != def {
			continue // shadowed by a later definition
		}
		names = append(names, def.Name)

		var callees []string
		collectCalls(def.Body, func(call *ast.Call) {
			if _, ok := v.prog.Function(call.Function); ok {
				callees = append(callees, call.Function)
			}
		})
		graph[def.Name] = callees
	}
	return graph, names
}

// collectCalls visits every call expression in node, outermost first.
func collectCalls(node ast.Node, visit func(*ast.Call)) {
	switch n := node.(type) {
	case *ast.Sum:
		collectCalls(n.Left, visit)
		collectCalls(n.Right, visit)
	case *ast.Product:
		collectCalls(n.Left, visit)
		collectCalls(n.Right, visit)
	case *ast.Call:
		visit(n)
		for _, arg := range n.Args {
			collectCalls(arg, visit)
		}
	}
}
