package parser

import (
	"fmt"
	"strings"

	"github.com/deflang/go-deflang/ast"
)

// EntryName is the function name evaluation starts from. It is a
// keyword in the surface syntax, so no body expression can call it.
const EntryName = "MAIN"

// Config carries the parse-time limits.
type Config struct {
	// MaxArguments caps the argument count of a single call.
	MaxArguments int
}

// DefaultConfig returns the default parser configuration.
func DefaultConfig() *Config {
	return &Config{MaxArguments: 1}
}

// ParseError reports a syntax or whole-program error. Line and Col are
// zero when the error has no single source position, such as a missing
// entry function.
type ParseError struct {
	Message string
	Line    int
	Col     int
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parser: %s", e.Message)
	}
	return fmt.Sprintf("parser: %s at line %d col %d", e.Message, e.Line, e.Col)
}

// FunctionDefinition is one parsed DEF line.
type FunctionDefinition struct {
	Name       string
	Params     []string
	Body       ast.Node
	SourceLine int
}

// Arity returns the declared parameter count.
func (f *FunctionDefinition) Arity() int {
	return len(f.Params)
}

// Render returns the canonical textual form NAME(params):=body, with
// parameters space separated.
func (f *FunctionDefinition) Render() string {
	return fmt.Sprintf("%s(%s):=%s", f.Name, strings.Join(f.Params, " "), ast.Render(f.Body))
}

// Program is the parsed function table plus the registry of every call
// site encountered, in registration order.
type Program struct {
	functions map[string]*FunctionDefinition
	defs      []*FunctionDefinition
	callSites []*ast.Call
}

func newProgram() *Program {
	return &Program{functions: make(map[string]*FunctionDefinition)}
}

// add records a definition. A duplicate name replaces the earlier
// entry in the lookup table; both stay in the source-order listing.
func (p *Program) add(def *FunctionDefinition) {
	p.functions[def.Name] = def
	p.defs = append(p.defs, def)
}

// Function looks up a definition by name. A name defined twice
// resolves to the later definition.
func (p *Program) Function(name string) (*FunctionDefinition, bool) {
	def, ok := p.functions[name]
	return def, ok
}

// Entry returns the entry function definition, if present.
func (p *Program) Entry() (*FunctionDefinition, bool) {
	return p.Function(EntryName)
}

// Definitions returns every parsed definition in source order,
// including ones later shadowed by a duplicate name.
func (p *Program) Definitions() []*FunctionDefinition {
	return p.defs
}

// CallSites returns every call expression parsed anywhere in the
// program, in registration order. A call registers once its argument
// list has been parsed, so nested calls register before the call that
// contains them.
func (p *Program) CallSites() []*ast.Call {
	return p.callSites
}

// Render returns the canonical form of the whole program, one
// definition per line in source order.
func (p *Program) Render() string {
	var b strings.Builder
	for _, def := range p.defs {
		b.WriteString(def.Render())
		b.WriteByte('\n')
	}
	return b.String()
}

// Check runs the whole-program checks that are deferred until every
// definition has been read: the entry function must exist, and every
// call site must name a defined function with a matching parameter
// count. The first failure is returned.
func (p *Program) Check() error {
	if _, ok := p.functions[EntryName]; !ok {
		return &ParseError{Message: "no entry function"}
	}
	for _, call := range p.callSites {
		def, ok := p.functions[call.Function]
		if !ok || len(call.Args) != len(def.Params) {
			return &ParseError{
				Message: fmt.Sprintf("call to non-existent function %s", ast.Render(call)),
				Line:    call.Position.Line,
				Col:     call.Position.Col,
			}
		}
	}
	return nil
}
