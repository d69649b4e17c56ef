package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/deflang/go-deflang/ast"
	"github.com/deflang/go-deflang/lexer"
)

func mustParse(t *testing.T, input string, cfg *Config) *Program {
	t.Helper()
	prog, err := Parse(input, cfg)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog
}

func parseErr(t *testing.T, input string, cfg *Config) *ParseError {
	t.Helper()
	_, err := Parse(input, cfg)
	if err == nil {
		t.Fatal("expected parse error, got none")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	return perr
}

func TestParse_SingleDefinition(t *testing.T) {
	prog := mustParse(t, "DEF MAIN { 1+2 } ;\n", nil)

	entry, ok := prog.Entry()
	if !ok {
		t.Fatal("entry function missing")
	}
	if entry.Name != EntryName {
		t.Errorf("entry name = %q, want %q", entry.Name, EntryName)
	}
	if len(entry.Params) != 0 {
		t.Errorf("entry has %d params, want 0", len(entry.Params))
	}
	if entry.SourceLine != 1 {
		t.Errorf("entry source line = %d, want 1", entry.SourceLine)
	}

	sum, ok := entry.Body.(*ast.Sum)
	if !ok {
		t.Fatalf("body is %T, want *ast.Sum", entry.Body)
	}
	left, ok := sum.Left.(*ast.Number)
	if !ok || left.Value != 1 {
		t.Errorf("left operand = %v, want number 1", sum.Left)
	}
	right, ok := sum.Right.(*ast.Number)
	if !ok || right.Value != 2 {
		t.Errorf("right operand = %v, want number 2", sum.Right)
	}
}

func TestParse_Precedence(t *testing.T) {
	prog := mustParse(t, "DEF MAIN { 2+3*4 } ;\n", nil)
	entry, _ := prog.Entry()

	// '*' binds tighter, so the root is the sum.
	sum, ok := entry.Body.(*ast.Sum)
	if !ok {
		t.Fatalf("root is %T, want *ast.Sum", entry.Body)
	}
	if _, ok := sum.Right.(*ast.Product); !ok {
		t.Fatalf("right of sum is %T, want *ast.Product", sum.Right)
	}
	if got := ast.Render(entry.Body); got != "2+3*4" {
		t.Errorf("render = %q, want %q", got, "2+3*4")
	}
}

func TestParse_LeftAssociativity(t *testing.T) {
	prog := mustParse(t, "DEF MAIN { 10+2+3 } ;\n", nil)
	entry, _ := prog.Entry()

	// 10+2+3 folds to Sum(Sum(10,2),3).
	outer, ok := entry.Body.(*ast.Sum)
	if !ok {
		t.Fatalf("root is %T, want *ast.Sum", entry.Body)
	}
	inner, ok := outer.Left.(*ast.Sum)
	if !ok {
		t.Fatalf("left of root is %T, want *ast.Sum", outer.Left)
	}
	if n, ok := outer.Right.(*ast.Number); !ok || n.Value != 3 {
		t.Errorf("right of root = %v, want number 3", outer.Right)
	}
	if n, ok := inner.Left.(*ast.Number); !ok || n.Value != 10 {
		t.Errorf("inner left = %v, want number 10", inner.Left)
	}
	if n, ok := inner.Right.(*ast.Number); !ok || n.Value != 2 {
		t.Errorf("inner right = %v, want number 2", inner.Right)
	}
}

func TestParse_ParamsAndCalls(t *testing.T) {
	input := "DEF ADD x y { x+y } ;\nDEF MAIN { ADD(3 4) } ;\n"
	prog := mustParse(t, input, &Config{MaxArguments: 2})

	add, ok := prog.Function("ADD")
	if !ok {
		t.Fatal("ADD not found")
	}
	if len(add.Params) != 2 || add.Params[0] != "x" || add.Params[1] != "y" {
		t.Errorf("ADD params = %v, want [x y]", add.Params)
	}
	if add.SourceLine != 1 {
		t.Errorf("ADD source line = %d, want 1", add.SourceLine)
	}

	sites := prog.CallSites()
	if len(sites) != 1 {
		t.Fatalf("call sites = %d, want 1", len(sites))
	}
	if sites[0].Function != "ADD" || len(sites[0].Args) != 2 {
		t.Errorf("call site = %s with %d args, want ADD with 2", sites[0].Function, len(sites[0].Args))
	}
}

func TestParse_EmptyArgumentList(t *testing.T) {
	prog := mustParse(t, "DEF ONE { 1 } ;\nDEF MAIN { ONE() } ;\n", nil)

	one, _ := prog.Function("ONE")
	if one.Arity() != 0 {
		t.Errorf("ONE arity = %d, want 0", one.Arity())
	}
	if len(prog.CallSites()[0].Args) != 0 {
		t.Errorf("call has %d args, want 0", len(prog.CallSites()[0].Args))
	}
}

func TestParse_ForwardReference(t *testing.T) {
	// Calls may target functions defined on later lines.
	mustParse(t, "DEF MAIN { F(1) } ;\nDEF F x { x } ;\n", nil)
}

func TestParse_DuplicateDefinitionLastWins(t *testing.T) {
	input := "DEF F x { x } ;\nDEF F y { y+y } ;\nDEF MAIN { F(1) } ;\n"
	prog := mustParse(t, input, nil)

	f, _ := prog.Function("F")
	if got := ast.Render(f.Body); got != "y+y" {
		t.Errorf("F body = %q, want the later definition %q", got, "y+y")
	}
	if f.SourceLine != 2 {
		t.Errorf("F source line = %d, want 2", f.SourceLine)
	}
	if len(prog.Definitions()) != 3 {
		t.Errorf("definitions = %d, want all 3 in source order", len(prog.Definitions()))
	}
}

func TestParse_ParamScopePerFunction(t *testing.T) {
	// Each body sees only its own declared parameters.
	input := "DEF F x { x } ;\nDEF G y { x } ;\nDEF MAIN { G(1) } ;\n"
	perr := parseErr(t, input, nil)
	if !strings.Contains(perr.Message, `unknown parameter "x"`) {
		t.Errorf("message = %q, want unknown parameter", perr.Message)
	}
	if perr.Line != 2 || perr.Col != 11 {
		t.Errorf("error at line %d col %d, want line 2 col 11", perr.Line, perr.Col)
	}
}

func TestParse_UnknownParameter(t *testing.T) {
	perr := parseErr(t, "DEF MAIN { x } ;\n", nil)
	if !strings.Contains(perr.Message, `unknown parameter "x"`) {
		t.Errorf("message = %q, want unknown parameter", perr.Message)
	}
}

func TestParse_TooManyArguments(t *testing.T) {
	// The default configuration allows one argument per call.
	input := "DEF F x { x } ;\nDEF MAIN { F(1 2) } ;\n"
	perr := parseErr(t, input, nil)
	if !strings.Contains(perr.Message, "too many parameters") {
		t.Errorf("message = %q, want too many parameters", perr.Message)
	}
	if perr.Line != 2 || perr.Col != 12 {
		t.Errorf("error at line %d col %d, want line 2 col 12", perr.Line, perr.Col)
	}
}

func TestParse_ArityMismatch(t *testing.T) {
	// With a higher argument limit the same call parses, then fails
	// the deferred check because F declares one parameter.
	input := "DEF F x { x } ;\nDEF MAIN { F(1 2) } ;\n"
	perr := parseErr(t, input, &Config{MaxArguments: 2})
	if !strings.Contains(perr.Message, "call to non-existent function F(1 2)") {
		t.Errorf("message = %q, want call to non-existent function F(1 2)", perr.Message)
	}
	if perr.Line != 2 || perr.Col != 12 {
		t.Errorf("error at line %d col %d, want line 2 col 12", perr.Line, perr.Col)
	}
}

func TestParse_CallToUndefined(t *testing.T) {
	perr := parseErr(t, "DEF MAIN { F(1) } ;\n", nil)
	if !strings.Contains(perr.Message, "call to non-existent function F(1)") {
		t.Errorf("message = %q, want call to non-existent function F(1)", perr.Message)
	}
	if perr.Line != 1 || perr.Col != 12 {
		t.Errorf("error at line %d col %d, want line 1 col 12", perr.Line, perr.Col)
	}
}

func TestParse_NoEntryFunction(t *testing.T) {
	perr := parseErr(t, "DEF F x { x } ;\n", nil)
	if perr.Message != "no entry function" {
		t.Errorf("message = %q, want %q", perr.Message, "no entry function")
	}
	if perr.Error() != "parser: no entry function" {
		t.Errorf("error = %q, want no position suffix", perr.Error())
	}
}

func TestParse_EmptyInput(t *testing.T) {
	perr := parseErr(t, "", nil)
	if perr.Message != "no entry function" {
		t.Errorf("message = %q, want %q", perr.Message, "no entry function")
	}
}

func TestParse_EntryIsNotCallable(t *testing.T) {
	// MAIN is a keyword, so it cannot appear as a call target.
	_, err := Parse("DEF MAIN { MAIN() } ;\n", nil)
	if err == nil {
		t.Fatal("expected parse error, got none")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParse_NumberOutOfRange(t *testing.T) {
	perr := parseErr(t, "DEF MAIN { 9223372036854775808 } ;\n", nil)
	if !strings.Contains(perr.Message, "out of range") {
		t.Errorf("message = %q, want out of range", perr.Message)
	}

	// The largest int64 still parses.
	prog := mustParse(t, "DEF MAIN { 9223372036854775807 } ;\n", nil)
	entry, _ := prog.Entry()
	if n := entry.Body.(*ast.Number); n.Value != 9223372036854775807 {
		t.Errorf("value = %d, want max int64", n.Value)
	}
}

func TestParse_MaxArgumentsConfig(t *testing.T) {
	input := "DEF F a b c { a+b*c } ;\nDEF MAIN { F(1 2 3) } ;\n"

	if _, err := Parse(input, &Config{MaxArguments: 3}); err != nil {
		t.Errorf("limit 3: unexpected error: %v", err)
	}
	if _, err := Parse(input, &Config{MaxArguments: 2}); err == nil {
		t.Error("limit 2: expected too many parameters error")
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing space after brace", "DEF MAIN {1 } ;\n", "expected space"},
		{"missing space before brace", "DEF MAIN{ 1 } ;\n", "expected space"},
		{"missing body", "DEF MAIN {  } ;\n", "expected number, parameter, or function call"},
		{"unterminated call", "DEF MAIN { F(1 } ;\n", "expected number, parameter, or function call"},
		{"missing close paren", "DEF MAIN { F(1;\n", "expected ')'"},
		{"operator without operand", "DEF MAIN { 1+ } ;\n", "expected number, parameter, or function call"},
		{"missing terminator", "DEF MAIN { 1 }\n", "unexpected character"},
		{"spaces around operator", "DEF MAIN { 1 + 2 } ;\n", "expected '}'"},
		{"lowercase function name", "DEF add x { x } ;\nDEF MAIN { 1 } ;\n", "expected function name"},
		{"second definition on same line", "DEF MAIN { 1 } ; DEF F x { x } ;\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, nil)
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_LexErrorPassesThrough(t *testing.T) {
	_, err := Parse("DEF MAIN { 1 } ;", nil)
	if err == nil {
		t.Fatal("expected error, got none")
	}
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.LexError, got %T: %v", err, err)
	}
}

func TestParse_CallSiteRegistrationOrder(t *testing.T) {
	input := "DEF G x { x } ;\n" +
		"DEF H x { x*2 } ;\n" +
		"DEF F x { G(x)+H(x) } ;\n" +
		"DEF MAIN { F(5) } ;\n"
	prog := mustParse(t, input, nil)

	var names []string
	for _, call := range prog.CallSites() {
		names = append(names, call.Function)
	}
	want := []string{"G", "H", "F"}
	if len(names) != len(want) {
		t.Fatalf("call sites = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("call site %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParse_NestedCallRegistersInnerFirst(t *testing.T) {
	prog := mustParse(t, "DEF F x { x } ;\nDEF MAIN { F(F(2+3)) } ;\n", nil)

	sites := prog.CallSites()
	if len(sites) != 2 {
		t.Fatalf("call sites = %d, want 2", len(sites))
	}
	if len(sites[0].Args) != 1 || ast.Render(sites[0].Args[0]) != "2+3" {
		t.Errorf("inner call = %s, want F(2+3)", ast.Render(sites[0]))
	}
	if ast.Render(sites[1]) != "F(F(2+3))" {
		t.Errorf("outer call = %s, want F(F(2+3))", ast.Render(sites[1]))
	}
}

func TestParse_NilConfigUsesDefault(t *testing.T) {
	// Default limit is one argument per call.
	if _, err := Parse("DEF F x { x } ;\nDEF MAIN { F(7) } ;\n", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg := DefaultConfig()
	if cfg.MaxArguments != 1 {
		t.Errorf("default MaxArguments = %d, want 1", cfg.MaxArguments)
	}
}

func TestParseProgram_FromTokens(t *testing.T) {
	tokens, err := lexer.Tokenize("DEF MAIN { 6*7 } ;\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	prog, err := ParseProgram(tokens, nil)
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	entry, _ := prog.Entry()
	if got := ast.Render(entry.Body); got != "6*7" {
		t.Errorf("body = %q, want %q", got, "6*7")
	}
}

func TestParseDefinitions_SkipsWholeProgramChecks(t *testing.T) {
	// Without an entry function ParseDefinitions still succeeds; the
	// deferred checks only run through Check or Parse.
	prog, err := ParseDefinitions("DEF F x { G(x) } ;\n", nil)
	if err != nil {
		t.Fatalf("ParseDefinitions failed: %v", err)
	}
	if err := prog.Check(); err == nil {
		t.Error("Check should reject the program")
	}
}

func TestFunctionDefinition_Render(t *testing.T) {
	input := "DEF ADD x y { x+y*2 } ;\nDEF MAIN { ADD(1 2) } ;\n"
	prog := mustParse(t, input, &Config{MaxArguments: 2})

	add, _ := prog.Function("ADD")
	if got := add.Render(); got != "ADD(x y):=x+y*2" {
		t.Errorf("render = %q, want %q", got, "ADD(x y):=x+y*2")
	}
	// Rendering is stable.
	if add.Render() != add.Render() {
		t.Error("render is not deterministic")
	}

	entry, _ := prog.Entry()
	if got := entry.Render(); got != "MAIN():=ADD(1 2)" {
		t.Errorf("render = %q, want %q", got, "MAIN():=ADD(1 2)")
	}
}

func TestProgram_Render(t *testing.T) {
	input := "DEF F x { x*x } ;\nDEF MAIN { F(3) } ;\n"
	prog := mustParse(t, input, nil)

	want := "F(x):=x*x\nMAIN():=F(3)\n"
	if got := prog.Render(); got != want {
		t.Errorf("render = %q, want %q", got, want)
	}
}

func TestParse_CallPositionsAreDistinct(t *testing.T) {
	// Two textually identical calls are distinct nodes at distinct
	// columns; the recursion guard depends on that.
	prog := mustParse(t, "DEF F x { x } ;\nDEF MAIN { F(1)+F(1) } ;\n", nil)

	sites := prog.CallSites()
	if len(sites) != 2 {
		t.Fatalf("call sites = %d, want 2", len(sites))
	}
	if sites[0] == sites[1] {
		t.Error("call sites must be distinct nodes")
	}
	if sites[0].Position == sites[1].Position {
		t.Errorf("positions %v and %v must differ", sites[0].Position, sites[1].Position)
	}
}
