// Package parser turns deflang token streams into checked programs.
//
// Parsing happens in two stages. Each DEF line is parsed on its own
// with only local knowledge, so a body may call a function that has
// not been defined yet. Once every definition has been read, the
// whole-program checks run: the entry function must exist and every
// recorded call site must match a definition by name and arity.
package parser

import (
	"fmt"
	"strconv"

	"github.com/deflang/go-deflang/ast"
	"github.com/deflang/go-deflang/lexer"
)

// Parser consumes a token slice with one token of lookahead.
type Parser struct {
	tokens []lexer.Token
	pos    int
	cur    lexer.Token
	peek   lexer.Token
	cfg    Config
	prog   *Program
	params map[string]bool
}

// NewParser creates a parser over tokens. A nil cfg selects
// DefaultConfig.
func NewParser(tokens []lexer.Token, cfg *Config) *Parser {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.MaxArguments <= 0 {
		c.MaxArguments = DefaultConfig().MaxArguments
	}
	p := &Parser{tokens: tokens, cfg: c, prog: newProgram()}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
		p.pos++
	} else if len(p.tokens) > 0 {
		p.peek = p.tokens[len(p.tokens)-1] // EOF repeats
	}
}

func (p *Parser) expect(t lexer.TokenType) error {
	if p.cur.Type != t {
		return p.errorf("expected %v, got %v", t, p.cur.Type)
	}
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    p.cur.Line,
		Col:     p.cur.Col,
	}
}

func (p *Parser) curPos() ast.Pos {
	return ast.Pos{Line: p.cur.Line, Col: p.cur.Col}
}

// Parse tokenizes input, parses every definition, and runs the
// whole-program checks. Lexer errors surface as *lexer.LexError and
// everything else as *ParseError.
func Parse(input string, cfg *Config) (*Program, error) {
	prog, err := ParseDefinitions(input, cfg)
	if err != nil {
		return nil, err
	}
	if err := prog.Check(); err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseDefinitions parses input without the whole-program checks.
// Tooling that wants to report entry and call-site problems as
// collected diagnostics instead of a single fatal error starts here.
func ParseDefinitions(input string, cfg *Config) (*Program, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens, cfg)
	return p.parseProgram()
}

// ParseProgram parses an existing token slice and runs the
// whole-program checks.
func ParseProgram(tokens []lexer.Token, cfg *Config) (*Program, error) {
	p := NewParser(tokens, cfg)
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if err := prog.Check(); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseProgram() (*Program, error) {
	line := 0
	for p.cur.Type != lexer.TokenEOF {
		line++
		def, err := p.parseDefinition(line)
		if err != nil {
			return nil, err
		}
		p.prog.add(def)
	}
	return p.prog, nil
}

// parseDefinition parses one DEF line:
//
//	DEF NAME p1 p2 { body } ;
//
// Single spaces are part of the grammar, so every separator is an
// explicit token. The entry name MAIN is a keyword and declares no
// parameters.
func (p *Parser) parseDefinition(sourceLine int) (*FunctionDefinition, error) {
	if err := p.expect(lexer.TokenDef); err != nil {
		return nil, err
	}
	p.nextToken()
	if err := p.expect(lexer.TokenSpace); err != nil {
		return nil, err
	}
	p.nextToken()

	var name string
	var params []string
	switch p.cur.Type {
	case lexer.TokenMain:
		name = EntryName
		p.nextToken()
	case lexer.TokenFunc:
		name = p.cur.Literal
		p.nextToken()
		for p.cur.Type == lexer.TokenSpace && p.peek.Type == lexer.TokenParam {
			p.nextToken()
			params = append(params, p.cur.Literal)
			p.nextToken()
		}
	default:
		return nil, p.errorf("expected function name, got %v", p.cur.Type)
	}

	if err := p.expect(lexer.TokenSpace); err != nil {
		return nil, err
	}
	p.nextToken()
	if err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	p.nextToken()
	if err := p.expect(lexer.TokenSpace); err != nil {
		return nil, err
	}
	p.nextToken()

	p.params = make(map[string]bool, len(params))
	for _, param := range params {
		p.params[param] = true
	}

	body, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.TokenSpace); err != nil {
		return nil, err
	}
	p.nextToken()
	if err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}
	p.nextToken()
	if err := p.expect(lexer.TokenSpace); err != nil {
		return nil, err
	}
	p.nextToken()
	if err := p.expect(lexer.TokenTerminator); err != nil {
		return nil, err
	}
	p.nextToken()

	return &FunctionDefinition{
		Name:       name,
		Params:     params,
		Body:       body,
		SourceLine: sourceLine,
	}, nil
}

// parseSum parses product ('+' product)*, folding left so that
// a+b+c becomes Sum(Sum(a,b),c).
func (p *Parser) parseSum() (ast.Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.TokenPlus {
		p.nextToken()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &ast.Sum{Left: left, Right: right, Position: left.Pos()}
	}
	return left, nil
}

// parseProduct parses atom ('*' atom)*, folding left. Binding tighter
// than parseSum gives '*' its higher precedence.
func (p *Parser) parseProduct() (ast.Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.TokenTimes {
		p.nextToken()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = &ast.Product{Left: left, Right: right, Position: left.Pos()}
	}
	return left, nil
}

func (p *Parser) parseAtom() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.TokenNumber:
		value, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf("number literal %q out of range", p.cur.Literal)
		}
		node := &ast.Number{Value: value, Position: p.curPos()}
		p.nextToken()
		return node, nil

	case lexer.TokenParam:
		if !p.params[p.cur.Literal] {
			return nil, p.errorf("unknown parameter %q", p.cur.Literal)
		}
		node := &ast.Param{Name: p.cur.Literal, Position: p.curPos()}
		p.nextToken()
		return node, nil

	case lexer.TokenFunc:
		return p.parseCall()

	default:
		return nil, p.errorf("expected number, parameter, or function call, got %v", p.cur.Type)
	}
}

// parseCall parses NAME '(' (sum (' ' sum)*)? ')'. Arguments are
// separated by single spaces. Each call node is registered with the
// program so the deferred checks can revisit it, and the argument
// count is capped by the configured maximum.
func (p *Parser) parseCall() (ast.Node, error) {
	name := p.cur.Literal
	pos := p.curPos()
	p.nextToken()

	if err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	p.nextToken()

	var args []ast.Node
	if p.cur.Type != lexer.TokenRParen {
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		for p.cur.Type == lexer.TokenSpace {
			p.nextToken()
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}

	if len(args) > p.cfg.MaxArguments {
		return nil, &ParseError{
			Message: fmt.Sprintf("too many parameters in call to %s: %d exceeds limit %d",
				name, len(args), p.cfg.MaxArguments),
			Line: pos.Line,
			Col:  pos.Col,
		}
	}

	if err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	p.nextToken()

	call := &ast.Call{Function: name, Args: args, Position: pos}
	p.prog.callSites = append(p.prog.callSites, call)
	return call, nil
}
