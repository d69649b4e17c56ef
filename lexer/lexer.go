// Package lexer tokenizes deflang program text.
package lexer

import "fmt"

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF        TokenType = iota
	TokenPlus                 // +
	TokenTimes                // *
	TokenLParen               // (
	TokenRParen               // )
	TokenLBrace               // {
	TokenRBrace               // }
	TokenDef                  // DEF
	TokenMain                 // MAIN
	TokenFunc                 // uppercase function identifier
	TokenParam                // lowercase parameter identifier
	TokenNumber               // decimal digits
	TokenSpace                // single significant space
	TokenTerminator           // ";" immediately followed by a newline
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "end of input",
	TokenPlus:       "'+'",
	TokenTimes:      "'*'",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenLBrace:     "'{'",
	TokenRBrace:     "'}'",
	TokenDef:        "'DEF'",
	TokenMain:       "'MAIN'",
	TokenFunc:       "function name",
	TokenParam:      "parameter name",
	TokenNumber:     "number",
	TokenSpace:      "space",
	TokenTerminator: "';'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single token from the lexer. Line and Col are the
// 1-based position of the token's first character.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d:%d}", t.Type, t.Literal, t.Line, t.Col)
}

// LexError reports input that matches no token pattern.
type LexError struct {
	Message string
	Line    int
	Col     int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer: %s at line %d col %d", e.Message, e.Line, e.Col)
}

// Lexer tokenizes program text one token at a time. Whitespace is
// significant: a single space is its own token, required by the grammar
// in specific positions rather than skipped as filler. Newlines appear
// only inside the statement terminator.
type Lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
	line    int
	col     int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

var keywords = map[string]TokenType{
	"DEF":  TokenDef,
	"MAIN": TokenMain,
}

// NextToken returns the next token, or a *LexError when no token
// pattern matches at the current position.
func (l *Lexer) NextToken() (Token, error) {
	line, col := l.line, l.col

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Line: line, Col: col}, nil
	case l.ch == '+':
		l.readChar()
		return Token{Type: TokenPlus, Literal: "+", Line: line, Col: col}, nil
	case l.ch == '*':
		l.readChar()
		return Token{Type: TokenTimes, Literal: "*", Line: line, Col: col}, nil
	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Line: line, Col: col}, nil
	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Line: line, Col: col}, nil
	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Line: line, Col: col}, nil
	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Line: line, Col: col}, nil
	case l.ch == ' ':
		l.readChar()
		return Token{Type: TokenSpace, Literal: " ", Line: line, Col: col}, nil
	case l.ch == ';':
		return l.readTerminator(line, col)
	case isUpper(l.ch):
		lit := l.readUpper()
		typ := TokenFunc
		if kw, ok := keywords[lit]; ok {
			typ = kw
		}
		return Token{Type: typ, Literal: lit, Line: line, Col: col}, nil
	case isLower(l.ch):
		return Token{Type: TokenParam, Literal: l.readLower(), Line: line, Col: col}, nil
	case isDigit(l.ch):
		return Token{Type: TokenNumber, Literal: l.readNumber(), Line: line, Col: col}, nil
	default:
		return Token{}, &LexError{
			Message: fmt.Sprintf("unexpected character %q", l.ch),
			Line:    line,
			Col:     col,
		}
	}
}

// readTerminator consumes ";" plus the newline sequence that must
// follow it ("\n" or "\r\n"). A bare ";" is a lex error.
func (l *Lexer) readTerminator(line, col int) (Token, error) {
	lit := ";"
	l.readChar()
	if l.ch == '\r' {
		lit += "\r"
		l.readChar()
	}
	if l.ch != '\n' {
		return Token{}, &LexError{
			Message: "';' must be immediately followed by a newline",
			Line:    line,
			Col:     col,
		}
	}
	lit += "\n"
	l.readChar()
	return Token{Type: TokenTerminator, Literal: lit, Line: line, Col: col}, nil
}

func (l *Lexer) readUpper() string {
	start := l.pos
	for isUpper(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readLower() string {
	start := l.pos
	for isLower(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isUpper(ch byte) bool {
	return ch >= 'A' && ch <= 'Z'
}

func isLower(ch byte) bool {
	return ch >= 'a' && ch <= 'z'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with the EOF
// token, or the first lexing error encountered.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
