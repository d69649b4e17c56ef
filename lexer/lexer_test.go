package lexer

import (
	"errors"
	"testing"
)

func TestLexer_DefinitionTokens(t *testing.T) {
	input := "DEF MAIN { 1+2*3 } ;\n"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenDef, "DEF"},
		{TokenSpace, " "},
		{TokenMain, "MAIN"},
		{TokenSpace, " "},
		{TokenLBrace, "{"},
		{TokenSpace, " "},
		{TokenNumber, "1"},
		{TokenPlus, "+"},
		{TokenNumber, "2"},
		{TokenTimes, "*"},
		{TokenNumber, "3"},
		{TokenSpace, " "},
		{TokenRBrace, "}"},
		{TokenSpace, " "},
		{TokenTerminator, ";\n"},
		{TokenEOF, ""},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, e := range expected {
		if tokens[i].Type != e.typ {
			t.Errorf("token %d: expected type %v, got %v", i, e.typ, tokens[i].Type)
		}
		if tokens[i].Literal != e.lit {
			t.Errorf("token %d: expected literal %q, got %q", i, e.lit, tokens[i].Literal)
		}
	}
}

func TestLexer_Identifiers(t *testing.T) {
	input := "DEF ADD x y { F(x) } ;\n"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	// DEF is a keyword, ADD and F are function names, x and y parameters.
	if tokens[0].Type != TokenDef {
		t.Errorf("expected DEF keyword, got %v", tokens[0].Type)
	}
	if tokens[2].Type != TokenFunc || tokens[2].Literal != "ADD" {
		t.Errorf("expected function name ADD, got %v %q", tokens[2].Type, tokens[2].Literal)
	}
	if tokens[4].Type != TokenParam || tokens[4].Literal != "x" {
		t.Errorf("expected parameter x, got %v %q", tokens[4].Type, tokens[4].Literal)
	}
	if tokens[6].Type != TokenParam || tokens[6].Literal != "y" {
		t.Errorf("expected parameter y, got %v %q", tokens[6].Type, tokens[6].Literal)
	}
	if tokens[10].Type != TokenFunc || tokens[10].Literal != "F" {
		t.Errorf("expected function name F, got %v %q", tokens[10].Type, tokens[10].Literal)
	}
}

func TestLexer_TerminatorCRLF(t *testing.T) {
	tokens, err := Tokenize("DEF MAIN { 1 } ;\r\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	term := tokens[len(tokens)-2]
	if term.Type != TokenTerminator {
		t.Fatalf("expected terminator, got %v", term.Type)
	}
	if term.Literal != ";\r\n" {
		t.Errorf("expected literal \";\\r\\n\", got %q", term.Literal)
	}
}

func TestLexer_BareSemicolonFails(t *testing.T) {
	inputs := []string{
		"DEF MAIN { 1 } ;",   // end of input after ';'
		"DEF MAIN { 1 } ; \n", // space between ';' and newline
		"DEF MAIN { 1 } ;\r",  // carriage return without newline
	}

	for _, input := range inputs {
		_, err := Tokenize(input)
		if err == nil {
			t.Errorf("input %q: expected lex error, got none", input)
			continue
		}
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("input %q: expected *LexError, got %T", input, err)
			continue
		}
		if lexErr.Line != 1 || lexErr.Col != 16 {
			t.Errorf("input %q: expected error at line 1 col 16, got line %d col %d",
				input, lexErr.Line, lexErr.Col)
		}
	}
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	tests := []struct {
		input string
		line  int
		col   int
	}{
		{"DEF MAIN { 1-2 } ;\n", 1, 13}, // no subtraction operator
		{"DEF MAIN {\t1 } ;\n", 1, 11},  // tab is not a space token
		{"1\n2", 1, 2},                  // newline outside a terminator
		{"DEF MAIN { 1,2 } ;\n", 1, 13}, // no comma argument separator
	}

	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		if err == nil {
			t.Errorf("input %q: expected lex error, got none", tt.input)
			continue
		}
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("input %q: expected *LexError, got %T", tt.input, err)
			continue
		}
		if lexErr.Line != tt.line || lexErr.Col != tt.col {
			t.Errorf("input %q: expected error at line %d col %d, got line %d col %d",
				tt.input, tt.line, tt.col, lexErr.Line, lexErr.Col)
		}
	}
}

func TestLexer_PositionsAcrossLines(t *testing.T) {
	input := "DEF F x { x } ;\nDEF MAIN { F(1) } ;\n"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	// Find the second DEF; it must start at line 2 col 1.
	var second *Token
	for i := 1; i < len(tokens); i++ {
		if tokens[i].Type == TokenDef {
			second = &tokens[i]
			break
		}
	}
	if second == nil {
		t.Fatal("second DEF not found")
	}
	if second.Line != 2 || second.Col != 1 {
		t.Errorf("second DEF at line %d col %d, want line 2 col 1", second.Line, second.Col)
	}

	// The F call on line 2 starts at col 12.
	for _, tok := range tokens {
		if tok.Type == TokenFunc && tok.Literal == "F" && tok.Line == 2 {
			if tok.Col != 12 {
				t.Errorf("call F at col %d, want col 12", tok.Col)
			}
		}
	}
}

func TestLexer_NextTokenAfterEOF(t *testing.T) {
	l := NewLexer("")
	for i := 0; i < 3; i++ {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken failed: %v", err)
		}
		if tok.Type != TokenEOF {
			t.Errorf("call %d: expected EOF, got %v", i, tok.Type)
		}
	}
}

func TestLexer_LongRuns(t *testing.T) {
	tokens, err := Tokenize("DEF FACTORIAL acc { 1234567890 } ;\n")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	if tokens[2].Literal != "FACTORIAL" {
		t.Errorf("expected FACTORIAL, got %q", tokens[2].Literal)
	}
	if tokens[4].Literal != "acc" {
		t.Errorf("expected acc, got %q", tokens[4].Literal)
	}
	if tokens[8].Type != TokenNumber || tokens[8].Literal != "1234567890" {
		t.Errorf("expected number 1234567890, got %v %q", tokens[8].Type, tokens[8].Literal)
	}
}

func TestLexError_Message(t *testing.T) {
	_, err := Tokenize("?")
	if err == nil {
		t.Fatal("expected error")
	}
	want := `lexer: unexpected character '?' at line 1 col 1`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestTokenType_String(t *testing.T) {
	tests := []struct {
		typ  TokenType
		want string
	}{
		{TokenEOF, "end of input"},
		{TokenPlus, "'+'"},
		{TokenDef, "'DEF'"},
		{TokenFunc, "function name"},
		{TokenTerminator, "';'"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("TokenType(%d).String() = %q, want %q", int(tt.typ), got, tt.want)
		}
	}
}
