package lexer_test

import (
	"testing"

	"minicc/lexer"
	"minicc/token"
)

func kinds(t []token.Token) []token.Kind {
	ks := make([]token.Kind, len(t))
	for i, tok := range t {
		ks[i] = tok.Kind
	}
	return ks
}

func sameKinds(t *testing.T, name string, got []token.Kind, want []token.Kind) {
	if len(got) != len(want) {
		t.Errorf("%s: got %d tokens %v, want %d %v", name, len(got), got, len(want), want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: token %d: got %s, want %s", name, i, got[i], want[i])
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"empty", "", []token.Kind{token.EOF}},
		{"number", "42", []token.Kind{token.NUMBER, token.EOF}},
		{"ident vs keyword", "int x", []token.Kind{token.INT, token.IDENT, token.EOF}},
		{"string", `"hi there"`, []token.Kind{token.STRING, token.EOF}},
		{"comment skipped", "1 // trailing\n2", []token.Kind{token.NUMBER, token.NUMBER, token.EOF}},
		{
			"multi-char operators before prefixes", "== != <= >= = < >",
			[]token.Kind{token.EQ, token.NE, token.LE, token.GE, token.ASSIGN, token.LT, token.GT, token.EOF},
		},
		{
			"full declaration", "int main() { return 0; }",
			[]token.Kind{
				token.INT, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
				token.RETURN, token.NUMBER, token.SEMI, token.RBRACE, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		toks, err := lexer.Tokenize(tt.src)
		if err != nil {
			t.Errorf("%s: %+v", tt.name, err)
			continue
		}
		sameKinds(t, tt.name, kinds(toks), tt.want)
	}
}

func TestTokenizeStringLiteralStripsQuotes(t *testing.T) {
	toks, err := lexer.Tokenize(`print("ok");`)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if toks[2].Kind != token.STRING || toks[2].Text != "ok" {
		t.Errorf("got %+v, want STRING %q", toks[2], "ok")
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := lexer.Tokenize("int x = 1 @ 2;")
	if err == nil {
		t.Fatal("expected a lexical error for '@'")
	}
	if _, ok := err.(*lexer.Error); !ok {
		t.Errorf("got error of type %T, want *lexer.Error", err)
	}
}

func TestTokenizeTracksLineAndColumn(t *testing.T) {
	toks, err := lexer.Tokenize("int x;\nint y;")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// toks[3] is the second "int" keyword, at the start of line 2.
	var second token.Token
	count := 0
	for _, tok := range toks {
		if tok.Kind == token.INT {
			count++
			if count == 2 {
				second = tok
			}
		}
	}
	if second.Pos.Line != 2 || second.Pos.Col != 1 {
		t.Errorf("second int: got position %s, want 2:1", second.Pos)
	}
}
