// Package lexer tokenizes mini-C source text with an ordered table of
// longest-match regular expression rules. Whitespace and //-comments
// are discarded; anything matching no rule is a fatal lexical error
// carrying line and column.
package lexer

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"minicc/token"
)

// Error reports a lexical error: an input byte sequence matched none of
// the token rules.
type Error struct {
	Pos token.Position
	Ch  string
}

func (e *Error) Error() string {
	return errors.Errorf("lexical error: unexpected character %q at %s", e.Ch, e.Pos).Error()
}

type rule struct {
	kind    token.Kind
	skip    bool // whitespace/comment: matched but discarded
	pattern *regexp.Regexp
}

// Rule ordering matters: the first rule matching at the cursor wins,
// so multi-character operators must precede their single-character
// prefixes (== before =, <= before <) and the comment rule precedes /.
var rules = []rule{
	{skip: true, pattern: regexp.MustCompile(`^//[^\n]*`)},
	{skip: true, pattern: regexp.MustCompile(`^[ \t\r]+`)},
	{kind: token.STRING, pattern: regexp.MustCompile(`^"[^"\n]*"`)},
	{kind: token.NUMBER, pattern: regexp.MustCompile(`^[0-9]+`)},
	{kind: token.IDENT, pattern: regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)},
	{kind: token.EQ, pattern: regexp.MustCompile(`^==`)},
	{kind: token.NE, pattern: regexp.MustCompile(`^!=`)},
	{kind: token.LE, pattern: regexp.MustCompile(`^<=`)},
	{kind: token.GE, pattern: regexp.MustCompile(`^>=`)},
	{kind: token.ASSIGN, pattern: regexp.MustCompile(`^=`)},
	{kind: token.LT, pattern: regexp.MustCompile(`^<`)},
	{kind: token.GT, pattern: regexp.MustCompile(`^>`)},
	{kind: token.PLUS, pattern: regexp.MustCompile(`^\+`)},
	{kind: token.MINUS, pattern: regexp.MustCompile(`^-`)},
	{kind: token.MUL, pattern: regexp.MustCompile(`^\*`)},
	{kind: token.DIV, pattern: regexp.MustCompile(`^/`)},
	{kind: token.LPAREN, pattern: regexp.MustCompile(`^\(`)},
	{kind: token.RPAREN, pattern: regexp.MustCompile(`^\)`)},
	{kind: token.LBRACE, pattern: regexp.MustCompile(`^\{`)},
	{kind: token.RBRACE, pattern: regexp.MustCompile(`^\}`)},
	{kind: token.COMMA, pattern: regexp.MustCompile(`^,`)},
	{kind: token.SEMI, pattern: regexp.MustCompile(`^;`)},
}

// Tokenize scans src into a token sequence terminated by an EOF token.
func Tokenize(src string) ([]token.Token, error) {
	var toks []token.Token
	line, col := 1, 1
	rest := src

	advance := func(s string) {
		for _, r := range s {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
	}

	for len(rest) > 0 {
		if rest[0] == '\n' {
			line++
			col = 1
			rest = rest[1:]
			continue
		}

		matched := false
		for _, r := range rules {
			loc := r.pattern.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				continue
			}
			text := rest[:loc[1]]
			if !r.skip {
				pos := token.Position{Line: line, Col: col}
				kind := r.kind
				value := text
				if kind == token.STRING {
					value = strings.TrimSuffix(strings.TrimPrefix(value, `"`), `"`)
				} else if kind == token.IDENT {
					if kw, ok := token.Keywords[value]; ok {
						kind = kw
					}
				}
				toks = append(toks, token.Token{Kind: kind, Text: value, Pos: pos})
			}
			advance(text)
			rest = rest[loc[1]:]
			matched = true
			break
		}
		if !matched {
			return nil, &Error{Pos: token.Position{Line: line, Col: col}, Ch: string(rest[0])}
		}
	}

	toks = append(toks, token.Token{Kind: token.EOF, Text: "", Pos: token.Position{Line: line, Col: col}})
	return toks, nil
}
