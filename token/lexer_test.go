package token

import (
	"errors"
	"strings"
	"testing"

	"github.com/golangee/store"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()

	lex := New("", strings.NewReader(src))

	var toks []Token

	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}

		toks = append(toks, tok)

		if tok.Kind == EOF {
			return toks
		}
	}
}

func TestLexerPunctuationAndLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Kind
	}{
		{name: "empty", src: "", want: []Kind{EOF}},
		{name: "assign", src: "a = 1", want: []Kind{String, Assign, Integer, EOF}},
		{name: "punctuation", src: "(,;){}", want: []Kind{LParen, Comma, Semicolon, RParen, LBrace, RBrace, EOF}},
		{name: "negative integer", src: "-5", want: []Kind{Integer, EOF}},
		{name: "float", src: "3.14", want: []Kind{Float, EOF}},
		{name: "negative float", src: "-3.14", want: []Kind{Float, EOF}},
		{name: "quoted string", src: `"hello world"`, want: []Kind{String, EOF}},
		{name: "line comment", src: "a = 1 // trailing comment\nb = 2", want: []Kind{String, Assign, Integer, String, Assign, Integer, EOF}},
		{name: "slash in identifier", src: "a/b = 1", want: []Kind{String, Assign, Integer, EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collect(t, tt.src)
			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d %v", len(toks), toks, len(tt.want), tt.want)
			}

			for i, tok := range toks {
				if tok.Kind != tt.want[i] {
					t.Errorf("token %d: got %s, want %s", i, tok.Kind, tt.want[i])
				}
			}
		})
	}
}

func TestLexerQuotedStringEscapes(t *testing.T) {
	toks := collect(t, `"a\\b\"c"`)
	if len(toks) != 2 || toks[0].Kind != String {
		t.Fatalf("unexpected tokens: %v", toks)
	}

	if toks[0].Str != `a\b"c` {
		t.Errorf("got %q, want %q", toks[0].Str, `a\b"c`)
	}
}

func TestLexerQuotedStringOtherBackslashPassesThrough(t *testing.T) {
	toks := collect(t, `"a\nb"`)
	if toks[0].Str != `a\nb` {
		t.Errorf("got %q, want %q", toks[0].Str, `a\nb`)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := New("", strings.NewReader(`"unterminated`))

	_, err := lex.Next()
	if !errors.Is(err, store.ErrParseUnterminated) {
		t.Fatalf("got %v, want ErrParseUnterminated", err)
	}
}

func TestLexerStringOverflow(t *testing.T) {
	lex := New("", strings.NewReader(`"`+strings.Repeat("a", 65536)+`"`))

	_, err := lex.Next()
	if err != nil {
		t.Fatalf("string of length exactly 65536 should lex, got %v", err)
	}

	lex2 := New("", strings.NewReader(`"`+strings.Repeat("a", 65537)+`"`))

	_, err = lex2.Next()
	if !errors.Is(err, store.ErrLexerOverflow) {
		t.Fatalf("got %v, want ErrLexerOverflow", err)
	}
}

func TestLexerIntegerOverflow(t *testing.T) {
	lex := New("", strings.NewReader("99999999999999999999"))

	_, err := lex.Next()
	if !errors.Is(err, store.ErrLexerOverflow) {
		t.Fatalf("got %v, want ErrLexerOverflow", err)
	}
}

func TestLexerUnexpectedByte(t *testing.T) {
	// A bare backslash outside a quoted string cannot start any token:
	// it is excluded from identifier bytes and has no other meaning.
	lex := New("", strings.NewReader(`\`))

	_, err := lex.Next()
	if !errors.Is(err, store.ErrLexerUnexpected) {
		t.Fatalf("got %v, want ErrLexerUnexpected", err)
	}
}

func TestLexerBareDashIsAnError(t *testing.T) {
	tests := []string{"-", "- ", "-,"}

	for _, src := range tests {
		lex := New("", strings.NewReader(src))

		_, err := lex.Next()
		if !errors.Is(err, store.ErrLexerUnexpected) {
			t.Errorf("Next() on %q error = %v, want ErrLexerUnexpected", src, err)
		}
	}
}

func TestLexerDeterministic(t *testing.T) {
	src := `foo = "bar" // cmt
nums = (13, 18.34, {bird = word})`

	toks1 := collect(t, src)
	toks2 := collect(t, src)

	if len(toks1) != len(toks2) {
		t.Fatalf("non-deterministic token count: %d vs %d", len(toks1), len(toks2))
	}

	for i := range toks1 {
		if toks1[i].Kind != toks2[i].Kind || toks1[i].Str != toks2[i].Str {
			t.Errorf("token %d differs across runs: %+v vs %+v", i, toks1[i], toks2[i])
		}
	}
}
