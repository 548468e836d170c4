// Package parser folds a token stream into a store.Value. The grammar:
//
//	store        := entries
//	entries      := (entry (sep entry)*)?
//	sep          := ',' | ';' | (newline-only whitespace)
//	entry        := STRING '=' value
//	value        := STRING | INTEGER | FLOAT | list | array
//	list         := '(' (value (sep value)*)? ')'
//	array        := '{' entries '}'
//
// Whitespace-only separation never reaches the parser as a token (the
// lexer discards it), so "sep" is realized as: an explicit ',' or ';' is
// consumed when present, and entries or list elements may otherwise
// follow one another directly once whitespace has done its job.
package parser

import (
	"fmt"
	"strings"

	"github.com/golangee/store"
	"github.com/golangee/store/token"
)

func init() {
	store.RegisterParser(ParseNamed)
}

// Parser builds a store.Value from a token.Lexer.
type Parser struct {
	lex *token.Lexer
	cur token.Token
}

// New creates a Parser reading tokens from lex.
func New(lex *token.Lexer) *Parser {
	return &Parser{lex: lex}
}

// ParseString parses text into the root Array Value, using an empty
// file name for diagnostics.
func ParseString(text string) (*store.Value, error) {
	return ParseNamed("", text)
}

// ParseNamed parses text, attaching file to any diagnostic positions.
// This is the implementation store.ParseString and store.ParseFile
// dispatch to once this package is imported.
func ParseNamed(file, text string) (*store.Value, error) {
	return New(token.New(file, strings.NewReader(text))).Parse()
}

// Parse consumes the entire input and returns the root Array Value.
func (p *Parser) Parse() (*store.Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	root, err := p.entries(token.EOF)
	if err != nil {
		return nil, err
	}

	if p.cur.Kind != token.EOF {
		return nil, p.unexpected(token.EOF)
	}

	return root, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.cur = tok

	return nil
}

func (p *Parser) node() token.Node {
	return token.NewNode(p.cur.Pos, p.cur.Pos)
}

func (p *Parser) unexpected(expected ...token.Kind) error {
	return token.NewPosError(p.node(), fmt.Sprintf("unexpected %s, expected one of %v", p.cur.Kind, expected)).
		SetCause(store.ErrParseUnexpectedToken)
}

// isSep reports whether the current token is an explicit separator.
func (p *Parser) isSep() bool {
	return p.cur.Kind == token.Comma || p.cur.Kind == token.Semicolon
}

// entries parses zero or more entries into a fresh Array, stopping at
// terminator (RBrace for an array body, EOF for the root).
func (p *Parser) entries(terminator token.Kind) (*store.Value, error) {
	root := store.NewArray()

	for p.cur.Kind != terminator {
		key, value, err := p.entry()
		if err != nil {
			return nil, err
		}

		root.Set(key, value)

		if p.isSep() {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	return root, nil
}

func (p *Parser) entry() (string, *store.Value, error) {
	if p.cur.Kind != token.String {
		return "", nil, p.unexpected(token.String)
	}

	key := p.cur.Str

	if err := p.advance(); err != nil {
		return "", nil, err
	}

	if p.cur.Kind != token.Assign {
		return "", nil, p.unexpected(token.Assign)
	}

	if err := p.advance(); err != nil {
		return "", nil, err
	}

	value, err := p.value()
	if err != nil {
		return "", nil, err
	}

	return key, value, nil
}

func (p *Parser) value() (*store.Value, error) {
	switch p.cur.Kind {
	case token.String:
		v := store.NewString(p.cur.Str)
		return v, p.advance()
	case token.Integer:
		v := store.NewInteger(p.cur.Int)
		return v, p.advance()
	case token.Float:
		v := store.NewFloat(p.cur.Flt)
		return v, p.advance()
	case token.LParen:
		return p.list()
	case token.LBrace:
		return p.array()
	default:
		return nil, p.unexpected(token.String, token.Integer, token.Float, token.LParen, token.LBrace)
	}
}

func (p *Parser) list() (*store.Value, error) {
	begin := p.node()

	if err := p.advance(); err != nil {
		return nil, err
	}

	out := store.NewList()

	for p.cur.Kind != token.RParen {
		if p.cur.Kind == token.EOF {
			return nil, token.NewPosError(begin, "unterminated list").SetCause(store.ErrParseUnterminated)
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}

		out.Append(v)

		if p.isSep() {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	return out, p.advance()
}

func (p *Parser) array() (*store.Value, error) {
	begin := p.node()

	if err := p.advance(); err != nil {
		return nil, err
	}

	out, err := p.entriesChecked(begin)
	if err != nil {
		return nil, err
	}

	return out, p.advance()
}

// entriesChecked is entries() specialized for an array body, surfacing
// EOF as an unterminated-array error instead of an unexpected token.
func (p *Parser) entriesChecked(begin token.Node) (*store.Value, error) {
	root := store.NewArray()

	for p.cur.Kind != token.RBrace {
		if p.cur.Kind == token.EOF {
			return nil, token.NewPosError(begin, "unterminated array").SetCause(store.ErrParseUnterminated)
		}

		key, value, err := p.entry()
		if err != nil {
			return nil, err
		}

		root.Set(key, value)

		if p.isSep() {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	return root, nil
}
