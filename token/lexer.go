package token

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/golangee/store"
)

const maxStringLen = 65536

type byteWithPos struct {
	b         byte
	line, col int
	offset    int
}

// Lexer turns a byte source into a stream of Tokens. Content is treated
// as opaque bytes, never validated or decoded as Unicode: quoted strings
// may carry arbitrary bytes, and identifier bytes are only ever compared
// against the fixed punctuation set, never classified by rune category.
// Two Lexers driven over the same bytes always produce the same stream.
type Lexer struct {
	r      *bufio.Reader
	buf    []byteWithPos
	bufPos int
	pos    Pos
}

// New creates a Lexer reading from r. file is attached to every position
// for diagnostics and may be empty for in-memory input.
func New(file string, r io.Reader) *Lexer {
	l := &Lexer{r: bufio.NewReader(r)}
	l.pos.File = file
	l.pos.Line = 1
	l.pos.Col = 1

	return l
}

// Pos returns the position the Lexer is currently at.
func (l *Lexer) Pos() Pos {
	return l.pos
}

func (l *Lexer) node() Node {
	return NewNode(l.pos, l.pos)
}

// nextB reads the next byte, buffering it so a later prevB can rewind.
func (l *Lexer) nextB() (byte, error) {
	if l.bufPos < len(l.buf) {
		bp := l.buf[l.bufPos]
		l.bufPos++
		l.pos.Line = bp.line
		l.pos.Col = bp.col
		l.pos.Offset = bp.offset

		return bp.b, nil
	}

	b, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}

	l.buf = append(l.buf, byteWithPos{b: b, line: l.pos.Line, col: l.pos.Col, offset: l.pos.Offset})
	l.bufPos++

	l.pos.Offset++
	l.pos.Col++

	if b == '\n' {
		l.pos.Line++
		l.pos.Col = 1
	}

	return b, nil
}

// prevB rewinds the last byte returned by nextB. It panics if called
// without a matching prior nextB.
func (l *Lexer) prevB() {
	l.bufPos--
	bp := l.buf[l.bufPos]
	l.pos.Line = bp.line
	l.pos.Col = bp.col
	l.pos.Offset = bp.offset
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isPunct(b byte) bool {
	switch b {
	case '=', ',', ';', '(', ')', '{', '}':
		return true
	default:
		return false
	}
}

// skipIgnored discards whitespace and line comments until a significant
// byte is reached or the input ends.
func (l *Lexer) skipIgnored() error {
	for {
		b, err := l.nextB()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if isSpace(b) {
			continue
		}

		if b == '/' {
			b2, err2 := l.nextB()
			if err2 == nil && b2 == '/' {
				for {
					b3, err3 := l.nextB()
					if err3 != nil {
						return nil
					}

					if b3 == '\n' {
						break
					}
				}

				continue
			}

			if err2 == nil {
				l.prevB()
			}
		}

		l.prevB()

		return nil
	}
}

// Next returns the next Token. At end of input it returns an EOF Token
// with a nil error; calling Next again after EOF keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipIgnored(); err != nil {
		return Token{}, err
	}

	begin := l.pos

	b, err := l.nextB()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Token{Kind: EOF, Pos: begin}, nil
		}

		return Token{}, err
	}

	switch b {
	case '=':
		return Token{Kind: Assign, Pos: begin}, nil
	case ',':
		return Token{Kind: Comma, Pos: begin}, nil
	case ';':
		return Token{Kind: Semicolon, Pos: begin}, nil
	case '(':
		return Token{Kind: LParen, Pos: begin}, nil
	case ')':
		return Token{Kind: RParen, Pos: begin}, nil
	case '{':
		return Token{Kind: LBrace, Pos: begin}, nil
	case '}':
		return Token{Kind: RBrace, Pos: begin}, nil
	case '"':
		return l.lexQuoted(begin)
	}

	if b >= '0' && b <= '9' {
		l.prevB()
		return l.lexNumber(begin)
	}

	if b == '-' {
		nb, nerr := l.nextB()
		if nerr == nil {
			l.prevB()
		}

		if nerr == nil && nb >= '0' && nb <= '9' {
			l.prevB()
			return l.lexNumber(begin)
		}

		return Token{}, NewPosError(l.node(), "'-' alone is not a valid token").SetCause(store.ErrLexerUnexpected)
	}

	l.prevB()

	return l.lexIdent(begin)
}

func (l *Lexer) lexQuoted(begin Pos) (Token, error) {
	var out []byte

	for {
		b, err := l.nextB()
		if err != nil {
			return Token{}, NewPosError(l.node(), "unterminated quoted string").SetCause(store.ErrParseUnterminated)
		}

		switch b {
		case '"':
			return Token{Kind: String, Pos: begin, Str: string(out)}, nil
		case '\\':
			b2, err2 := l.nextB()
			if err2 != nil {
				return Token{}, NewPosError(l.node(), "unterminated quoted string").SetCause(store.ErrParseUnterminated)
			}

			switch b2 {
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				out = append(out, '\\', b2)
			}
		default:
			out = append(out, b)
		}

		if len(out) > maxStringLen {
			return Token{}, NewPosError(l.node(), fmt.Sprintf("quoted string exceeds %d bytes", maxStringLen)).
				SetCause(store.ErrLexerOverflow)
		}
	}
}

func (l *Lexer) lexNumber(begin Pos) (Token, error) {
	var raw []byte

	b, _ := l.nextB()
	raw = append(raw, b)

	isFloat := false

	for {
		b, err := l.nextB()
		if err != nil {
			break
		}

		if b >= '0' && b <= '9' {
			raw = append(raw, b)
			continue
		}

		if b == '.' && !isFloat {
			isFloat = true
			raw = append(raw, b)

			continue
		}

		l.prevB()

		break
	}

	if isFloat {
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return Token{}, NewPosError(l.node(), "malformed float literal "+string(raw)).SetCause(store.ErrLexerOverflow)
		}

		return Token{Kind: Float, Pos: begin, Flt: f}, nil
	}

	i, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil {
		return Token{}, NewPosError(l.node(), "integer literal "+string(raw)+" out of range").SetCause(store.ErrLexerOverflow)
	}

	return Token{Kind: Integer, Pos: begin, Int: int32(i)}, nil
}

// identByte reports whether b may appear inside an unquoted identifier
// token. The caller is responsible for the two-byte '//' comment
// lookahead; a lone '/' is a legal identifier byte.
func identByte(b byte) bool {
	return !isSpace(b) && !isPunct(b) && b != '"' && b != '\\'
}

func (l *Lexer) lexIdent(begin Pos) (Token, error) {
	var out []byte

	first, err := l.nextB()
	if err != nil || !identByte(first) {
		if err != nil {
			return Token{}, NewPosError(l.node(), "unexpected end of input").SetCause(store.ErrLexerUnexpected)
		}

		return Token{}, NewPosError(l.node(), fmt.Sprintf("unexpected byte %q", first)).SetCause(store.ErrLexerUnexpected)
	}

	out = append(out, first)

	for {
		b, err := l.nextB()
		if err != nil {
			break
		}

		if b == '/' {
			b2, err2 := l.nextB()
			if err2 == nil {
				l.prevB()
			}

			if err2 == nil && b2 == '/' {
				l.prevB()
				break
			}

			out = append(out, b)

			continue
		}

		if !identByte(b) {
			l.prevB()
			break
		}

		out = append(out, b)
	}

	return Token{Kind: String, Pos: begin, Str: string(out)}, nil
}
