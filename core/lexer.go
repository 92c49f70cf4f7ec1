package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// TokenType identifies the kind of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword    // obj, endobj, stream, R, true, null, ...
	TokenInteger    // 42, -7, +3
	TokenReal       // 3.14, -.5, 4.
	TokenString     // (literal), escapes already processed
	TokenHexString  // <48656C6C6F>, Value holds the decoded bytes
	TokenName       // /Type, #XX escapes already processed
	TokenArrayStart // [
	TokenArrayEnd   // ]
	TokenDictStart  // <<
	TokenDictEnd    // >>
)

var tokenNames = [...]string{
	TokenEOF:        "EOF",
	TokenComment:    "comment",
	TokenKeyword:    "keyword",
	TokenInteger:    "integer",
	TokenReal:       "real",
	TokenString:     "string",
	TokenHexString:  "hex string",
	TokenName:       "name",
	TokenArrayStart: "[",
	TokenArrayEnd:   "]",
	TokenDictStart:  "<<",
	TokenDictEnd:    ">>",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexical token. Pos is the offset of its first byte.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Type == TokenKeyword && string(t.Value) == kw
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q at %d", t.Type, t.Value, t.Pos)
}

// Lexer splits PDF syntax into tokens. It never reads past the token it
// returns, so after the stream keyword the raw stream bytes can be taken
// with ReadStreamData.
type Lexer struct {
	r   *bufio.Reader
	pos int64
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Pos returns the offset of the next unread byte.
func (l *Lexer) Pos() int64 {
	return l.pos
}

func (l *Lexer) peek() (byte, error) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *Lexer) read() (byte, error) {
	b, err := l.r.ReadByte()
	if err == nil {
		l.pos++
	}
	return b, err
}

// ReadByte reads a single raw byte.
func (l *Lexer) ReadByte() (byte, error) {
	return l.read()
}

// NextToken returns the next token. At the end of input it returns a
// TokenEOF token and a nil error.
func (l *Lexer) NextToken() (Token, error) {
	var c byte
	for {
		b, err := l.peek()
		if errors.Is(err, io.EOF) {
			return Token{Type: TokenEOF, Pos: l.pos}, nil
		}
		if err != nil {
			return Token{}, err
		}
		if !isWhitespace(b) {
			c = b
			break
		}
		l.read()
	}

	start := l.pos
	switch c {
	case '%':
		return l.comment(start)
	case '(':
		return l.literal(start)
	case '/':
		return l.name(start)
	case '[':
		l.read()
		return Token{Type: TokenArrayStart, Value: []byte("["), Pos: start}, nil
	case ']':
		l.read()
		return Token{Type: TokenArrayEnd, Value: []byte("]"), Pos: start}, nil
	case '<':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '<' {
			l.read()
			l.read()
			return Token{Type: TokenDictStart, Value: []byte("<<"), Pos: start}, nil
		}
		return l.hex(start)
	case '>':
		if next, _ := l.r.Peek(2); len(next) == 2 && next[1] == '>' {
			l.read()
			l.read()
			return Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: start}, nil
		}
		return Token{}, fmt.Errorf("unexpected '>' at %d", start)
	case ')', '{', '}':
		return Token{}, fmt.Errorf("unexpected %q at %d", c, start)
	}
	return l.regular(start)
}

// comment reads to the end of the line. The line ending is left unread.
func (l *Lexer) comment(start int64) (Token, error) {
	var buf []byte
	for {
		b, err := l.peek()
		if errors.Is(err, io.EOF) || b == '\r' || b == '\n' {
			break
		}
		if err != nil {
			return Token{}, err
		}
		l.read()
		buf = append(buf, b)
	}
	return Token{Type: TokenComment, Value: buf, Pos: start}, nil
}

// literal reads a parenthesised string, balancing nested parentheses and
// processing escapes.
func (l *Lexer) literal(start int64) (Token, error) {
	l.read()
	var buf []byte
	depth := 1
	for {
		b, err := l.read()
		if err != nil {
			return Token{}, fmt.Errorf("unterminated string at %d: %w", start, io.ErrUnexpectedEOF)
		}
		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf, Pos: start}, nil
			}
		case '\\':
			e, err := l.read()
			if err != nil {
				return Token{}, fmt.Errorf("unterminated string at %d: %w", start, io.ErrUnexpectedEOF)
			}
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r':
				if next, err := l.peek(); err == nil && next == '\n' {
					l.read()
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := e - '0'
				for range 2 {
					d, err := l.peek()
					if err != nil || d < '0' || d > '7' {
						break
					}
					l.read()
					v = v<<3 | (d - '0')
				}
				buf = append(buf, v)
			default:
				buf = append(buf, e)
			}
			continue
		}
		buf = append(buf, b)
	}
}

// hex reads a <...> string and decodes it. An odd final digit is padded
// with zero.
func (l *Lexer) hex(start int64) (Token, error) {
	l.read()
	var buf []byte
	var hi byte
	half := false
	for {
		b, err := l.read()
		if err != nil {
			return Token{}, fmt.Errorf("unterminated hex string at %d: %w", start, io.ErrUnexpectedEOF)
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		v, ok := hexDigit(b)
		if !ok {
			return Token{}, fmt.Errorf("invalid hex digit %q at %d", b, l.pos-1)
		}
		if half {
			buf = append(buf, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		buf = append(buf, hi<<4)
	}
	return Token{Type: TokenHexString, Value: buf, Pos: start}, nil
}

// name reads /Name, decoding #XX escapes.
func (l *Lexer) name(start int64) (Token, error) {
	l.read()
	raw := l.run()
	buf := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			hi, ok1 := hexDigit(raw[i+1])
			lo, ok2 := hexDigit(raw[i+2])
			if ok1 && ok2 {
				buf = append(buf, hi<<4|lo)
				i += 2
				continue
			}
		}
		buf = append(buf, raw[i])
	}
	return Token{Type: TokenName, Value: buf, Pos: start}, nil
}

// regular reads a run of regular characters and classifies it as a number
// or a keyword.
func (l *Lexer) regular(start int64) (Token, error) {
	raw := l.run()
	typ := TokenKeyword
	switch {
	case isInteger(raw):
		typ = TokenInteger
	case isReal(raw):
		typ = TokenReal
	}
	return Token{Type: typ, Value: raw, Pos: start}, nil
}

// run consumes bytes up to the next whitespace or delimiter.
func (l *Lexer) run() []byte {
	var buf []byte
	for {
		b, err := l.peek()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			return buf
		}
		l.read()
		buf = append(buf, b)
	}
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword: LF, CR LF, or a lone CR as some writers produce.
func (l *Lexer) SkipStreamEOL() error {
	for {
		b, err := l.peek()
		if err != nil {
			return err
		}
		if b != ' ' && b != '\t' {
			break
		}
		l.read()
	}
	b, err := l.peek()
	if err != nil {
		return err
	}
	switch b {
	case '\n':
		l.read()
	case '\r':
		l.read()
		if next, err := l.peek(); err == nil && next == '\n' {
			l.read()
		}
	}
	return nil
}

// ReadStreamData reads exactly n raw bytes.
func (l *Lexer) ReadStreamData(n int) ([]byte, error) {
	data := make([]byte, n)
	read, err := io.ReadFull(l.r, data)
	l.pos += int64(read)
	if err != nil {
		return data[:read], fmt.Errorf("stream data: want %d bytes, got %d: %w", n, read, io.ErrUnexpectedEOF)
	}
	return data, nil
}

// ReadUntilEndstream reads raw bytes up to the endstream keyword, which is
// left unread. The end-of-line marker before the keyword is dropped.
func (l *Lexer) ReadUntilEndstream() ([]byte, error) {
	marker := []byte("endstream")
	var data []byte
	for {
		if next, _ := l.r.Peek(len(marker)); bytes.Equal(next, marker) {
			break
		}
		b, err := l.read()
		if err != nil {
			return nil, fmt.Errorf("stream data: no endstream: %w", io.ErrUnexpectedEOF)
		}
		data = append(data, b)
	}
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	return data, nil
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func isInteger(raw []byte) bool {
	digits := bytes.TrimLeft(raw, "+-")
	if len(raw)-len(digits) > 1 || len(digits) == 0 {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isReal(raw []byte) bool {
	digits := bytes.TrimLeft(raw, "+-")
	if len(raw)-len(digits) > 1 || bytes.Count(digits, []byte(".")) != 1 || len(digits) < 2 {
		return false
	}
	for _, c := range digits {
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// parseInt parses an integer token, saturating values that do not fit.
func parseInt(raw []byte) (int64, error) {
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return n, nil
}
