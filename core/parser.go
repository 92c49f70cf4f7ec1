package core

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// maxNesting bounds how deeply arrays and dictionaries may nest.
const maxNesting = 512

// ReferenceResolver resolves indirect references. The parser uses it for
// stream /Length values stored as separate objects.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds objects from the tokens of a Lexer. It keeps a small
// lookahead buffer so "n g R" can be told apart from two integers.
type Parser struct {
	lex      *Lexer
	ahead    []Token
	resolver ReferenceResolver
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lex: NewLexer(r)}
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// peek returns the token i places ahead without consuming it. Comments are
// skipped.
func (p *Parser) peek(i int) (Token, error) {
	for len(p.ahead) <= i {
		tok, err := p.lex.NextToken()
		if err != nil {
			return Token{}, err
		}
		if tok.Type == TokenComment {
			continue
		}
		p.ahead = append(p.ahead, tok)
	}
	return p.ahead[i], nil
}

func (p *Parser) next() (Token, error) {
	tok, err := p.peek(0)
	if err != nil {
		return Token{}, err
	}
	p.ahead = p.ahead[1:]
	return tok, nil
}

// ParseObject parses the next direct object or reference. It returns io.EOF
// at the end of input.
func (p *Parser) ParseObject() (Object, error) {
	return p.object(0)
}

func (p *Parser) object(depth int) (Object, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("objects nested more than %d deep", maxNesting)
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		return p.integer(tok)
	case TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	case TokenString, TokenHexString:
		return String(tok.Value), nil
	case TokenName:
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.array(depth)
	case TokenDictStart:
		return p.dict(depth)
	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
	}
	return nil, fmt.Errorf("unexpected %s", tok)
}

// integer returns an Int, or an IndirectRef when tok starts "n g R".
func (p *Parser) integer(tok Token) (Object, error) {
	n, err := parseInt(tok.Value)
	if err != nil {
		return nil, err
	}

	gen, err := p.peek(0)
	if err != nil || gen.Type != TokenInteger {
		return Int(n), nil
	}
	r, err := p.peek(1)
	if err != nil || !r.Is("R") {
		return Int(n), nil
	}
	g, err := parseInt(gen.Value)
	if err != nil {
		return nil, err
	}
	p.ahead = p.ahead[2:]
	return IndirectRef{Number: int(n), Generation: int(g)}, nil
}

func (p *Parser) array(depth int) (Object, error) {
	arr := Array{}
	for {
		tok, err := p.peek(0)
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenArrayEnd:
			p.next()
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated array: %w", io.ErrUnexpectedEOF)
		}
		obj, err := p.object(depth + 1)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", len(arr), err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) dict(depth int) (Object, error) {
	dict := Dict{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary: %w", io.ErrUnexpectedEOF)
		case TokenName:
		default:
			return nil, fmt.Errorf("dictionary key: unexpected %s", tok)
		}

		key := string(tok.Value)
		value, err := p.object(depth + 1)
		if err != nil {
			return nil, fmt.Errorf("value of /%s: %w", key, err)
		}
		// A null value is the same as an absent key.
		if _, isNull := value.(Null); isNull {
			continue
		}
		dict[key] = value
	}
}

// expect consumes the keyword kw.
func (p *Parser) expect(kw string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if !tok.Is(kw) {
		return fmt.Errorf("expected %q, got %s", kw, tok)
	}
	return nil
}

// ParseIndirectObject parses "n g obj ... endobj", including a stream body
// when the object is a stream. A missing endobj after a complete object is
// tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	num, err := p.next()
	if err != nil {
		return nil, err
	}
	gen, err := p.next()
	if err != nil {
		return nil, err
	}
	if num.Type != TokenInteger || gen.Type != TokenInteger {
		return nil, fmt.Errorf("expected object header, got %s", num)
	}
	if err := p.expect("obj"); err != nil {
		return nil, err
	}
	n, err := parseInt(num.Value)
	if err != nil {
		return nil, err
	}
	g, err := parseInt(gen.Value)
	if err != nil {
		return nil, err
	}
	ref := IndirectRef{Number: int(n), Generation: int(g)}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", ref.Number, ref.Generation, err)
	}

	tok, err := p.peek(0)
	if err != nil {
		return nil, err
	}
	if tok.Is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream keyword after %T", ref.Number, ref.Generation, obj)
		}
		p.next()
		stream, err := p.stream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", ref.Number, ref.Generation, err)
		}
		obj = stream
		tok, err = p.peek(0)
		if err != nil {
			return nil, err
		}
	}
	if tok.Is("endobj") {
		p.next()
	}

	return &IndirectObject{Ref: ref, Object: obj}, nil
}

// stream reads the stream body that follows the stream keyword. The lexer
// must be positioned right after the keyword, which holds because the
// keyword was the last token read into the lookahead buffer.
func (p *Parser) stream(dict Dict) (*Stream, error) {
	if len(p.ahead) != 0 {
		return nil, errors.New("stream body: tokens buffered past stream keyword")
	}
	if err := p.lex.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("stream body: %w", err)
	}

	length, ok := p.streamLength(dict)
	var data []byte
	var err error
	if ok {
		data, err = p.lex.ReadStreamData(length)
	} else {
		data, err = p.lex.ReadUntilEndstream()
	}
	if err != nil {
		return nil, err
	}

	if err := p.expect("endstream"); err != nil {
		return nil, fmt.Errorf("stream of /Length %d: %w", length, err)
	}
	return &Stream{Dict: dict, Data: data}, nil
}

// streamLength returns /Length, resolving it when it is a reference. It
// reports false when the length is unusable and the body must be found by
// scanning for endstream.
func (p *Parser) streamLength(dict Dict) (int, bool) {
	var obj Object = dict.Get("Length")
	if ref, isRef := obj.(IndirectRef); isRef {
		if p.resolver == nil {
			return 0, false
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, false
		}
		obj = resolved
	}
	n, ok := obj.(Int)
	if !ok || n < 0 {
		return 0, false
	}
	return int(n), true
}
