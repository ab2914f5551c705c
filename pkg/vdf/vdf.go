// Package vdf parses the recursive key/value text format Steam uses for
// app manifests and library index files:
//
//	"AppState"
//	{
//		"appid"		"440"
//		"installdir"	"Team Fortress 2"
//	}
//
// Keys and values are quoted or bare tokens, blocks are delimited by braces,
// and // starts a comment running to the end of the line.
package vdf

import (
	"fmt"
	"io"
	"strings"
)

// Node is either a key/value pair or a named block of child nodes
type Node struct {
	Key      string
	Value    string
	Children []*Node
	IsBlock  bool
}

// Parse reads a whole document. The returned root is an unnamed block whose
// children are the top-level entries.
func Parse(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

// ParseString parses a document held in memory
func ParseString(s string) (*Node, error) {
	p := &parser{lex: &lexer{input: s, line: 1}}
	root := &Node{IsBlock: true}
	if err := p.parseBlock(root, true); err != nil {
		return nil, err
	}
	return root, nil
}

// Get returns the first child whose key matches, ignoring case
func (n *Node) Get(key string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Key, key) {
			return c
		}
	}
	return nil
}

// Find follows a path of keys from n
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, key := range path {
		cur = cur.Get(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// String returns the value of the key/value child named key
func (n *Node) String(key string) (string, bool) {
	c := n.Get(key)
	if c == nil || c.IsBlock {
		return "", false
	}
	return c.Value, true
}

// Walk visits n and every descendant depth-first, in document order
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOpen
	tokClose
	tokCondition
)

type token struct {
	kind tokenKind
	text string
	line int
}

type parser struct {
	lex    *lexer
	peeked *token
}

func (p *parser) next() (token, error) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, nil
	}
	return p.lex.next()
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return t, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) parseBlock(parent *Node, top bool) error {
	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		switch t.kind {
		case tokEOF:
			if !top {
				return fmt.Errorf("line %d: unexpected end of input, missing '}'", t.line)
			}
			return nil
		case tokClose:
			if top {
				return fmt.Errorf("line %d: unexpected '}'", t.line)
			}
			return nil
		case tokOpen:
			return fmt.Errorf("line %d: block without a key", t.line)
		case tokCondition:
			continue
		}

		key := t.text
		v, err := p.next()
		if err != nil {
			return err
		}
		// A platform condition may sit between key and block
		if v.kind == tokCondition {
			if v, err = p.next(); err != nil {
				return err
			}
		}

		switch v.kind {
		case tokOpen:
			child := &Node{Key: key, IsBlock: true}
			if err := p.parseBlock(child, false); err != nil {
				return err
			}
			parent.Children = append(parent.Children, child)
		case tokString:
			parent.Children = append(parent.Children, &Node{Key: key, Value: v.text})
			nt, err := p.peek()
			if err != nil {
				return err
			}
			if nt.kind == tokCondition {
				_, _ = p.next()
			}
		default:
			return fmt.Errorf("line %d: key %q has no value", v.line, key)
		}
	}
}

type lexer struct {
	input string
	pos   int
	line  int
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	c := l.input[l.pos]
	switch c {
	case '{':
		l.pos++
		return token{kind: tokOpen, line: l.line}, nil
	case '}':
		l.pos++
		return token{kind: tokClose, line: l.line}, nil
	case '"':
		return l.quoted()
	case '[':
		end := strings.IndexByte(l.input[l.pos:], ']')
		if end < 0 {
			return token{}, fmt.Errorf("line %d: unterminated condition", l.line)
		}
		text := l.input[l.pos : l.pos+end+1]
		l.pos += end + 1
		return token{kind: tokCondition, text: text, line: l.line}, nil
	}

	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"' {
			break
		}
		l.pos++
	}
	return token{kind: tokString, text: l.input[start:l.pos], line: l.line}, nil
}

func (l *lexer) quoted() (token, error) {
	startLine := l.line
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: sb.String(), line: startLine}, nil
		case '\\':
			if l.pos+1 < len(l.input) {
				l.pos++
				switch esc := l.input[l.pos]; esc {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case '\\', '"':
					sb.WriteByte(esc)
				default:
					// Unknown escapes are kept verbatim; Windows paths rely on it.
					sb.WriteByte('\\')
					sb.WriteByte(esc)
				}
				l.pos++
				continue
			}
		case '\n':
			l.line++
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("line %d: unterminated string", startLine)
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case strings.HasPrefix(l.input[l.pos:], "\ufeff"):
			l.pos += len("\ufeff")
		default:
			return
		}
	}
}
