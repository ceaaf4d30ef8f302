// Package tsparse is the source-introspection boundary: it reads a
// restricted TypeScript declaration dialect (type aliases and interfaces
// with documentation-comment blocks) and produces type-graph nodes for the
// conversion engine. It understands exactly the shapes the engine can
// convert — primitives, string-literal unions, arrays, nested object
// literals, the bare object marker and named references within one file —
// and classifies everything else as opaque.
package tsparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsinput/tsinput/internal/typegraph"
)

// File holds the declarations found in one source file, in source order.
type File struct {
	Declarations []typegraph.Declaration
}

// Lookup returns the declaration with the given name.
func (f *File) Lookup(name string) (typegraph.Declaration, bool) {
	for _, d := range f.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return typegraph.Declaration{}, false
}

// Names returns the declaration names in source order.
func (f *File) Names() []string {
	names := make([]string, len(f.Declarations))
	for i, d := range f.Declarations {
		names[i] = d.Name
	}
	return names
}

// Parse scans source text for top-level type declarations.
func Parse(src string) (*File, error) {
	s := &scanner{input: src}
	raw, err := s.scanTopLevel()
	if err != nil {
		return nil, err
	}

	exprs := make(map[string]string, len(raw))
	for _, d := range raw {
		exprs[d.name] = d.expr
	}

	file := &File{}
	for _, d := range raw {
		r := &resolver{exprs: exprs, visiting: map[string]bool{}}
		node := r.parseExpr(d.expr)
		file.Declarations = append(file.Declarations, typegraph.Declaration{
			Name: d.name,
			Doc:  d.doc,
			Type: node,
		})
	}
	return file, nil
}

type rawDecl struct {
	name string
	doc  string
	expr string
}

// scanner extracts raw declaration texts, tracking documentation blocks.
type scanner struct {
	input string
	pos   int
	doc   string
}

func (s *scanner) scanTopLevel() ([]rawDecl, error) {
	var decls []rawDecl
	for s.pos < len(s.input) {
		s.skipTrivia(true)
		if s.pos >= len(s.input) {
			break
		}
		word := s.peekWord()
		switch word {
		case "export", "declare":
			s.pos += len(word)
			continue
		case "type":
			d, err := s.scanTypeAlias()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		case "interface":
			d, err := s.scanInterface()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		default:
			// Anything else at the top level (imports, constants, functions)
			// is skipped statement by statement.
			s.skipStatement()
			s.doc = ""
		}
	}
	return decls, nil
}

func (s *scanner) scanTypeAlias() (rawDecl, error) {
	doc := s.doc
	s.doc = ""
	s.pos += len("type")
	s.skipTrivia(false)
	name := s.readIdent()
	if name == "" {
		return rawDecl{}, fmt.Errorf("type keyword without a name at offset %d", s.pos)
	}
	s.skipTrivia(false)
	if s.pos >= len(s.input) || s.input[s.pos] != '=' {
		return rawDecl{}, fmt.Errorf("type %s: expected '='", name)
	}
	s.pos++
	expr, err := s.readBalancedUntilSemicolon()
	if err != nil {
		return rawDecl{}, fmt.Errorf("type %s: %w", name, err)
	}
	return rawDecl{name: name, doc: doc, expr: strings.TrimSpace(expr)}, nil
}

func (s *scanner) scanInterface() (rawDecl, error) {
	doc := s.doc
	s.doc = ""
	s.pos += len("interface")
	s.skipTrivia(false)
	name := s.readIdent()
	if name == "" {
		return rawDecl{}, fmt.Errorf("interface keyword without a name at offset %d", s.pos)
	}
	s.skipTrivia(false)
	if s.pos >= len(s.input) || s.input[s.pos] != '{' {
		return rawDecl{}, fmt.Errorf("interface %s: expected '{'", name)
	}
	start := s.pos
	if err := s.skipBalancedBraces(); err != nil {
		return rawDecl{}, fmt.Errorf("interface %s: %w", name, err)
	}
	return rawDecl{name: name, doc: doc, expr: s.input[start:s.pos]}, nil
}

// readBalancedUntilSemicolon consumes up to the terminating ';' at depth 0,
// or end of input.
func (s *scanner) readBalancedUntilSemicolon() (string, error) {
	start := s.pos
	depth := 0
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		switch c {
		case '\'', '"', '`':
			if err := s.skipString(c); err != nil {
				return "", err
			}
			continue
		case '/':
			if s.skipComment() {
				continue
			}
		case '{', '[', '(', '<':
			depth++
		case '}', ']', ')', '>':
			depth--
		case ';':
			if depth == 0 {
				expr := s.input[start:s.pos]
				s.pos++
				return expr, nil
			}
		}
		s.pos++
	}
	return s.input[start:], nil
}

func (s *scanner) skipBalancedBraces() error {
	depth := 0
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		switch c {
		case '\'', '"', '`':
			if err := s.skipString(c); err != nil {
				return err
			}
			continue
		case '/':
			if s.skipComment() {
				continue
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s.pos++
				return nil
			}
		}
		s.pos++
	}
	return fmt.Errorf("unbalanced braces")
}

// skipStatement advances past one top-level statement.
func (s *scanner) skipStatement() {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		switch c {
		case '\'', '"', '`':
			_ = s.skipString(c)
			continue
		case '/':
			if s.skipComment() {
				continue
			}
		case '{':
			_ = s.skipBalancedBraces()
			continue
		case ';', '\n':
			s.pos++
			return
		}
		s.pos++
	}
}

// skipTrivia advances past whitespace and comments. Documentation blocks
// (/** … */) are remembered when capture is set so they can be attached to
// the next declaration.
func (s *scanner) skipTrivia(capture bool) {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			s.pos++
			continue
		}
		if c == '/' && s.pos+1 < len(s.input) {
			if s.input[s.pos+1] == '*' {
				start := s.pos
				s.skipBlockComment()
				if capture && strings.HasPrefix(s.input[start:], "/**") {
					s.doc = s.input[start:s.pos]
				}
				continue
			}
			if s.input[s.pos+1] == '/' {
				s.skipLineComment()
				continue
			}
		}
		return
	}
}

// skipComment consumes a comment when the scanner sits on one.
func (s *scanner) skipComment() bool {
	if s.pos+1 >= len(s.input) || s.input[s.pos] != '/' {
		return false
	}
	switch s.input[s.pos+1] {
	case '*':
		s.skipBlockComment()
		return true
	case '/':
		s.skipLineComment()
		return true
	}
	return false
}

func (s *scanner) skipBlockComment() {
	end := strings.Index(s.input[s.pos+2:], "*/")
	if end < 0 {
		s.pos = len(s.input)
		return
	}
	s.pos += 2 + end + 2
}

func (s *scanner) skipLineComment() {
	end := strings.IndexByte(s.input[s.pos:], '\n')
	if end < 0 {
		s.pos = len(s.input)
		return
	}
	s.pos += end + 1
}

func (s *scanner) skipString(quote byte) error {
	s.pos++
	for s.pos < len(s.input) {
		switch s.input[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return nil
		}
		s.pos++
	}
	return fmt.Errorf("unterminated string")
}

func (s *scanner) peekWord() string {
	end := s.pos
	for end < len(s.input) && isIdentByte(s.input[end]) {
		end++
	}
	return s.input[s.pos:end]
}

func (s *scanner) readIdent() string {
	start := s.pos
	for s.pos < len(s.input) && isIdentByte(s.input[s.pos]) {
		s.pos++
	}
	return s.input[start:s.pos]
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// resolver turns raw expression text into type-graph nodes, following named
// references within the file. Recursive references are not supported and
// resolve to an opaque node.
type resolver struct {
	exprs    map[string]string
	visiting map[string]bool
}

func (r *resolver) parseExpr(expr string) typegraph.Node {
	expr = strings.TrimSpace(stripComments(expr, false))

	// Unions first: split on top-level '|'.
	if parts := splitTopLevel(expr, '|'); len(parts) > 1 {
		node := typegraph.Node{Kind: typegraph.KindUnion}
		for _, part := range parts {
			node.Members = append(node.Members, r.parseExpr(part))
		}
		return node
	}

	// Array suffix: T[].
	if strings.HasSuffix(expr, "[]") {
		inner := strings.TrimSpace(expr[:len(expr)-2])
		if inner == "" {
			return typegraph.Node{Kind: typegraph.KindArray}
		}
		elem := r.parseExpr(inner)
		return typegraph.Node{Kind: typegraph.KindArray, Element: &elem}
	}

	// Generic array: Array<T>.
	if inner, ok := genericArgument(expr, "Array"); ok {
		elem := r.parseExpr(inner)
		return typegraph.Node{Kind: typegraph.KindArray, Element: &elem}
	}

	// Object literal body.
	if strings.HasPrefix(expr, "{") {
		return r.parseObjectBody(expr)
	}

	// Literals.
	if len(expr) >= 2 && (expr[0] == '\'' || expr[0] == '"') && expr[len(expr)-1] == expr[0] {
		return typegraph.Node{Kind: typegraph.KindLiteral, Value: expr[1 : len(expr)-1]}
	}
	if expr == "true" || expr == "false" {
		return typegraph.Node{Kind: typegraph.KindLiteral, Value: expr == "true"}
	}
	if f, err := strconv.ParseFloat(expr, 64); err == nil {
		return typegraph.Node{Kind: typegraph.KindLiteral, Value: f}
	}

	switch expr {
	case "string", "number", "boolean":
		return typegraph.Node{Kind: typegraph.KindPrimitive, Name: expr}
	case "object", "Record<string, unknown>", "Record<string, any>", "Record<string,unknown>", "Record<string,any>":
		return typegraph.Node{Kind: typegraph.KindAnyObject}
	}

	// Named reference within the file.
	if isIdentifier(expr) {
		if ref, ok := r.exprs[expr]; ok {
			if r.visiting[expr] {
				return typegraph.Node{Kind: typegraph.KindOpaque, Raw: expr + " (recursive reference)"}
			}
			r.visiting[expr] = true
			node := r.parseExpr(ref)
			delete(r.visiting, expr)
			if node.Name == "" {
				node.Name = expr
			}
			return node
		}
		// Unknown identifiers flow through as primitives; the walker's
		// permissive fallback decides what to make of them.
		return typegraph.Node{Kind: typegraph.KindPrimitive, Name: expr}
	}

	return typegraph.Node{Kind: typegraph.KindOpaque, Raw: expr}
}

// parseObjectBody parses "{ … }" into an object node with ordered fields.
func (r *resolver) parseObjectBody(expr string) typegraph.Node {
	body := strings.TrimSpace(expr)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")

	node := typegraph.Node{Kind: typegraph.KindObject}
	for _, member := range splitMembers(body) {
		field, ok := r.parseMember(member)
		if !ok {
			continue
		}
		node.Fields = append(node.Fields, field)
	}
	return node
}

// parseMember parses one "name?: type" member, with its optional leading
// documentation block.
func (r *resolver) parseMember(member string) (typegraph.Field, bool) {
	doc := ""
	text := strings.TrimSpace(member)
	for strings.HasPrefix(text, "/*") {
		end := strings.Index(text, "*/")
		if end < 0 {
			return typegraph.Field{}, false
		}
		if strings.HasPrefix(text, "/**") {
			doc = text[:end+2]
		}
		text = strings.TrimSpace(text[end+2:])
	}
	if text == "" {
		return typegraph.Field{}, false
	}

	colon := topLevelIndex(text, ':')
	if colon < 0 {
		return typegraph.Field{}, false
	}
	name := strings.TrimSpace(text[:colon])
	optional := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")
	name = strings.Trim(name, "'\"")
	if name == "" {
		return typegraph.Field{}, false
	}

	return typegraph.Field{
		Name:     name,
		Doc:      doc,
		Optional: optional,
		Type:     r.parseExpr(text[colon+1:]),
	}, true
}

// splitMembers splits an object body on top-level ';' and ',' separators.
func splitMembers(body string) []string {
	var members []string
	depth := 0
	start := 0
	i := 0
	for i < len(body) {
		c := body[i]
		switch c {
		case '\'', '"', '`':
			i = skipStringAt(body, i)
			continue
		case '/':
			if next := skipCommentAt(body, i); next > i {
				i = next
				continue
			}
		case '{', '[', '(', '<':
			depth++
		case '}', ']', ')', '>':
			depth--
		case ';', ',':
			if depth == 0 {
				members = append(members, body[start:i])
				start = i + 1
			}
		}
		i++
	}
	if tail := strings.TrimSpace(body[start:]); tail != "" {
		members = append(members, body[start:])
	}
	return members
}

// splitTopLevel splits on a separator byte at bracket depth 0, ignoring
// string and comment content.
func splitTopLevel(expr string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch c {
		case '\'', '"', '`':
			i = skipStringAt(expr, i)
			continue
		case '/':
			if next := skipCommentAt(expr, i); next > i {
				i = next
				continue
			}
		case '{', '[', '(', '<':
			depth++
		case '}', ']', ')', '>':
			depth--
		default:
			if c == sep && depth == 0 {
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				start = i + 1
			}
		}
		i++
	}
	parts = append(parts, strings.TrimSpace(expr[start:]))
	return parts
}

// topLevelIndex finds the first occurrence of sep at bracket depth 0.
func topLevelIndex(expr string, sep byte) int {
	depth := 0
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch c {
		case '\'', '"', '`':
			i = skipStringAt(expr, i)
			continue
		case '{', '[', '(', '<':
			depth++
		case '}', ']', ')', '>':
			depth--
		default:
			if c == sep && depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// genericArgument extracts T from "Name<T>".
func genericArgument(expr, name string) (string, bool) {
	if !strings.HasPrefix(expr, name+"<") || !strings.HasSuffix(expr, ">") {
		return "", false
	}
	return strings.TrimSpace(expr[len(name)+1 : len(expr)-1]), true
}

// stripComments removes non-documentation comments from expression text.
// Documentation blocks are kept: they belong to members and are consumed by
// parseMember.
func stripComments(expr string, stripDocs bool) string {
	var b strings.Builder
	i := 0
	for i < len(expr) {
		c := expr[i]
		if c == '\'' || c == '"' || c == '`' {
			next := skipStringAt(expr, i)
			b.WriteString(expr[i:next])
			i = next
			continue
		}
		if c == '/' && i+1 < len(expr) {
			if expr[i+1] == '*' {
				isDoc := strings.HasPrefix(expr[i:], "/**")
				end := strings.Index(expr[i+2:], "*/")
				if end < 0 {
					break
				}
				if isDoc && !stripDocs {
					b.WriteString(expr[i : i+2+end+2])
				}
				i += 2 + end + 2
				continue
			}
			if expr[i+1] == '/' {
				end := strings.IndexByte(expr[i:], '\n')
				if end < 0 {
					break
				}
				i += end
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func skipStringAt(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		}
		i++
	}
	return i
}

func skipCommentAt(s string, i int) int {
	if i+1 >= len(s) || s[i] != '/' {
		return i
	}
	switch s[i+1] {
	case '*':
		end := strings.Index(s[i+2:], "*/")
		if end < 0 {
			return len(s)
		}
		return i + 2 + end + 2
	case '/':
		end := strings.IndexByte(s[i:], '\n')
		if end < 0 {
			return len(s)
		}
		return i + end + 1
	}
	return i
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
		if i == 0 && s[i] >= '0' && s[i] <= '9' {
			return false
		}
	}
	return true
}
