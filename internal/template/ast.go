// Package template implements the contract mini-templating language.
//
// A template is plain HTML carrying three token forms:
//
//	{{field}}                          scalar reference
//	{{#each collection}}...{{/each}}   repeated region over a named array
//	{{payments}}                       payment schedule table
//
// Templates are parsed once into a small AST and evaluated against a typed
// context. Scoping is structural: item fields inside an each region never
// collide with top-level scalars of the same name.
package template

import (
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
	eachPrefix = "#each "
	eachClose  = "{{/each}}"
	eachOpen   = "{{#each "
)

// Node is a parsed template element.
type Node interface {
	node()
}

// TextNode is a literal run of template text.
type TextNode struct {
	Text string
}

// VarNode is a {{name}} scalar reference.
type VarNode struct {
	Name string
}

// EachNode is a {{#each collection}}...{{/each}} region. Raw holds the
// original body text so the region can be re-emitted verbatim when the
// collection is absent from the context.
type EachNode struct {
	Collection string
	Body       []Node
	Raw        string
}

// PaymentsNode is the {{payments}} schedule token.
type PaymentsNode struct{}

func (TextNode) node()     {}
func (VarNode) node()      {}
func (EachNode) node()     {}
func (PaymentsNode) node() {}

// Template is a parsed template ready for rendering.
type Template struct {
	Nodes []Node
}

// Parse tokenizes src into a Template. Parse never fails: malformed token
// syntax (unclosed delimiters, unmatched each tags, names with illegal
// characters) degrades to literal text so authoring mistakes stay visible
// in the rendered output.
func Parse(src string) *Template {
	nodes, _ := parseNodes(src, false)
	return &Template{Nodes: nodes}
}

// parseNodes parses src until the end, or until an {{/each}} terminator when
// inEach is set. It returns the parsed nodes and the number of bytes consumed.
func parseNodes(src string, inEach bool) ([]Node, int) {
	var nodes []Node
	var text strings.Builder
	pos := 0

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, TextNode{Text: text.String()})
			text.Reset()
		}
	}

	for pos < len(src) {
		open := strings.Index(src[pos:], openDelim)
		if open < 0 {
			text.WriteString(src[pos:])
			pos = len(src)
			break
		}

		text.WriteString(src[pos : pos+open])
		pos += open

		if inEach && strings.HasPrefix(src[pos:], eachClose) {
			flush()
			return nodes, pos + len(eachClose)
		}

		end := strings.Index(src[pos+len(openDelim):], closeDelim)
		if end < 0 {
			// No closing delimiter anywhere ahead; the rest is literal.
			text.WriteString(src[pos:])
			pos = len(src)
			break
		}

		inner := src[pos+len(openDelim) : pos+len(openDelim)+end]
		tagLen := len(openDelim) + end + len(closeDelim)

		switch {
		case strings.HasPrefix(inner, eachPrefix):
			name := strings.TrimSpace(inner[len(eachPrefix):])
			if !validTokenName(name) {
				text.WriteString(src[pos : pos+tagLen])
				pos += tagLen
				continue
			}
			bodyStart := pos + tagLen
			body, consumed := parseNodes(src[bodyStart:], true)
			if consumed == 0 {
				// Unterminated each region: keep the open tag as text.
				text.WriteString(src[pos : pos+tagLen])
				pos += tagLen
				continue
			}
			flush()
			raw := src[bodyStart : bodyStart+consumed-len(eachClose)]
			nodes = append(nodes, EachNode{Collection: name, Body: body, Raw: raw})
			pos = bodyStart + consumed

		case inner == "payments":
			flush()
			nodes = append(nodes, PaymentsNode{})
			pos += tagLen

		case validTokenName(inner):
			flush()
			nodes = append(nodes, VarNode{Name: inner})
			pos += tagLen

		default:
			// Not a recognizable token, e.g. "{{ }}" or a stray "{{/each}}"
			// outside a region. Emit as-is.
			text.WriteString(src[pos : pos+tagLen])
			pos += tagLen
		}
	}

	flush()
	if inEach {
		// Ran off the end without finding {{/each}}.
		return nil, 0
	}
	return nodes, pos
}

// validTokenName reports whether s is usable as a field or collection name.
func validTokenName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		ok := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// reconstructEach rebuilds the verbatim source of an each region, used when
// the named collection is absent from the rendering context.
func reconstructEach(n EachNode) string {
	return eachOpen + n.Collection + closeDelim + n.Raw + eachClose
}
