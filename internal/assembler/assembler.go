// Package assembler turns an ordered list of contract parts into the final
// compiled contract HTML.
package assembler

import (
	"sort"
	"strings"

	"github.com/agencykit/contractd/internal/builder"
	"github.com/agencykit/contractd/internal/template"
)

// Assemble compiles parts without a data bundle, for previewing. Tokens stay
// visible in the output.
func Assemble(parts []builder.Part) string {
	return AssembleWithData(parts, template.Context{})
}

// AssembleWithData compiles parts against a data bundle. Parts render in
// ascending order_index regardless of slice order; each part's content runs
// through the template engine and is wrapped in a titled section. Zero parts
// yield an empty string.
func AssembleWithData(parts []builder.Part, ctx template.Context) string {
	ordered := make([]builder.Part, len(parts))
	copy(ordered, parts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	var b strings.Builder
	for _, p := range ordered {
		writeSection(&b, p.Title, template.Render(p.Content, ctx))
	}
	return b.String()
}

// writeSection wraps one rendered part in its titled container. Sections have
// no separator beyond their own bottom margin.
func writeSection(b *strings.Builder, title, body string) {
	b.WriteString(`<div class="contract-part" style="margin-bottom:2em;"><h2>`)
	b.WriteString(title)
	b.WriteString(`</h2>`)
	b.WriteString(body)
	b.WriteString(`</div>`)
}
