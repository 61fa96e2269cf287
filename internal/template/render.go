package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Render evaluates the template against ctx and returns the final HTML.
// Rendering is total: it never fails, and identical inputs always produce
// identical output. Missing data degrades to visible unresolved tokens so
// authors notice it in the preview.
func (t *Template) Render(ctx Context) string {
	var b strings.Builder
	for _, n := range t.Nodes {
		renderNode(&b, n, ctx)
	}
	return b.String()
}

// Render parses src and renders it against ctx in one step.
func Render(src string, ctx Context) string {
	return Parse(src).Render(ctx)
}

func renderNode(b *strings.Builder, n Node, ctx Context) {
	switch n := n.(type) {
	case TextNode:
		b.WriteString(n.Text)

	case VarNode:
		b.WriteString(resolveScalar(ctx.Scalars, n.Name))

	case PaymentsNode:
		if ctx.Related.Payments == nil {
			b.WriteString(openDelim + "payments" + closeDelim)
			return
		}
		b.WriteString(renderPaymentsTable(ctx.Related.Payments))

	case EachNode:
		renderEach(b, n, ctx)
	}
}

// resolveScalar looks name up in the scalar map, leaving the literal token in
// place when the value is absent or nil.
func resolveScalar(scalars map[string]interface{}, name string) string {
	v, ok := scalars[name]
	if !ok || v == nil {
		return openDelim + name + closeDelim
	}
	return stringify(v)
}

// stringify converts a scalar value to its template text form.
func stringify(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; integral values print without a
		// trailing ".0".
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renderEach expands a repeated region. Only the collections this engine
// knows about are expanded; anything else is re-emitted verbatim, as is a
// known collection that is absent from the context.
func renderEach(b *strings.Builder, n EachNode, ctx Context) {
	switch n.Collection {
	case "selectedMilestones":
		if ctx.Related.SelectedMilestones == nil {
			b.WriteString(reconstructEach(n))
			return
		}
		for _, m := range ctx.Related.SelectedMilestones {
			renderItem(b, n.Body, milestoneFields(m))
		}

	case "products":
		if ctx.Related.Products == nil {
			b.WriteString(reconstructEach(n))
			return
		}
		var total float64
		for _, p := range ctx.Related.Products {
			renderItem(b, n.Body, productFields(p))
			total += p.Price.Float64()
		}
		b.WriteString(renderProjectTotal(total))

	default:
		b.WriteString(reconstructEach(n))
	}
}

// renderItem renders an each body once with item-scoped field resolution.
// Tokens the item does not define stay literal; nested regions and payments
// tokens inside an item body are not expanded.
func renderItem(b *strings.Builder, body []Node, fields map[string]string) {
	for _, n := range body {
		switch n := n.(type) {
		case TextNode:
			b.WriteString(n.Text)
		case VarNode:
			if v, ok := fields[n.Name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(openDelim + n.Name + closeDelim)
			}
		case EachNode:
			b.WriteString(reconstructEach(n))
		case PaymentsNode:
			b.WriteString(openDelim + "payments" + closeDelim)
		}
	}
}

func milestoneFields(m Milestone) map[string]string {
	return map[string]string{
		"title":       m.Title,
		"description": m.Description,
	}
}

func productFields(p Product) map[string]string {
	title := p.Title
	if title == "" {
		title = p.Name
	}
	name := p.Name
	if name == "" {
		name = p.Title
	}
	return map[string]string{
		"title":       title,
		"name":        name,
		"description": p.Description,
		// Per-item price is suppressed; only the aggregate total is shown.
		"price":        "",
		"deliverables": renderDeliverables(p.Deliverables),
	}
}

// renderDeliverables renders a product's deliverables as an unordered list.
func renderDeliverables(items []Deliverable) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="deliverables">`)
	for _, d := range items {
		b.WriteString("<li>")
		b.WriteString(d.Title)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// renderProjectTotal emits the single aggregate cost block appended after a
// products region.
func renderProjectTotal(total float64) string {
	return `<p class="total-project-cost"><strong>Total Project Cost:</strong> ` +
		FormatUSD(total) + `</p>`
}

// renderPaymentsTable renders the payment schedule. The annotation column is
// present only when some payment carries both a due date and an alt due date.
func renderPaymentsTable(payments []Payment) string {
	if len(payments) == 0 {
		return `<p class="payment-schedule-empty"><em>No payment schedule has been specified.</em></p>`
	}

	withNotes := false
	for _, p := range payments {
		if p.DueDate != "" && p.AltDueDate != "" {
			withNotes = true
			break
		}
	}

	var b strings.Builder
	b.WriteString(`<table class="payment-schedule"><thead><tr>` +
		`<th>Payment</th><th>Amount</th><th>Due Date</th>`)
	if withNotes {
		b.WriteString(`<th>Notes</th>`)
	}
	b.WriteString(`</tr></thead><tbody>`)

	var total float64
	for _, p := range payments {
		total += p.Amount.Float64()
		b.WriteString(`<tr><td>`)
		b.WriteString(p.Title)
		b.WriteString(`</td><td>`)
		b.WriteString(FormatUSD(p.Amount.Float64()))
		b.WriteString(`</td><td>`)
		b.WriteString(resolveDueDate(p))
		b.WriteString(`</td>`)
		if withNotes {
			b.WriteString(`<td>`)
			if p.DueDate != "" && p.AltDueDate != "" {
				b.WriteString(p.AltDueDate)
			}
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}

	b.WriteString(`<tr class="payment-total"><td><strong>Total</strong></td><td><strong>`)
	b.WriteString(FormatUSD(total))
	b.WriteString(`</strong></td><td></td>`)
	if withNotes {
		b.WriteString(`<td></td>`)
	}
	b.WriteString(`</tr></tbody></table>`)

	return b.String()
}

// resolveDueDate picks the due date cell text: a localized due_date when one
// is set, else the free-text alt_due_date, else "TBD".
func resolveDueDate(p Payment) string {
	if p.DueDate != "" {
		if formatted, ok := FormatLongDate(p.DueDate); ok {
			return formatted
		}
		return p.DueDate
	}
	if p.AltDueDate != "" {
		return p.AltDueDate
	}
	return "TBD"
}
