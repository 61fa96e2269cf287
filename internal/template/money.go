package template

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Contracts are rendered for US clients; amounts and dates use en-US forms.
var enUS = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders an amount as US currency with thousands separators and
// two fraction digits, e.g. 1234.5 -> "$1,234.50".
func FormatUSD(v float64) string {
	return enUS.Sprintf("$%.2f", v)
}

// dateLayouts are the wire formats accepted for due dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// FormatLongDate parses a due date string and renders it in long en-US form,
// e.g. "2024-01-01" -> "January 1, 2024". The second return is false when the
// input matches none of the accepted layouts.
func FormatLongDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006"), true
		}
	}
	return "", false
}
