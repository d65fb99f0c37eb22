package analysis

import (
	"strconv"
	"strings"

	"github.com/frahmantamala/financial-analyst/internal/financial"
)

// RenderTable writes the table as a GitHub-flavored Markdown table with one
// row per fiscal year.
func RenderTable(t *financial.Table) string {
	var b strings.Builder

	b.WriteString("| Year |")
	for _, c := range t.Columns {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n|---|")
	for range t.Columns {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for _, r := range t.Rows {
		b.WriteString("| ")
		b.WriteString(strconv.Itoa(r.Year))
		b.WriteString(" |")
		for _, v := range r.Values {
			b.WriteString(" ")
			b.WriteString(v.String())
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
