package extraction

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/frahmantamala/financial-analyst/internal/financial"
)

const extractionPromptTemplate = `You are an expert financial analyst. Read the financial statement text below and extract the following metrics for the two most recent fiscal years it reports:

%s

Respond with JSON only. Use the fiscal year (for example "2024") as the top-level key and an object mapping each metric name above to its numeric value as the value. Use null when a metric cannot be found. Do not add commentary.

Financial statement text:
"""
%s
"""`

// BuildExtractionPrompt embeds the document text in the fixed extraction
// prompt.
func BuildExtractionPrompt(text string) string {
	var list strings.Builder
	for _, m := range financial.CanonicalMetrics {
		list.WriteString("- ")
		list.WriteString(m)
		list.WriteString("\n")
	}
	return fmt.Sprintf(extractionPromptTemplate, strings.TrimRight(list.String(), "\n"), text)
}

// Truncate keeps at most limit characters of text. A non-positive limit
// disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
