package core

import "strings"

// OutputFormat is how execution results should be rendered or saved.
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

var csvPhrases = []string{
	"to csv", "as csv", "csv file", "export csv", "save csv", "in csv",
}

var markdownPhrases = []string{
	"markdown table", "md table", "as markdown", "to markdown",
}

// matchesIntent reports whether the natural-language question contains any
// of the execution-intent keywords. Matching is substring-based and
// case-insensitive, applied to the question text, never to generated SQL.
func matchesIntent(question string, keywords []string) bool {
	lower := strings.ToLower(question)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// detectFormat picks an output format from phrasing in the question.
// CSV wins over markdown when both appear.
func detectFormat(question string) OutputFormat {
	lower := strings.ToLower(question)
	for _, p := range csvPhrases {
		if strings.Contains(lower, p) {
			return FormatCSV
		}
	}
	for _, p := range markdownPhrases {
		if strings.Contains(lower, p) {
			return FormatMarkdown
		}
	}
	return FormatTable
}
