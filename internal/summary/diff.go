package summary

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a compact line-oriented diff between a previously stored
// summary and its regenerated replacement, for display when a row is
// re-summarized with --force. Returns "" when the texts are equivalent
// after whitespace normalization.
func Diff(oldBullets, newBullets string) string {
	oldN := normalizeWhitespace(oldBullets)
	newN := normalizeWhitespace(newBullets)
	if oldN == newN {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldN, newN, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var out strings.Builder
	for _, d := range diffs {
		text := d.Text
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			out.WriteString("{+")
			out.WriteString(text)
			out.WriteString("+}")
		case diffmatchpatch.DiffDelete:
			out.WriteString("[-")
			out.WriteString(text)
			out.WriteString("-]")
		default:
			out.WriteString(text)
		}
	}
	return out.String()
}

// normalizeWhitespace trims trailing whitespace from each line and converts
// CRLF to LF so formatting churn does not show up as a content change.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
