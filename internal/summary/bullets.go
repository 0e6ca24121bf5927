package summary

import (
	"fmt"
	"strings"
)

// bulletPrefix is the marker every summary line must start with.
const bulletPrefix = "• "

// wantBullets is the number of bullet points a well-formed summary carries.
const wantBullets = 5

// NormalizeBullets coerces raw model output into bullet-point form. Markdown
// fences are stripped, blank lines dropped, each remaining line prefixed with
// the bullet marker if missing, and at most five lines kept. Returns "" when
// nothing usable remains.
func NormalizeBullets(raw string) string {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, bulletPrefix) && countBullets(cleaned) == wantBullets {
		return cleaned
	}

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Common marker substitutions from models that ignore the format.
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		if !strings.HasPrefix(line, bulletPrefix) {
			line = bulletPrefix + line
		}
		lines = append(lines, line)
		if len(lines) == wantBullets {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// Validate checks that a normalized summary has exactly five bullet lines.
func Validate(bullets string) error {
	got := countBullets(bullets)
	if got != wantBullets {
		return fmt.Errorf("summary has %d bullet points, want %d", got, wantBullets)
	}
	return nil
}

func countBullets(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), bulletPrefix) {
			n++
		}
	}
	return n
}

// stripFences removes leading/trailing markdown code fences
// (```text ... ``` or ``` ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove first line (the fence opener)
		idx := strings.Index(s, "\n")
		if idx >= 0 {
			s = s[idx+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		idx := strings.LastIndex(s, "\n```")
		if idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
