package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"samtrack/internal/bulk"
)

// RowResult is one row's outcome in a rendered run result.
type RowResult struct {
	NoticeID string `json:"notice_id"`
	Summary  string `json:"summary,omitempty"`
	Error    string `json:"error,omitempty"`
	// Diff is set when regeneration replaced an existing summary with
	// different content.
	Diff string `json:"diff,omitempty"`
}

// RunResult is the full output of one bulk run: the tally, the completion
// message, and per-row detail.
type RunResult struct {
	Report  bulk.Report `json:"report"`
	Message string      `json:"message"`
	Rows    []RowResult `json:"rows,omitempty"`
}

// Renderer formats a RunResult into bytes for output.
type Renderer interface {
	Render(res *RunResult) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "text" (default), "json".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "text":
		return &textRenderer{}, nil
	case "json":
		return &jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are text, json", format)
	}
}

type jsonRenderer struct{}

func (r *jsonRenderer) Render(res *RunResult) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

type textRenderer struct{}

var textTemplate = template.Must(template.New("run").Parse(`{{ .Message }}
{{ range .Rows }}
--- {{ .NoticeID }} ---
{{ if .Error }}ERROR: {{ .Error }}{{ else }}{{ .Summary }}{{ end }}
{{- if .Diff }}
changed from stored summary:
{{ .Diff }}
{{- end }}
{{ end }}`))

func (r *textRenderer) Render(res *RunResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
