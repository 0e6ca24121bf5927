// Package report turns a bulk run's tally into the human-readable status
// text shown to the user, and renders full run results for CLI and HTTP
// output. Message construction is pure; all counts come from the tally.
package report

import (
	"fmt"

	"samtrack/internal/bulk"
)

// abortedMessage is shown when a run never started because no provider
// credential was present. The remediation steps mirror the documented setup
// flow: the key is read once at startup, so a restart is required.
const abortedMessage = `AI summaries are disabled: no API key is configured.

To enable them:
1. Set the OPENAI_API_KEY environment variable to your API key.
2. Restart the samtrack server.
3. Retry the bulk summary generation.`

// noRowsMessage covers the degenerate configured-but-empty case. It must
// never be confusable with the aborted message.
const noRowsMessage = `No visible rows to summarize.`

// ProgressMessage formats the per-row progress line shown while a bulk run
// is underway.
func ProgressMessage(processed, total int) string {
	return fmt.Sprintf("Processing... %d/%d completed", processed, total)
}

// CompletionMessage maps a run tally onto one of three completion states:
// aborted (missing configuration), complete success, or partial success.
// An empty configured run gets its own no-rows text.
func CompletionMessage(r bulk.Report) string {
	switch {
	case r.Aborted:
		return abortedMessage
	case r.Attempted == 0:
		return noRowsMessage
	case r.Successful == r.Attempted:
		return fmt.Sprintf("AI summary generation complete!\n\nProcessed: %d rows\nSuccessful: %d summaries",
			r.Attempted, r.Successful)
	default:
		return fmt.Sprintf("AI summary generation finished with failures.\n\nProcessed: %d rows\nSuccessful: %d summaries\n\nFailed rows carry their error message in place of a summary.",
			r.Attempted, r.Successful)
	}
}
