package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"samtrack/internal/bulk"
	"samtrack/internal/config"
	"samtrack/internal/report"
	"samtrack/internal/store"
	"samtrack/internal/summary"
)

// maxDescriptionLen mirrors the summary client's input bound; oversized
// requests are rejected at the edge instead of silently truncated.
const maxDescriptionLen = 50000

type summaryRequest struct {
	Description string `json:"description"`
	NoticeID    string `json:"notice_id"`
}

type summaryResponse struct {
	OK      bool   `json:"ok"`
	Summary string `json:"summary,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, summaryResponse{OK: false, Message: fmt.Sprintf(format, args...)})
}

// validNoticeID accepts portal notice IDs: alphanumeric plus dashes and
// underscores, at most 100 characters.
func validNoticeID(id string) bool {
	if len(id) > 100 {
		return false
	}
	stripped := strings.NewReplacer("-", "", "_", "").Replace(id)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

// handleGenerateSummary summarizes a single description. A stored summary
// for the same notice ID is reused without a provider call.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	req.NoticeID = strings.TrimSpace(req.NoticeID)

	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "No description provided")
		return
	}
	if len(req.Description) > maxDescriptionLen {
		writeError(w, http.StatusBadRequest, "Description too long")
		return
	}
	if req.NoticeID != "" && !validNoticeID(req.NoticeID) {
		writeError(w, http.StatusBadRequest, "Invalid notice ID format")
		return
	}
	if !s.cfg.ProviderConfigured() {
		writeError(w, http.StatusInternalServerError, "AI provider API key not configured")
		return
	}

	if req.NoticeID != "" {
		if cached, err := s.store.GetSummary(req.NoticeID); err == nil && cached.Bullets != "" {
			writeJSON(w, http.StatusOK, summaryResponse{OK: true, Summary: cached.Bullets})
			return
		}
	}

	outcome := s.summarizer.Summarize(r.Context(), req.Description)
	if !outcome.OK() {
		writeError(w, http.StatusInternalServerError, "Failed to generate summary: %s", outcome.Err)
		return
	}

	if req.NoticeID != "" {
		if err := s.store.SaveSummary(req.NoticeID, outcome.Bullets); err != nil {
			s.logger.Warn("saving summary failed", zap.String("notice_id", req.NoticeID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, summaryResponse{OK: true, Summary: outcome.Bullets})
}

type bulkRequest struct {
	// Force regenerates rows that already have a stored summary.
	Force bool `json:"force"`
}

// handleBulkSummary runs one bulk summary run over the currently visible
// rows and returns the tally, the completion message, and per-row detail.
func (s *Server) handleBulkSummary(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if r.Body != nil {
		// Body is optional; decode errors on an empty body are fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	res, err := RunBulk(r.Context(), s.cfg, s.store, s.summarizer, req.Force, s.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bulk run failed: %s", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListRuns returns the most recent bulk runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing runs: %s", err)
		return
	}
	type runJSON struct {
		ID         string    `json:"id"`
		Attempted  int       `json:"attempted"`
		Successful int       `json:"successful"`
		Aborted    bool      `json:"aborted"`
		StartedAt  time.Time `json:"started_at"`
		FinishedAt time.Time `json:"finished_at"`
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON(run))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReloadInfo reports what is currently loaded. Development only.
func (s *Server) handleReloadInfo(w http.ResponseWriter, _ *http.Request) {
	rows, err := s.store.ListVisible()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing rows: %s", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":    len(rows),
		"db":      s.cfg.DBPath,
		"model":   s.cfg.Model,
		"has_key": s.cfg.ProviderConfigured(),
	})
}

// handleDiagRoutes lists the mounted routes. Development only.
func (s *Server) handleDiagRoutes(w http.ResponseWriter, _ *http.Request) {
	routes := []string{
		"POST /generate-ai-summary",
		"POST /bulk-summary",
		"GET /runs",
		"GET /reload-info",
		"GET /diag/routes",
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, strings.Join(routes, "\n"))
}

// RunBulk loads the visible rows, drives one bulk run over them, persists
// per-row outcomes and the run record, and assembles the full result. Rows
// with a stored summary are skipped unless force is set; forced
// regeneration reports a diff against the previous text. Shared by the
// bulk-summary endpoint and the summarize CLI command.
func RunBulk(ctx context.Context, cfg *config.Config, st *store.Store, sum Summarizer, force bool, logger *zap.Logger) (*report.RunResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opps, err := st.ListVisible()
	if err != nil {
		return nil, err
	}

	rows := make([]*bulk.Row, 0, len(opps))
	previous := make(map[string]string)
	for _, o := range opps {
		if stored, err := st.GetSummary(o.NoticeID); err == nil && stored.Bullets != "" {
			if !force {
				continue
			}
			previous[o.NoticeID] = stored.Bullets
		}
		rows = append(rows, &bulk.Row{ID: o.NoticeID, Description: o.Description})
	}

	runner := bulk.NewRunner(sum, bulk.Options{
		Configured: cfg.ProviderConfigured(),
		Interval:   cfg.PaceInterval,
		Logger:     logger,
		OnProgress: func(processed, total int) {
			logger.Info(report.ProgressMessage(processed, total))
		},
	})

	started := time.Now()
	rep := runner.Run(ctx, rows)
	finished := time.Now()

	res := &report.RunResult{
		Report:  rep,
		Message: report.CompletionMessage(rep),
	}

	if rep.Aborted {
		return res, nil
	}

	for _, row := range rows[:rep.Attempted] {
		rr := report.RowResult{NoticeID: row.ID}
		if row.ErrMsg != "" {
			rr.Error = row.ErrMsg
			if err := st.SaveSummaryError(row.ID, row.ErrMsg); err != nil {
				logger.Warn("saving row error failed", zap.String("notice_id", row.ID), zap.Error(err))
			}
		} else {
			rr.Summary = row.Bullets
			if old, ok := previous[row.ID]; ok {
				rr.Diff = summary.Diff(old, row.Bullets)
			}
			if err := st.SaveSummary(row.ID, row.Bullets); err != nil {
				logger.Warn("saving row summary failed", zap.String("notice_id", row.ID), zap.Error(err))
			}
		}
		res.Rows = append(res.Rows, rr)
	}

	run := store.Run{
		ID:         uuid.NewString(),
		Attempted:  rep.Attempted,
		Successful: rep.Successful,
		Aborted:    rep.Aborted,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err := st.RecordRun(run); err != nil {
		logger.Warn("recording run failed", zap.Error(err))
	}

	return res, nil
}
