package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Portal exports name their columns inconsistently; match by candidate
// substrings the way the tracker always has.
var (
	noticeCands = []string{"notice id", "noticeid", "solicitation number", "sol#"}
	titleCands  = []string{"title", "opportunity title", "notice title", "name"}
	agencyCands = []string{"agency", "department", "office"}
	descCands   = []string{"description", "details", "summary"}
	dateCands   = []string{"posted date", "publish date", "date"}
)

// findCol returns the index of the first header matching any candidate
// substring, or -1.
func findCol(headers []string, candidates []string) int {
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, cand := range candidates {
			if strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}

// ImportCSV reads a portal CSV export and upserts its rows, returning the
// number imported. Rows without a notice ID are skipped. The notice ID and
// description columns are required; title, agency, and posted date are
// optional.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("reading CSV header: %w", err)
	}

	noticeIdx := findCol(headers, noticeCands)
	if noticeIdx < 0 {
		return 0, fmt.Errorf("no notice ID column found in %v", headers)
	}
	descIdx := findCol(headers, descCands)
	if descIdx < 0 {
		return 0, fmt.Errorf("no description column found in %v", headers)
	}
	titleIdx := findCol(headers, titleCands)
	agencyIdx := findCol(headers, agencyCands)
	dateIdx := findCol(headers, dateCands)

	field := func(rec []string, idx int) string {
		if idx < 0 || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	count := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading CSV row: %w", err)
		}
		noticeID := field(rec, noticeIdx)
		if noticeID == "" {
			continue
		}
		o := Opportunity{
			NoticeID:    noticeID,
			Title:       field(rec, titleIdx),
			Agency:      field(rec, agencyIdx),
			Description: field(rec, descIdx),
			PostedAt:    field(rec, dateIdx),
		}
		if err := s.UpsertOpportunity(o); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
