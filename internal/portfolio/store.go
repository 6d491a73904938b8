// Package portfolio loads and caches engagement records from the portfolio
// workbook.
package portfolio

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/model"
)

// Store loads portfolio records from a two-sheet workbook (first sheet =
// active engagements, second = closed) and caches the result keyed by the
// file's modification time. Safe for concurrent use.
type Store struct {
	path string

	mu          sync.Mutex
	cached      []model.Record
	cachedMtime time.Time
	haveCache   bool
	reads       int
}

// NewStore creates a record store for the workbook at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns all portfolio records. A missing workbook yields an empty
// slice, not an error. The workbook is re-read only when its modification
// time changes; otherwise the cached records are returned.
func (s *Store) Load() ([]model.Record, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "portfolio: stat workbook")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.haveCache && s.cachedMtime.Equal(info.ModTime()) {
		return s.cached, nil
	}

	records, err := s.read()
	if err != nil {
		return nil, err
	}

	s.cached = records
	s.cachedMtime = info.ModTime()
	s.haveCache = true

	zap.L().Info("portfolio loaded",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
	)

	return records, nil
}

// Mtime returns the workbook's current modification time, or the zero time
// when the file is missing.
func (s *Store) Mtime() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// ReadCount reports how many times the workbook has actually been parsed.
// Used by tests to verify the mtime cache short-circuits repeat loads.
func (s *Store) ReadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// read parses both sheets. A sheet that is missing or fails to parse
// contributes nothing rather than aborting the load.
func (s *Store) read() ([]model.Record, error) {
	s.reads++

	f, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "portfolio: open workbook")
	}

	var records []model.Record
	for sheetIdx, status := range []model.RecordStatus{model.StatusActive, model.StatusClosed} {
		if sheetIdx >= len(f.Sheets) {
			zap.L().Debug("portfolio sheet missing",
				zap.Int("sheet", sheetIdx),
				zap.String("status", string(status)),
			)
			continue
		}
		records = append(records, sheetRecords(f.Sheets[sheetIdx], status)...)
	}

	// Re-index contiguously after concatenation and blank-row removal.
	for i := range records {
		records[i].Row = i
	}

	return records, nil
}

// sheetRecords converts one sheet's rows to records, dropping rows whose
// cells are all blank.
func sheetRecords(sheet *xlsx.Sheet, status model.RecordStatus) []model.Record {
	if len(sheet.Rows) == 0 {
		return nil
	}

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		header[i] = NormalizeColumn(cell.String())
	}

	var records []model.Record
	for _, row := range sheet.Rows[1:] {
		rec := model.Record{Status: status, Extra: map[string]string{}}
		blank := true

		for i, cell := range row.Cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			val := safeString(cell.String())
			if val != "" {
				blank = false
			}
			assignField(&rec, header[i], val)
		}

		if blank {
			continue
		}
		if len(rec.Extra) == 0 {
			rec.Extra = nil
		}
		records = append(records, rec)
	}

	return records
}

// NormalizeColumn lower-cases a column name and replaces spaces and slashes
// with underscores.
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}

// assignField routes a normalized column to its named record field, keeping
// unrecognized columns verbatim in Extra.
func assignField(rec *model.Record, column, value string) {
	switch {
	case column == "client_name" || column == "client":
		rec.ClientName = value
	case column == "industry":
		rec.Industry = value
	case column == "technologies" || column == "technology":
		rec.Technologies = value
	case column == "business_case":
		rec.BusinessCase = value
	case strings.Contains(column, "solution"):
		rec.Solution = value
	case strings.Contains(column, "deliverable"):
		rec.Deliverables = value
	case strings.Contains(column, "problem"):
		rec.Problem = value
	case column == "status":
		// Status comes from the sheet position, not the cell.
	default:
		rec.Extra[column] = value
	}
}

// safeString trims whitespace and blanks out the NaN artifacts that
// spreadsheet exports leave in empty numeric cells.
func safeString(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}
