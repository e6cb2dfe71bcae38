package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SkipReasonMissingName     = "missing_name"
	SkipReasonMissingQuantity = "missing_quantity"
	SkipReasonBadQuantity     = "invalid_quantity"
	SkipReasonMalformedRow    = "malformed_row"
)

// ExportRecord is one row of the external tabular record.
type ExportRecord struct {
	ID       int64
	Name     string
	Quantity int
}

// RawRecord is a record as read back from the external file, before any
// validation. Line is the 1-based line number in the file. ParseError is
// set when the line could not be split into fields.
type RawRecord struct {
	Line       int
	ID         string
	Name       string
	Quantity   string
	ParseError string
}

type RowOutcome struct {
	Line     int    `json:"line"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Stock    *int   `json:"stock,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type ReconciliationReport struct {
	RunID         uuid.UUID    `json:"runId"`
	Source        string       `json:"source"`
	SourceFound   bool         `json:"sourceFound"`
	Rows          int          `json:"rows"`
	Applied       []RowOutcome `json:"applied"`
	Skipped       []RowOutcome `json:"skipped"`
	Unmatched     []RowOutcome `json:"unmatched"`
	Failed        []RowOutcome `json:"failed"`
	ArchivedTo    string       `json:"archivedTo,omitempty"`
	StartedAtUtc  time.Time    `json:"startedAtUtc"`
	FinishedAtUtc time.Time    `json:"finishedAtUtc"`
}

func NewReconciliationReport(source string, now time.Time) *ReconciliationReport {
	return &ReconciliationReport{
		RunID:        uuid.New(),
		Source:       source,
		Applied:      []RowOutcome{},
		Skipped:      []RowOutcome{},
		Unmatched:    []RowOutcome{},
		Failed:       []RowOutcome{},
		StartedAtUtc: now,
	}
}
