package models

import "time"

// RawRow is one parsed CSV data line keyed by header name.
// Keys keep header order; a column the line did not reach is absent.
type RawRow struct {
	Line   int
	keys   []string
	values map[string]string
}

// NewRawRow returns an empty row for the given 1-based source line.
func NewRawRow(line int) RawRow {
	return RawRow{Line: line, values: make(map[string]string)}
}

// Set stores a value, keeping the first-seen key order.
func (r *RawRow) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether the key exists in the row.
func (r RawRow) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names present in the row, in header order.
func (r RawRow) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// ValidatedRecord is a RawRow that passed the existence checks. Values are kept
// as raw strings; typing happens in the record store.
type ValidatedRecord struct {
	Line       int
	Name       string
	Price      string
	Stock      string
	Category   string
	Attributes map[string]string
}

type IngestStage string

const (
	StageParse IngestStage = "parse"
	// StageValidate is part of the report schema only. Rows failing the
	// existence checks are dropped silently and never produce an entry.
	StageValidate IngestStage = "validate"
	StageInsert   IngestStage = "insert"
)

type IngestError struct {
	Stage  IngestStage `json:"stage"`
	Detail string      `json:"detail"`
}

// IngestionReport summarises one ingest run.
// TotalInserted <= TotalValid <= TotalParsed always holds.
type IngestionReport struct {
	TotalParsed   int           `json:"total_parsed"`
	TotalValid    int           `json:"total_valid"`
	TotalInserted int           `json:"total_inserted"`
	Errors        []IngestError `json:"errors"`
}

// FirstError returns the first error recorded for the given stage.
func (r *IngestionReport) FirstError(stage IngestStage) (IngestError, bool) {
	for _, e := range r.Errors {
		if e.Stage == stage {
			return e, true
		}
	}
	return IngestError{}, false
}

func (r *IngestionReport) HasErrors() bool { return len(r.Errors) > 0 }

type ImportJobStatus string

const (
	JobPending    ImportJobStatus = "pending"
	JobProcessing ImportJobStatus = "processing"
	JobDone       ImportJobStatus = "done"
	JobFailed     ImportJobStatus = "failed"
)

// ImportJob is the metadata kept for an asynchronous bulk import.
type ImportJob struct {
	ID         string           `json:"id"`
	Status     ImportJobStatus  `json:"status"`
	PayloadKey string           `json:"payload_key"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Report     *IngestionReport `json:"report,omitempty"`
	Error      string           `json:"error,omitempty"`
}
