package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/yashrajoria/catalog-import-service/models"
)

const maxContextLen = 80

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports an upload that could not be read as CSV.
type ParseError struct {
	Line    int
	Column  int
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d", e.Line)
	if e.Column > 0 {
		msg = fmt.Sprintf("%s, column %d", msg, e.Column)
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Err)
	if e.Context != "" {
		msg = fmt.Sprintf("%s (near %q)", msg, e.Context)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errDuplicateColumn = errors.New("duplicate column name")
	errNoColumns       = errors.New("header row has no column names")
)

// ParseCSV returns a single-use sequence of rows read from buf. The first record is
// the header. Values are whitespace-trimmed, blank lines are skipped, fields past the
// header are ignored and columns a short line does not reach are left out of the row.
// A malformed record yields a *ParseError and ends the sequence.
func ParseCSV(buf []byte) iter.Seq2[models.RawRow, error] {
	data := trimQuotePadding(bytes.TrimPrefix(buf, utf8BOM))
	used := false

	return func(yield func(models.RawRow, error) bool) {
		if used {
			return
		}
		used = true

		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true

		header, err := r.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(models.RawRow{}, newParseError(data, err))
			return
		}
		names, err := headerNames(header)
		if err != nil {
			line, _ := r.FieldPos(0)
			yield(models.RawRow{}, &ParseError{Line: line, Context: sourceLine(data, line), Err: err})
			return
		}

		for {
			record, err := r.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(models.RawRow{}, newParseError(data, err))
				return
			}
			if isBlank(record) {
				continue
			}
			line, _ := r.FieldPos(0)
			if !yield(buildRow(line, names, record), nil) {
				return
			}
		}
	}
}

// headerNames trims the header. Empty names mark columns that are skipped.
func headerNames(header []string) ([]string, error) {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w %q", errDuplicateColumn, name)
		}
		seen[name] = true
		names[i] = name
	}
	if len(seen) == 0 {
		return nil, errNoColumns
	}
	return names, nil
}

func buildRow(line int, names, record []string) models.RawRow {
	row := models.NewRawRow(line)
	for i, name := range names {
		if i >= len(record) {
			break
		}
		if name == "" {
			continue
		}
		row.Set(name, strings.TrimSpace(record[i]))
	}
	return row
}

// isBlank reports a line with no content, including one made only of delimiters.
func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// trimQuotePadding drops spaces and tabs between a closing quote and the next
// delimiter or line end. Line numbering is unchanged.
func trimQuotePadding(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inQuote, fieldStart := false, true
	for i := 0; i < len(data); i++ {
		c := data[i]
		out = append(out, c)
		if inQuote {
			if c != '"' {
				continue
			}
			if i+1 < len(data) && data[i+1] == '"' {
				out = append(out, '"')
				i++
				continue
			}
			inQuote = false
			j := i + 1
			for j < len(data) && (data[j] == ' ' || data[j] == '\t') {
				j++
			}
			if j == len(data) || data[j] == ',' || data[j] == '\r' || data[j] == '\n' {
				i = j - 1
			}
			continue
		}
		switch {
		case c == ',' || c == '\n':
			fieldStart = true
		case c == '"' && fieldStart:
			inQuote, fieldStart = true, false
		case c == ' ' || c == '\t' || c == '\r':
		default:
			fieldStart = false
		}
	}
	return out
}

func newParseError(data []byte, err error) *ParseError {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{
			Line:    csvErr.StartLine,
			Column:  csvErr.Column,
			Context: sourceLine(data, csvErr.StartLine),
			Err:     csvErr.Err,
		}
	}
	return &ParseError{Err: err}
}

// sourceLine returns the n-th (1-based) line of data, truncated for error messages.
func sourceLine(data []byte, n int) string {
	if n < 1 {
		return ""
	}
	for i := 1; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return ""
		}
		data = data[idx+1:]
	}
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	s := strings.TrimRight(string(data), "\r")
	if len(s) > maxContextLen {
		s = s[:maxContextLen] + "..."
	}
	return s
}
