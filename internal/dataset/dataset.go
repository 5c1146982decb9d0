package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	// ErrMissingColumn is returned when the location identifier column is absent.
	ErrMissingColumn = errors.New("required column not found")
	// ErrBadDateLabel is returned when a date-like header does not parse as a calendar date.
	ErrBadDateLabel = errors.New("unparseable date label")
	// ErrDuplicateDate is returned when two headers resolve to the same date.
	ErrDuplicateDate = errors.New("duplicate date column")
	// ErrUnknownColumn is returned when a selected evaluation column is not a date column.
	ErrUnknownColumn = errors.New("unknown date column")
)

// ParseError reports a structural problem with a dataset. It is fatal for that dataset.
type ParseError struct {
	Source string
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse")
	if e.Source != "" {
		b.WriteString(" ")
		b.WriteString(e.Source)
	}
	if e.Column != "" {
		b.WriteString(fmt.Sprintf(" column %q", e.Column))
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// dateLike matches header labels that look like a calendar date (e.g. 03/15/2023).
var dateLike = regexp.MustCompile(`^\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4}$`)

// Raw is a table as read from disk: a header and string rows.
type Raw struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Options controls normalization.
type Options struct {
	// IDColumn is the exact header label of the location identifier.
	IDColumn string
	// DateLayout is the Go time layout of date headers.
	DateLayout string
	Numeric    NumericOptions
}

// DefaultOptions returns the survey defaults: "Abscisa" ids and month/day/year headers.
func DefaultOptions() Options {
	return Options{
		IDColumn:   "Abscisa",
		DateLayout: "1/2/2006",
	}
}

// DateColumn is one dated observation column.
type DateColumn struct {
	Label string
	Index int // position in the raw header
	Date  time.Time
	// Offset is the number of days since the first observation date.
	Offset int
}

// Dataset is a normalized, read-only observation table for one variable.
type Dataset struct {
	Name     string
	IDColumn string
	Dates    []DateColumn // ordered by increasing date
	// Dropped counts rows removed for a missing identifier.
	Dropped int

	ids     []string
	rows    [][]string
	numeric NumericOptions
}

// Normalize validates a raw table and returns a Dataset. Rows with a missing
// identifier are dropped and date columns are detected from header labels.
// The raw table is not modified.
func Normalize(raw *Raw, opt Options) (*Dataset, error) {
	if raw == nil {
		return nil, &ParseError{Err: errors.New("nil table")}
	}
	if opt.IDColumn == "" {
		opt.IDColumn = DefaultOptions().IDColumn
	}
	if opt.DateLayout == "" {
		opt.DateLayout = DefaultOptions().DateLayout
	}
	idIdx := -1
	var dates []DateColumn
	for i, h := range raw.Header {
		label := strings.TrimSpace(h)
		if label == opt.IDColumn && idIdx < 0 {
			idIdx = i
			continue
		}
		if !dateLike.MatchString(label) {
			continue
		}
		d, err := time.Parse(opt.DateLayout, label)
		if err != nil {
			return nil, &ParseError{Source: raw.Name, Column: label, Err: fmt.Errorf("%w: %v", ErrBadDateLabel, err)}
		}
		dates = append(dates, DateColumn{Label: label, Index: i, Date: d})
	}
	if idIdx < 0 {
		return nil, &ParseError{Source: raw.Name, Column: opt.IDColumn, Err: ErrMissingColumn}
	}

	sort.SliceStable(dates, func(i, j int) bool { return dates[i].Date.Before(dates[j].Date) })
	for i := range dates {
		if i > 0 && dates[i].Date.Equal(dates[i-1].Date) {
			return nil, &ParseError{Source: raw.Name, Column: dates[i].Label, Err: fmt.Errorf("%w: same date as %q", ErrDuplicateDate, dates[i-1].Label)}
		}
		dates[i].Offset = daysBetween(dates[0].Date, dates[i].Date)
	}

	ds := &Dataset{
		Name:     raw.Name,
		IDColumn: opt.IDColumn,
		Dates:    dates,
		numeric:  opt.Numeric,
	}
	width := len(raw.Header)
	for _, rec := range raw.Rows {
		id := ""
		if idIdx < len(rec) {
			id = strings.TrimSpace(rec[idIdx])
		}
		if isNA(id) {
			ds.Dropped++
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		ds.ids = append(ds.ids, id)
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

// Len returns the number of kept rows.
func (d *Dataset) Len() int { return len(d.rows) }

// ID returns the location identifier of row i.
func (d *Dataset) ID(i int) string { return d.ids[i] }

// IDs returns a copy of all location identifiers in input order.
func (d *Dataset) IDs() []string {
	out := make([]string, len(d.ids))
	copy(out, d.ids)
	return out
}

// Cell returns the raw, trimmed cell of row i for a date column.
func (d *Dataset) Cell(i int, c DateColumn) string {
	row := d.rows[i]
	if c.Index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c.Index])
}

// Value coerces the cell of row i for a date column. ok is false when the
// value is missing or not numeric.
func (d *Dataset) Value(i int, c DateColumn) (float64, bool) {
	return Coerce(d.Cell(i, c), d.numeric)
}

// FirstDate returns the earliest observation date, or the zero time when
// the dataset has no date columns.
func (d *Dataset) FirstDate() time.Time {
	if len(d.Dates) == 0 {
		return time.Time{}
	}
	return d.Dates[0].Date
}

// Offsets returns the day offsets of all date columns in date order.
func (d *Dataset) Offsets() []int {
	out := make([]int, len(d.Dates))
	for i, c := range d.Dates {
		out[i] = c.Offset
	}
	return out
}

// Column looks up a date column by its header label. An empty label selects
// the latest date column.
func (d *Dataset) Column(label string) (DateColumn, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		if len(d.Dates) == 0 {
			return DateColumn{}, &ParseError{Source: d.Name, Err: fmt.Errorf("%w: dataset has no date columns", ErrUnknownColumn)}
		}
		return d.Dates[len(d.Dates)-1], nil
	}
	for _, c := range d.Dates {
		if c.Label == label {
			return c, nil
		}
	}
	return DateColumn{}, &ParseError{Source: d.Name, Column: label, Err: ErrUnknownColumn}
}

// daysBetween returns whole calendar days from a to b. It works on Unix
// seconds because time.Duration saturates after about 292 years.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / 86400)
}
