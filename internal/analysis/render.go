package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format selects how result tables are rendered.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts markdown|md|csv|json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use markdown|csv|json)", s)
}

// Table is a rendered result table with string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// InstantTable renders the instantaneous alert table.
func (r *VariableResult) InstantTable() Table {
	t := Table{Header: []string{"Location", r.Column, "Margin", "Alert"}}
	for _, row := range r.Instant {
		margin := ""
		if row.HasValue {
			margin = num(row.Margin)
		}
		t.Rows = append(t.Rows, []string{row.LocationID, row.Raw, margin, string(row.Alert)})
	}
	return t
}

// TrendTable renders the trend prediction table.
func (r *VariableResult) TrendTable() Table {
	t := Table{Header: []string{"Location", "Slope", "Last value", "Below threshold", "Crossing date"}}
	for _, row := range r.Trend {
		t.Rows = append(t.Rows, []string{row.LocationID, num(row.Slope), num(row.Last), yesNo(row.Below), row.CrossingDate})
	}
	return t
}

// Table renders the composite table with per-variable suffixed columns.
func (c *Composite) Table() Table {
	t := Table{Header: []string{"Location"}}
	for _, v := range Variables {
		s := "_" + string(v)
		t.Header = append(t.Header, "Slope"+s, "Last value"+s, "Below threshold"+s, "Crossing date"+s)
	}
	t.Header = append(t.Header, "Combined status")
	for _, row := range c.Rows {
		cells := []string{row.LocationID}
		for _, v := range Variables {
			tr := row.Row(v)
			if tr == nil {
				cells = append(cells, "", "", "", "")
				continue
			}
			cells = append(cells, num(tr.Slope), num(tr.Last), yesNo(tr.Below), tr.CrossingDate)
		}
		cells = append(cells, string(row.Status))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// WriteCSV writes the table with a header row.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func (t Table) writeMarkdown(b *strings.Builder) {
	if len(t.Rows) == 0 {
		b.WriteString("(none)\n")
		return
	}
	b.WriteString("| ")
	for i, h := range t.Header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(h))
	}
	b.WriteString(" |\n|")
	for range t.Header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		b.WriteString("| ")
		for i := range t.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			if i < len(row) {
				b.WriteString(safeVal(row[i]))
			}
		}
		b.WriteString(" |\n")
	}
}

// Markdown renders both tables of one variable as a compact report.
func (r *VariableResult) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[VARIABLE %s]\n", r.Variable))
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Threshold: %s\n", num(r.Threshold)))
	if r.Column != "" {
		b.WriteString(fmt.Sprintf("Evaluation column: %s\n", r.Column))
	}
	b.WriteString(fmt.Sprintf("Locations: %d (trend fitted %d, excluded %d)\n", len(r.Instant), len(r.Trend), len(r.Excluded)))

	b.WriteString("\n[INSTANT ALERTS]\n")
	r.InstantTable().writeMarkdown(&b)
	b.WriteString("\n[TREND PREDICTION]\n")
	r.TrendTable().writeMarkdown(&b)

	if len(r.Excluded) > 0 {
		b.WriteString("\n[EXCLUDED FROM TREND]\n")
		for _, e := range r.Excluded {
			b.WriteString(fmt.Sprintf("- %s: %s", safeVal(e.LocationID), e.Reason))
			if e.Detail != "" {
				b.WriteString(fmt.Sprintf(" (%s)", safeVal(e.Detail)))
			}
			b.WriteString("\n")
		}
	}
	writeNotes(&b, r.Warnings)
	return b.String()
}

// Markdown renders the composite table with a status tally.
func (c *Composite) Markdown() string {
	var b strings.Builder
	b.WriteString("[COMBINED ANALYSIS]\n")
	b.WriteString(fmt.Sprintf("Thresholds: Y=%s, X=%s, A=%s\n", num(c.ThresholdY), num(c.ThresholdX), num(c.ThresholdA)))
	counts := map[Status]int{}
	for _, row := range c.Rows {
		counts[row.Status]++
	}
	b.WriteString(fmt.Sprintf("Locations: %d (critical %d, at risk %d, stable %d)\n\n",
		len(c.Rows), counts[StatusCritical], counts[StatusAtRisk], counts[StatusStable]))
	b.WriteString("[COMPOSITE STATUS]\n")
	c.Table().writeMarkdown(&b)
	return b.String()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeNotes(b *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\n[NOTES]\n")
	for _, w := range notes {
		b.WriteString("- ")
		b.WriteString(w)
		b.WriteString("\n")
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
