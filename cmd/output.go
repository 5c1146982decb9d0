package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/erosionwatch/internal/analysis"
	"github.com/KaramelBytes/erosionwatch/internal/utils"
)

// tableSelection picks which per-variable tables a report contains.
type tableSelection string

const (
	tablesBoth    tableSelection = "both"
	tablesInstant tableSelection = "instant"
	tablesTrend   tableSelection = "trend"
)

func parseTableSelection(s string) (tableSelection, error) {
	switch tableSelection(strings.ToLower(strings.TrimSpace(s))) {
	case "", tablesBoth:
		return tablesBoth, nil
	case tablesInstant:
		return tablesInstant, nil
	case tablesTrend:
		return tablesTrend, nil
	}
	return "", fmt.Errorf("unsupported --table: %s (use both|instant|trend)", s)
}

// renderVariable renders one variable result. CSV with both tables writes the
// instant table, a blank line, then the trend table.
func renderVariable(res *analysis.VariableResult, f analysis.Format, sel tableSelection) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case analysis.FormatJSON:
		if err := analysis.WriteJSON(&buf, res); err != nil {
			return nil, err
		}
	case analysis.FormatCSV:
		if sel != tablesTrend {
			if err := res.InstantTable().WriteCSV(&buf); err != nil {
				return nil, err
			}
		}
		if sel == tablesBoth {
			buf.WriteString("\n")
		}
		if sel != tablesInstant {
			if err := res.TrendTable().WriteCSV(&buf); err != nil {
				return nil, err
			}
		}
	default:
		buf.WriteString(res.Markdown())
	}
	return buf.Bytes(), nil
}

func renderComposite(c *analysis.Composite, f analysis.Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case analysis.FormatJSON:
		if err := analysis.WriteJSON(&buf, c); err != nil {
			return nil, err
		}
	case analysis.FormatCSV:
		if err := c.Table().WriteCSV(&buf); err != nil {
			return nil, err
		}
	default:
		buf.WriteString(c.Markdown())
	}
	return buf.Bytes(), nil
}

// emit writes body to path atomically, or to w when path is empty.
func emit(w io.Writer, path string, body []byte, what string) error {
	if path == "" {
		_, err := w.Write(body)
		return err
	}
	if err := utils.SafeWriteFile(path, body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(w, "✓ Wrote %s to %s\n", what, path)
	return nil
}

// formatExt is the file extension used for reports written by analyze-batch.
func formatExt(f analysis.Format) string {
	switch f {
	case analysis.FormatCSV:
		return ".csv"
	case analysis.FormatJSON:
		return ".json"
	default:
		return ".md"
	}
}
