package analysis

import (
	"errors"
	"fmt"
)

// ErrIncompleteVariables is returned when a composite is requested without all three variables.
var ErrIncompleteVariables = errors.New("composite analysis requires Y, X and A results")

// Status is the combined risk classification of one location.
type Status string

const (
	StatusStable   Status = "STABLE"
	StatusAtRisk   Status = "AT_RISK"
	StatusCritical Status = "CRITICAL"
)

// Classify maps the number of variables below threshold to a Status.
func Classify(below int) Status {
	switch {
	case below >= 2:
		return StatusCritical
	case below == 1:
		return StatusAtRisk
	default:
		return StatusStable
	}
}

// CompositeRow joins the trend rows of one location. A nil variable row
// means the location was absent from, or excluded by, that variable.
type CompositeRow struct {
	LocationID string    `json:"location_id"`
	Y          *TrendRow `json:"y"`
	X          *TrendRow `json:"x"`
	A          *TrendRow `json:"a"`
	BelowCount int       `json:"below_count"`
	Status     Status    `json:"combined_status"`
}

// Row returns the trend row for v, or nil.
func (r CompositeRow) Row(v Variable) *TrendRow {
	switch v {
	case VariableY:
		return r.Y
	case VariableX:
		return r.X
	case VariableA:
		return r.A
	}
	return nil
}

// Composite is the multi-variable table anchored on the Y location list.
type Composite struct {
	ThresholdY float64        `json:"threshold_y"`
	ThresholdX float64        `json:"threshold_x"`
	ThresholdA float64        `json:"threshold_a"`
	Rows       []CompositeRow `json:"rows"`
}

// Threshold returns the threshold used for v.
func (c *Composite) Threshold(v Variable) float64 {
	switch v {
	case VariableX:
		return c.ThresholdX
	case VariableA:
		return c.ThresholdA
	default:
		return c.ThresholdY
	}
}

// Combine left-joins the X and A trend tables onto every location of the Y
// dataset and classifies each row by how many variables are below threshold.
// Missing or excluded rows count as not below.
func Combine(y, x, a *VariableResult) (*Composite, error) {
	if y == nil || x == nil || a == nil {
		return nil, ErrIncompleteVariables
	}
	for _, pair := range []struct {
		want Variable
		res  *VariableResult
	}{{VariableY, y}, {VariableX, x}, {VariableA, a}} {
		if pair.res.Variable != pair.want {
			return nil, fmt.Errorf("combine: expected variable %s, got %s", pair.want, pair.res.Variable)
		}
	}
	ty, tx, ta := index(y.Trend), index(x.Trend), index(a.Trend)
	out := &Composite{
		ThresholdY: y.Threshold,
		ThresholdX: x.Threshold,
		ThresholdA: a.Threshold,
		Rows:       make([]CompositeRow, 0, len(y.Locations)),
	}
	for _, id := range y.Locations {
		row := CompositeRow{LocationID: id, Y: ty[id], X: tx[id], A: ta[id]}
		for _, tr := range []*TrendRow{row.Y, row.X, row.A} {
			if tr != nil && tr.Below {
				row.BelowCount++
			}
		}
		row.Status = Classify(row.BelowCount)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// index maps location ids to their first trend row.
func index(rows []TrendRow) map[string]*TrendRow {
	m := make(map[string]*TrendRow, len(rows))
	for i := range rows {
		if _, ok := m[rows[i].LocationID]; ok {
			continue
		}
		m[rows[i].LocationID] = &rows[i]
	}
	return m
}
