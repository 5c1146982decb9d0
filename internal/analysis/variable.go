package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/erosionwatch/internal/dataset"
	"github.com/KaramelBytes/erosionwatch/internal/trend"
)

// Variable tags one of the surveyed quantities.
type Variable string

const (
	VariableY Variable = "Y"
	VariableX Variable = "X"
	VariableA Variable = "A"
)

// Variables lists the surveyed quantities in composite order.
var Variables = []Variable{VariableY, VariableX, VariableA}

// ParseVariable accepts y|x|a in any case.
func ParseVariable(s string) (Variable, error) {
	switch Variable(strings.ToUpper(strings.TrimSpace(s))) {
	case VariableY:
		return VariableY, nil
	case VariableX:
		return VariableX, nil
	case VariableA:
		return VariableA, nil
	}
	return "", fmt.Errorf("unknown variable %q (use Y, X or A)", s)
}

// DefaultThreshold returns the reference deployment threshold for the variable.
func (v Variable) DefaultThreshold() float64 {
	switch v {
	case VariableX:
		return 2.0
	case VariableA:
		return 0.3
	default:
		return 0.6
	}
}

// Alert is the instantaneous state of one location at the evaluation column.
type Alert string

const (
	AlertOK      Alert = "OK"
	AlertActive  Alert = "ALERT"
	AlertUnknown Alert = "UNKNOWN"
)

// InstantRow is one row of the instantaneous alert table. Margin is only
// meaningful when HasValue is true.
type InstantRow struct {
	LocationID string  `json:"location_id"`
	Raw        string  `json:"raw_value"`
	Value      float64 `json:"value"`
	HasValue   bool    `json:"has_value"`
	Margin     float64 `json:"margin"`
	Alert      Alert   `json:"alert"`
}

// TrendRow is one fitted location. Slope and Last are rounded for display;
// Fit and Crossing carry the unrounded values.
type TrendRow struct {
	LocationID   string  `json:"location_id"`
	Slope        float64 `json:"slope"`
	Last         float64 `json:"last_value"`
	Below        bool    `json:"below_threshold"`
	CrossingDate string  `json:"crossing_date"`
	Threshold    float64 `json:"threshold"`

	Fit      trend.Fit      `json:"-"`
	Crossing trend.Crossing `json:"-"`
}

// Exclusion records a location left out of the trend table.
type Exclusion struct {
	LocationID string                `json:"location_id"`
	Reason     trend.ExclusionReason `json:"reason"`
	Detail     string                `json:"detail,omitempty"`
}

// Params selects the threshold and evaluation column for one variable.
type Params struct {
	Variable  Variable
	Threshold float64
	// Column is the date label for the instantaneous table; empty selects the latest date.
	Column string
}

// VariableResult holds both tables for one variable. The two tables are
// independent: a location may appear in one and not the other.
type VariableResult struct {
	Name      string       `json:"name,omitempty"`
	Variable  Variable     `json:"variable"`
	Threshold float64      `json:"threshold"`
	Column    string       `json:"evaluation_column"`
	Instant   []InstantRow `json:"instant"`
	Trend     []TrendRow   `json:"trend"`
	Excluded  []Exclusion  `json:"excluded"`
	Warnings  []string     `json:"warnings,omitempty"`
	Locations []string     `json:"-"`
}

// Analyzer runs the per-variable computation. It holds no state between calls.
type Analyzer struct {
	log zerolog.Logger
	fit func([]trend.Observation) trend.Outcome
}

// NewAnalyzer returns an Analyzer that logs exclusions through log.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log, fit: trend.FitSeries}
}

// AnalyzeVariable runs an Analyzer without logging.
func AnalyzeVariable(ds *dataset.Dataset, p Params) (*VariableResult, error) {
	return NewAnalyzer(zerolog.Nop()).Analyze(ds, p)
}

// Analyze builds the instantaneous table from the selected column and the
// trend table from all date columns, using the same threshold for both.
func (a *Analyzer) Analyze(ds *dataset.Dataset, p Params) (*VariableResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("analyze: nil dataset")
	}
	if p.Variable == "" {
		p.Variable = VariableY
	}
	res := &VariableResult{
		Name:      ds.Name,
		Variable:  p.Variable,
		Threshold: p.Threshold,
		Instant:   []InstantRow{},
		Trend:     []TrendRow{},
		Excluded:  []Exclusion{},
		Locations: ds.IDs(),
	}
	if ds.Dropped > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("dropped %d row(s) without %s", ds.Dropped, ds.IDColumn))
	}
	if len(ds.Dates) == 0 {
		res.Warnings = append(res.Warnings, "no date-format columns detected")
		return res, nil
	}
	col, err := ds.Column(p.Column)
	if err != nil {
		return nil, err
	}
	res.Column = col.Label

	for i := 0; i < ds.Len(); i++ {
		res.Instant = append(res.Instant, instantRow(ds, i, col, p.Threshold))
	}

	first := ds.FirstDate()
	for i := 0; i < ds.Len(); i++ {
		id := ds.ID(i)
		out, c := a.fitLocation(ds, i, p.Threshold, first)
		if !out.OK() {
			a.log.Debug().
				Str("variable", string(p.Variable)).
				Str("location", id).
				Str("reason", string(out.Reason)).
				Str("detail", out.Detail).
				Msg("location excluded from trend")
			res.Excluded = append(res.Excluded, Exclusion{LocationID: id, Reason: out.Reason, Detail: out.Detail})
			continue
		}
		f := *out.Fit
		res.Trend = append(res.Trend, TrendRow{
			LocationID:   id,
			Slope:        round(f.Slope, 4),
			Last:         round(f.Last, 3),
			Below:        c.Below,
			CrossingDate: c.DateString(),
			Threshold:    p.Threshold,
			Fit:          f,
			Crossing:     c,
		})
	}
	return res, nil
}

func instantRow(ds *dataset.Dataset, i int, col dataset.DateColumn, threshold float64) InstantRow {
	row := InstantRow{LocationID: ds.ID(i), Raw: ds.Cell(i, col), Alert: AlertUnknown}
	v, ok := ds.Value(i, col)
	if !ok {
		return row
	}
	row.Value = v
	row.HasValue = true
	row.Margin = round(v-threshold, 3)
	if row.Margin < 0 {
		row.Alert = AlertActive
	} else {
		row.Alert = AlertOK
	}
	return row
}

// fitLocation fits and projects one row. A panic is contained to this
// location and reported as an internal exclusion.
func (a *Analyzer) fitLocation(ds *dataset.Dataset, i int, threshold float64, first time.Time) (out trend.Outcome, c trend.Crossing) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn().Str("location", ds.ID(i)).Interface("panic", r).Msg("trend fit failed")
			out = trend.Excluded(trend.ReasonInternal, fmt.Sprint(r))
			c = trend.Crossing{}
		}
	}()
	obs := make([]trend.Observation, len(ds.Dates))
	for j, dc := range ds.Dates {
		v, ok := ds.Value(i, dc)
		obs[j] = trend.Observation{Day: dc.Offset, Value: v, OK: ok}
		if !ok {
			return trend.Excluded(trend.ReasonMissingValue, fmt.Sprintf("column %s = %q", dc.Label, ds.Cell(i, dc))), c
		}
	}
	fit := a.fit
	if fit == nil {
		fit = trend.FitSeries
	}
	out = fit(obs)
	if !out.OK() {
		return out, c
	}
	c, out = trend.Predict(*out.Fit, threshold, first)
	return out, c
}

// round rounds half to even at the given number of decimal places.
func round(x float64, places int) float64 {
	p := math.Pow10(places)
	r := math.RoundToEven(x*p) / p
	if r == 0 {
		return 0
	}
	return r
}
