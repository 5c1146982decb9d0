// Package trend fits per-location linear trends and projects threshold crossings.
package trend

import (
	"fmt"
	"math"
)

// ExclusionReason explains why a location has no trend fit.
type ExclusionReason string

const (
	ReasonMissingValue       ExclusionReason = "missing or non-numeric observation"
	ReasonTooFewPoints       ExclusionReason = "fewer than two observations"
	ReasonCrossingOutOfRange ExclusionReason = "crossing date out of range"
	ReasonInternal           ExclusionReason = "internal error"
)

// Fit is an ordinary least-squares line of value against elapsed days.
type Fit struct {
	Slope     float64 // value units per day
	Intercept float64 // value at day 0 (first observation date)
	Last      float64 // most recent observation
}

// At evaluates the fitted line at a day offset.
func (f Fit) At(day float64) float64 { return f.Intercept + f.Slope*day }

// Outcome is the per-location result of fitting: exactly one of Fit or Reason is set.
type Outcome struct {
	Fit    *Fit
	Reason ExclusionReason
	// Detail carries extra context for excluded locations (e.g. the offending column).
	Detail string
}

// Fitted wraps a successful fit.
func Fitted(f Fit) Outcome { return Outcome{Fit: &f} }

// Excluded marks a location as absent from trend results.
func Excluded(reason ExclusionReason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// OK reports whether the outcome holds a fit.
func (o Outcome) OK() bool { return o.Fit != nil }

func (o Outcome) String() string {
	if o.OK() {
		return fmt.Sprintf("fitted(slope=%g, intercept=%g, last=%g)", o.Fit.Slope, o.Fit.Intercept, o.Fit.Last)
	}
	if o.Detail != "" {
		return fmt.Sprintf("excluded(%s: %s)", o.Reason, o.Detail)
	}
	return fmt.Sprintf("excluded(%s)", o.Reason)
}

// Observation is one (day offset, value) pair. OK is false for a missing value.
type Observation struct {
	Day   int
	Value float64
	OK    bool
}

// FitSeries fits value on day offset for one location. The series must be
// in date order. Any missing value excludes the whole location; there is no
// partial fit and no imputation.
func FitSeries(obs []Observation) Outcome {
	if len(obs) < 2 {
		return Excluded(ReasonTooFewPoints, fmt.Sprintf("%d observation(s)", len(obs)))
	}
	for i, o := range obs {
		if !o.OK {
			return Excluded(ReasonMissingValue, fmt.Sprintf("observation %d", i+1))
		}
	}
	n := float64(len(obs))
	var sumX, sumY float64
	for _, o := range obs {
		sumX += float64(o.Day)
		sumY += o.Value
	}
	meanX, meanY := sumX/n, sumY/n
	var sxy, sxx float64
	for _, o := range obs {
		dx := float64(o.Day) - meanX
		sxy += dx * (o.Value - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		// every observation on the same day
		return Excluded(ReasonTooFewPoints, "no spread in observation dates")
	}
	slope := sxy / sxx
	f := Fit{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		Last:      obs[len(obs)-1].Value,
	}
	if math.IsNaN(f.Slope) || math.IsInf(f.Slope, 0) || math.IsNaN(f.Intercept) || math.IsInf(f.Intercept, 0) {
		return Excluded(ReasonMissingValue, "non-finite fit")
	}
	return Fitted(f)
}
