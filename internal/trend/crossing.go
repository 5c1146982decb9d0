package trend

import (
	"math"
	"time"
)

// NotApplicable is the display value for a trend that never reaches the threshold.
const NotApplicable = "not applicable"

// dateLayout is the ISO calendar-date rendering of crossing dates.
const dateLayout = "2006-01-02"

// Crossing is the threshold evaluation of one fitted location.
type Crossing struct {
	Threshold float64
	// Below is true when the most recent observation is strictly under the threshold.
	Below bool
	// Date is the projected calendar date of the crossing; nil unless the slope is negative.
	Date *time.Time
	// Days is the unrounded day offset of the crossing from the first observation date.
	Days float64
}

// DateString renders the crossing date as YYYY-MM-DD or NotApplicable.
func (c Crossing) DateString() string {
	if c.Date == nil {
		return NotApplicable
	}
	return c.Date.Format(dateLayout)
}

// Predict evaluates a fit against a threshold. For a decreasing trend the
// crossing instant is first + (threshold-intercept)/slope days, taken without
// rounding; the reported date is the calendar day containing that instant.
// Crossings in the past are reported as-is. A projection that cannot be
// represented as a calendar date yields ReasonCrossingOutOfRange.
func Predict(f Fit, threshold float64, first time.Time) (Crossing, Outcome) {
	c := Crossing{Threshold: threshold, Below: f.Last < threshold}
	if !(f.Slope < 0) {
		return c, Fitted(f)
	}
	days := (threshold - f.Intercept) / f.Slope
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return c, Excluded(ReasonCrossingOutOfRange, "non-finite crossing offset")
	}
	// bound to the representable calendar before converting
	const maxDays = 3_700_000
	if math.Abs(days) > maxDays {
		return c, Excluded(ReasonCrossingOutOfRange, "crossing beyond calendar range")
	}
	whole := math.Floor(days)
	frac := days - whole
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	at := start.AddDate(0, 0, int(whole)).Add(time.Duration(frac * float64(24*time.Hour)))
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	if day.Year() < 1 || day.Year() > 9999 {
		return c, Excluded(ReasonCrossingOutOfRange, "crossing beyond calendar range")
	}
	c.Date = &day
	c.Days = days
	return c, Fitted(f)
}
