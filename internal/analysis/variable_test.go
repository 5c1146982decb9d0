package analysis

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/erosionwatch/internal/dataset"
	"github.com/KaramelBytes/erosionwatch/internal/trend"
)

func mustDataset(t *testing.T, header []string, rows ...[]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Normalize(&dataset.Raw{Name: "y.csv", Header: header, Rows: rows}, dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

var surveyHeader = []string{"Abscisa", "1/1/2023", "2/1/2023", "3/1/2023"}

func TestAnalyze_ThreeMonthDecline(t *testing.T) {
	ds := mustDataset(t, surveyHeader, []string{"L1", "1.0", "0.8", "0.6"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)

	assert.Equal(t, "3/1/2023", res.Column)
	require.Len(t, res.Instant, 1)
	assert.Equal(t, 0.0, res.Instant[0].Margin)
	assert.Equal(t, AlertOK, res.Instant[0].Alert)

	require.Len(t, res.Trend, 1)
	row := res.Trend[0]
	assert.Equal(t, "L1", row.LocationID)
	assert.Equal(t, -0.0068, row.Slope)
	assert.Equal(t, 0.6, row.Last)
	assert.False(t, row.Below)
	assert.Equal(t, "2023-03-01", row.CrossingDate)
	assert.InDelta(t, -0.0067738, row.Fit.Slope, 1e-7)
	assert.Empty(t, res.Excluded)
}

func TestAnalyze_InstantAlerts(t *testing.T) {
	ds := mustDataset(t, surveyHeader,
		[]string{"L1", "1", "0.9", "0.55"},
		[]string{"L2", "1", "0.9", "0.7"},
		[]string{"L3", "1", "0.9", ""},
		[]string{"L4", "1", "0.9", "n/a"},
	)
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	require.Len(t, res.Instant, 4)

	assert.Equal(t, AlertActive, res.Instant[0].Alert)
	assert.Equal(t, -0.05, res.Instant[0].Margin)
	assert.Equal(t, AlertOK, res.Instant[1].Alert)
	assert.Equal(t, 0.1, res.Instant[1].Margin)
	for _, r := range res.Instant[2:] {
		assert.Equal(t, AlertUnknown, r.Alert, r.LocationID)
		assert.False(t, r.HasValue)
	}

	// L3 and L4 lack the last observation and drop out of the trend table only
	require.Len(t, res.Trend, 2)
	require.Len(t, res.Excluded, 2)
	assert.Equal(t, "L3", res.Excluded[0].LocationID)
	assert.Equal(t, trend.ReasonMissingValue, res.Excluded[0].Reason)
	assert.Contains(t, res.Excluded[1].Detail, "n/a")
}

func TestAnalyze_EvaluationColumnSelection(t *testing.T) {
	ds := mustDataset(t, surveyHeader, []string{"L1", "0.5", "0.9", "0.9"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6, Column: "1/1/2023"})
	require.NoError(t, err)
	assert.Equal(t, "1/1/2023", res.Column)
	assert.Equal(t, AlertActive, res.Instant[0].Alert)
	assert.Equal(t, "0.5", res.Instant[0].Raw)

	_, err = AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6, Column: "Depth"})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestAnalyze_ThresholdGovernsBothTables(t *testing.T) {
	ds := mustDataset(t, surveyHeader, []string{"L1", "2.5", "2.2", "1.9"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableX, Threshold: 2.0})
	require.NoError(t, err)
	assert.Equal(t, AlertActive, res.Instant[0].Alert)
	assert.True(t, res.Trend[0].Below)
	assert.Equal(t, 2.0, res.Trend[0].Threshold)
}

func TestAnalyze_IncreasingTrendNotApplicable(t *testing.T) {
	ds := mustDataset(t, surveyHeader, []string{"L1", "0.1", "0.2", "0.3"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableA, Threshold: 0.3})
	require.NoError(t, err)
	require.Len(t, res.Trend, 1)
	assert.Equal(t, trend.NotApplicable, res.Trend[0].CrossingDate)
	assert.False(t, res.Trend[0].Below)
}

func TestAnalyze_SingleDateColumn(t *testing.T) {
	ds := mustDataset(t, []string{"Abscisa", "1/1/2023"}, []string{"L1", "0.4"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	assert.Len(t, res.Instant, 1)
	assert.Empty(t, res.Trend)
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, trend.ReasonTooFewPoints, res.Excluded[0].Reason)
}

func TestAnalyze_NoDateColumnsWarns(t *testing.T) {
	ds := mustDataset(t, []string{"Abscisa", "Depth"}, []string{"L1", "3"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	assert.Empty(t, res.Instant)
	assert.Empty(t, res.Trend)
	assert.Equal(t, []string{"no date-format columns detected"}, res.Warnings)
	assert.Equal(t, []string{"L1"}, res.Locations)
}

func TestAnalyze_DroppedRowsWarning(t *testing.T) {
	ds := mustDataset(t, surveyHeader, []string{"L1", "1", "0.9", "0.8"}, []string{"", "1", "1", "1"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	assert.Len(t, res.Instant, 1)
	assert.Contains(t, res.Warnings, "dropped 1 row(s) without Abscisa")
}

func TestAnalyze_IsDeterministic(t *testing.T) {
	ds := mustDataset(t, surveyHeader,
		[]string{"L1", "1.0", "0.8", "0.6"},
		[]string{"L2", "0.3", "0.35", "0.2"},
	)
	a, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	b, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyzer_LogsExclusions(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ds := mustDataset(t, surveyHeader, []string{"L9", "1", "", "0.5"})
	res, err := NewAnalyzer(log).Analyze(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	require.Len(t, res.Excluded, 1)
	assert.Contains(t, buf.String(), `"location":"L9"`)
	assert.Contains(t, buf.String(), "location excluded from trend")
}

func TestRound(t *testing.T) {
	assert.Equal(t, -0.0068, round(-0.0067738, 4))
	assert.Equal(t, 0.125, round(0.125, 3))
	assert.Equal(t, 0.12, round(0.125, 2))
	assert.Equal(t, 0.0, round(-0.00001, 3))
}

func TestParseVariable(t *testing.T) {
	v, err := ParseVariable(" x ")
	require.NoError(t, err)
	assert.Equal(t, VariableX, v)
	assert.Equal(t, 2.0, v.DefaultThreshold())
	_, err = ParseVariable("Z")
	assert.Error(t, err)
}

func TestAnalyze_MalformedNumbersExcludeLocation(t *testing.T) {
	ds := mustDataset(t, surveyHeader,
		[]string{"L1", "1.0", "0.8", "0.6"},
		[]string{"L2", "1,0", "0x1p-1", "0 6"},
		[]string{"L3", "1.0", "1,234", "0.6"},
	)
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	require.Len(t, res.Trend, 1)
	assert.Equal(t, "L1", res.Trend[0].LocationID)
	require.Len(t, res.Excluded, 2)
	for _, e := range res.Excluded {
		assert.Equal(t, trend.ReasonMissingValue, e.Reason, e.LocationID)
	}
	assert.Equal(t, AlertUnknown, res.Instant[1].Alert, "\"0 6\" is not a number")
}

func TestAnalyzer_PanicIsolatedToOneLocation(t *testing.T) {
	var buf bytes.Buffer
	an := NewAnalyzer(zerolog.New(&buf).Level(zerolog.WarnLevel))
	an.fit = func(obs []trend.Observation) trend.Outcome {
		if obs[0].Value == 9 {
			panic("boom")
		}
		return trend.FitSeries(obs)
	}
	ds := mustDataset(t, surveyHeader,
		[]string{"L1", "1.0", "0.8", "0.6"},
		[]string{"L2", "9", "0.8", "0.6"},
		[]string{"L3", "0.9", "0.7", "0.5"},
	)
	res, err := an.Analyze(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)

	require.Len(t, res.Trend, 2)
	assert.Equal(t, "L1", res.Trend[0].LocationID)
	assert.Equal(t, "L3", res.Trend[1].LocationID)
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "L2", res.Excluded[0].LocationID)
	assert.Equal(t, trend.ReasonInternal, res.Excluded[0].Reason)
	assert.Equal(t, "boom", res.Excluded[0].Detail)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "trend fit failed")
	assert.Len(t, res.Instant, 3)
}

func TestAnalyze_NoDateColumnsKeepsDroppedWarning(t *testing.T) {
	ds := mustDataset(t, []string{"Abscisa", "Depth"}, []string{"L1", "3"}, []string{"", "4"})
	res, err := AnalyzeVariable(ds, Params{Variable: VariableY, Threshold: 0.6})
	require.NoError(t, err)
	assert.Equal(t, []string{"dropped 1 row(s) without Abscisa", "no date-format columns detected"}, res.Warnings)
}
