package agent

import (
	"fmt"
	"math"
	"strings"

	"datapilot/analysis"
	"datapilot/datastore"
)

// BuildInsights assembles the templated insight narrative. focus, when
// non-empty, restricts the numeric sections to columns whose names contain it
// (case-insensitive).
func BuildInsights(ds *datastore.DataStore, engine *analysis.Engine, focus string) (string, error) {
	summaries, err := engine.Describe(ds)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset overview: %d rows, %d columns.\n", ds.RowCount(), len(summaries))

	matches := func(name string) bool {
		if focus == "" {
			return true
		}
		return strings.Contains(strings.ToLower(name), strings.ToLower(focus))
	}

	numericCount := 0
	for _, s := range summaries {
		if s.Numeric == nil || !matches(s.Name) {
			continue
		}
		numericCount++
		fmt.Fprintf(&b, "- %s: mean %.4g (min %.4g, max %.4g, stddev %.4g)",
			s.Name, s.Numeric.Mean, s.Numeric.Min, s.Numeric.Max, s.Numeric.StdDev)
		if s.Nulls > 0 {
			fmt.Fprintf(&b, ", %d nulls", s.Nulls)
		}
		b.WriteString("\n")
	}
	if numericCount == 0 {
		b.WriteString("No numeric columns matched; the dataset is mostly categorical.\n")
	}

	if pair := strongestCorrelation(ds, engine); pair != "" {
		b.WriteString(pair)
	}
	if trend := timeTrend(ds, engine); trend != "" {
		b.WriteString(trend)
	}

	return b.String(), nil
}

// strongestCorrelation reports the most correlated numeric column pair, when
// correlation is computable at all.
func strongestCorrelation(ds *datastore.DataStore, engine *analysis.Engine) string {
	matrix, err := engine.Correlation(ds)
	if err != nil {
		return ""
	}

	bestI, bestJ, bestAbs := -1, -1, 0.0
	for i := range matrix.Columns {
		for j := i + 1; j < len(matrix.Columns); j++ {
			if a := math.Abs(matrix.Values[i][j]); a > bestAbs {
				bestI, bestJ, bestAbs = i, j, a
			}
		}
	}
	if bestI < 0 || bestAbs < 0.3 {
		return ""
	}

	direction := "positively"
	if matrix.Values[bestI][bestJ] < 0 {
		direction = "negatively"
	}
	return fmt.Sprintf("Strongest relationship: %s and %s are %s correlated (r=%.2f).\n",
		matrix.Columns[bestI], matrix.Columns[bestJ], direction, matrix.Values[bestI][bestJ])
}

// timeTrend reports the monthly trend of the first numeric column over the
// first datetime column, if both exist.
func timeTrend(ds *datastore.DataStore, engine *analysis.Engine) string {
	var timeCol string
	for _, col := range ds.Columns() {
		if col.Type == datastore.TypeDatetime {
			timeCol = col.Name
			break
		}
	}
	numeric := ds.NumericColumns()
	if timeCol == "" || len(numeric) == 0 {
		return ""
	}

	result, err := engine.TimeSeries(ds, timeCol, numeric[0], analysis.FreqMonth)
	if err != nil || len(result.Buckets) < 2 {
		return ""
	}
	return fmt.Sprintf("Over time, %s (by %s, monthly) is trending %s across %d periods.\n",
		numeric[0], timeCol, result.Trend, len(result.Buckets))
}
