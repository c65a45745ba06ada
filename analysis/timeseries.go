package analysis

import (
	"fmt"
	"sort"
	"time"

	"datapilot/datastore"
)

// Frequency is the bucketing granularity of a time-series decomposition.
type Frequency string

const (
	FreqDay     Frequency = "day"
	FreqWeek    Frequency = "week"
	FreqMonth   Frequency = "month"
	FreqQuarter Frequency = "quarter"
	FreqYear    Frequency = "year"
)

// ParseFrequency validates a frequency string.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FreqDay, FreqWeek, FreqMonth, FreqQuarter, FreqYear:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency %q (use day, week, month, quarter or year)", s)
}

// Trend labels the overall direction of a bucketed series.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Bucket is one aggregated period of a time series.
type Bucket struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// TimeSeriesResult is a bucketed, summed series with its trend direction.
// Aggregation is always SUM over the value column per bucket; this policy is
// fixed so repeated calls are comparable.
type TimeSeriesResult struct {
	TimeColumn  string    `json:"timeColumn"`
	ValueColumn string    `json:"valueColumn"`
	Frequency   Frequency `json:"frequency"`
	Aggregation string    `json:"aggregation"` // always "sum"
	Buckets     []Bucket  `json:"buckets"`
	Trend       Trend     `json:"trend"`
}

// TimeSeries buckets valueColumn over timeColumn at the given frequency.
// Rows where either cell is null are skipped. Fails with ColumnTypeError if
// timeColumn is not datetime or valueColumn is not numeric.
func (e *Engine) TimeSeries(ds *datastore.DataStore, timeColumn, valueColumn string, freq Frequency) (*TimeSeriesResult, error) {
	tcol, err := ds.Column(timeColumn)
	if err != nil {
		return nil, err
	}
	if tcol.Type != datastore.TypeDatetime {
		return nil, &ColumnTypeError{Column: timeColumn, Expected: "datetime", Actual: string(tcol.Type)}
	}
	vcol, err := ds.Column(valueColumn)
	if err != nil {
		return nil, err
	}
	if !vcol.Type.IsNumeric() {
		return nil, &ColumnTypeError{Column: valueColumn, Expected: "numeric", Actual: string(vcol.Type)}
	}

	times, tok, err := ds.Times(timeColumn)
	if err != nil {
		return nil, err
	}
	vals, vok, err := ds.Floats(valueColumn)
	if err != nil {
		return nil, err
	}

	type agg struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*agg)
	for i := range times {
		if !tok[i] || !vok[i] {
			continue
		}
		key := truncatePeriod(times[i], freq)
		b := buckets[key]
		if b == nil {
			b = &agg{}
			buckets[key] = b
		}
		b.sum += vals[i]
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &TimeSeriesResult{
		TimeColumn:  timeColumn,
		ValueColumn: valueColumn,
		Frequency:   freq,
		Aggregation: "sum",
		Buckets:     make([]Bucket, 0, len(keys)),
	}
	for _, k := range keys {
		result.Buckets = append(result.Buckets, Bucket{Period: k, Value: buckets[k].sum, Count: buckets[k].count})
	}
	result.Trend = trendOf(result.Buckets)
	return result, nil
}

// truncatePeriod formats t truncated to the frequency boundary. Period keys
// sort lexicographically in chronological order.
func truncatePeriod(t time.Time, freq Frequency) string {
	switch freq {
	case FreqDay:
		return t.Format("2006-01-02")
	case FreqWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case FreqMonth:
		return t.Format("2006-01")
	case FreqQuarter:
		q := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", t.Year(), q)
	default: // FreqYear
		return t.Format("2006")
	}
}

// trendOf fits a least-squares slope over bucket values; a slope within 1% of
// the mean magnitude per bucket counts as flat.
func trendOf(buckets []Bucket) Trend {
	if len(buckets) < 2 {
		return TrendFlat
	}
	n := float64(len(buckets))
	var sumX, sumY, sumXY, sumXX float64
	for i, b := range buckets {
		x := float64(i)
		sumX += x
		sumY += b.Value
		sumXY += x * b.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return TrendFlat
	}
	slope := (n*sumXY - sumX*sumY) / denom
	mean := sumY / n
	eps := 0.01 * abs(mean)
	if slope > eps {
		return TrendUp
	}
	if slope < -eps {
		return TrendDown
	}
	return TrendFlat
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
