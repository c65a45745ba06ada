package analysis

import (
	"errors"
	"testing"

	"datapilot/datastore"
)

func timeSeriesTable() datastore.RawTable {
	return datastore.RawTable{
		Columns: []string{"day", "amount", "label"},
		Rows: [][]string{
			{"2024-01-05", "10", "a"},
			{"2024-01-20", "20", "b"},
			{"2024-02-03", "15", "c"},
			{"2024-02-28", "15", "d"},
			{"2024-03-10", "50", "e"},
			{"2024-03-11", "", "f"},
		},
	}
}

func TestTimeSeriesMonthlyBuckets(t *testing.T) {
	ds := newTestStore(t, timeSeriesTable())
	engine := NewEngine(nil)

	res, err := engine.TimeSeries(ds, "day", "amount", FreqMonth)
	if err != nil {
		t.Fatalf("TimeSeries failed: %v", err)
	}
	if res.Aggregation != "sum" {
		t.Errorf("aggregation: %s", res.Aggregation)
	}
	if len(res.Buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(res.Buckets))
	}

	want := []Bucket{
		{Period: "2024-01", Value: 30, Count: 2},
		{Period: "2024-02", Value: 30, Count: 2},
		{Period: "2024-03", Value: 50, Count: 1}, // null amount row skipped
	}
	for i, b := range want {
		if res.Buckets[i] != b {
			t.Errorf("bucket %d: expected %+v, got %+v", i, b, res.Buckets[i])
		}
	}
	if res.Trend != TrendUp {
		t.Errorf("expected up trend, got %s", res.Trend)
	}
}

func TestTimeSeriesQuarterAndYearKeys(t *testing.T) {
	ds := newTestStore(t, timeSeriesTable())
	engine := NewEngine(nil)

	res, err := engine.TimeSeries(ds, "day", "amount", FreqQuarter)
	if err != nil {
		t.Fatalf("TimeSeries failed: %v", err)
	}
	if len(res.Buckets) != 1 || res.Buckets[0].Period != "2024-Q1" {
		t.Errorf("quarter buckets: %+v", res.Buckets)
	}

	res, err = engine.TimeSeries(ds, "day", "amount", FreqYear)
	if err != nil {
		t.Fatalf("TimeSeries failed: %v", err)
	}
	if len(res.Buckets) != 1 || res.Buckets[0].Period != "2024" || res.Buckets[0].Value != 110 {
		t.Errorf("year buckets: %+v", res.Buckets)
	}
}

func TestTimeSeriesColumnValidation(t *testing.T) {
	ds := newTestStore(t, timeSeriesTable())
	engine := NewEngine(nil)

	_, err := engine.TimeSeries(ds, "amount", "amount", FreqMonth)
	var typeErr *ColumnTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("non-datetime time column: expected ColumnTypeError, got %v", err)
	}

	_, err = engine.TimeSeries(ds, "day", "label", FreqMonth)
	if !errors.As(err, &typeErr) {
		t.Fatalf("non-numeric value column: expected ColumnTypeError, got %v", err)
	}

	_, err = engine.TimeSeries(ds, "missing", "amount", FreqMonth)
	var nf *datastore.ColumnNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("unknown column: expected ColumnNotFoundError, got %v", err)
	}
}

func TestParseFrequency(t *testing.T) {
	if _, err := ParseFrequency("month"); err != nil {
		t.Errorf("month should parse: %v", err)
	}
	if _, err := ParseFrequency("fortnight"); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestTrendDirections(t *testing.T) {
	down := []Bucket{{Value: 100}, {Value: 60}, {Value: 20}}
	if got := trendOf(down); got != TrendDown {
		t.Errorf("expected down, got %s", got)
	}
	flat := []Bucket{{Value: 50}, {Value: 50}, {Value: 50}}
	if got := trendOf(flat); got != TrendFlat {
		t.Errorf("expected flat, got %s", got)
	}
	if got := trendOf([]Bucket{{Value: 1}}); got != TrendFlat {
		t.Errorf("single bucket should be flat, got %s", got)
	}
}
