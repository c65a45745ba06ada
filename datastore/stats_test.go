package datastore

import (
	"errors"
	"math"
	"testing"
)

func TestDescribeNumericStats(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(RawTable{
		Columns: []string{"v"},
		Rows:    [][]string{{"2"}, {"4"}, {"4"}, {"4"}, {"5"}, {"5"}, {"7"}, {"9"}},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	out, err := ds.Describe("v")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	s := out[0]
	if s.Count != 8 || s.Distinct != 5 {
		t.Errorf("count/distinct: got %d/%d", s.Count, s.Distinct)
	}
	if s.Numeric == nil {
		t.Fatal("expected numeric stats")
	}
	if s.Numeric.Mean != 5 || s.Numeric.Min != 2 || s.Numeric.Max != 9 {
		t.Errorf("mean/min/max: %+v", s.Numeric)
	}
	if s.Numeric.Median != 4.5 {
		t.Errorf("median: expected 4.5, got %g", s.Numeric.Median)
	}
	// sample stddev of the classic 2,4,4,4,5,5,7,9 set
	if math.Abs(s.Numeric.StdDev-2.13809) > 1e-4 {
		t.Errorf("stddev: expected ~2.138, got %g", s.Numeric.StdDev)
	}
}

func TestDescribeCategoricalTop(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	out, err := ds.Describe("region")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if out[0].Top != "north" || out[0].TopFreq != 2 {
		t.Errorf("expected north x2, got %s x%d", out[0].Top, out[0].TopFreq)
	}
	if out[0].Numeric != nil {
		t.Error("string column must not carry numeric stats")
	}
}

func TestDescribeAllColumnsInOrder(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	out, err := ds.Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	want := []string{"region", "units", "price", "active", "day"}
	for i, name := range want {
		if out[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, out[i].Name)
		}
	}
}

func TestDescribeUnknownColumn(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	_, err := ds.Describe("nope")
	var nf *ColumnNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ColumnNotFoundError, got %v", err)
	}
}
