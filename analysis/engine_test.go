package analysis

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"

	"datapilot/datastore"
	"datapilot/dbpool"
)

func newTestStore(t *testing.T, raw datastore.RawTable) *datastore.DataStore {
	t.Helper()
	pool := dbpool.New(dbpool.EngineSQLite, nil)
	ds, err := datastore.New(pool, datastore.Options{MaxRows: 1000, MaxColumns: 16, MaxQueryRows: 100})
	if err != nil {
		t.Fatalf("datastore.New failed: %v", err)
	}
	t.Cleanup(func() { ds.Close() })
	if _, err := ds.Ingest(raw); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	return ds
}

func TestCorrelationPerfectLinear(t *testing.T) {
	ds := newTestStore(t, datastore.RawTable{
		Columns: []string{"x", "double", "neg"},
		Rows: [][]string{
			{"1", "2", "-1"},
			{"2", "4", "-2"},
			{"3", "6", "-3"},
			{"4", "8", "-4"},
		},
	})
	engine := NewEngine(nil)

	m, err := engine.Correlation(ds)
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if math.Abs(m.Values[0][1]-1) > 1e-9 {
		t.Errorf("x vs double: expected 1, got %g", m.Values[0][1])
	}
	if math.Abs(m.Values[0][2]+1) > 1e-9 {
		t.Errorf("x vs neg: expected -1, got %g", m.Values[0][2])
	}
}

func TestCorrelationSkipsNullPairs(t *testing.T) {
	ds := newTestStore(t, datastore.RawTable{
		Columns: []string{"a", "b"},
		Rows: [][]string{
			{"1", "10"},
			{"2", ""},
			{"3", "30"},
			{"4", "40"},
		},
	})
	engine := NewEngine(nil)

	m, err := engine.Correlation(ds, "a", "b")
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if math.Abs(m.Values[0][1]-1) > 1e-9 {
		t.Errorf("expected 1 over the shared rows, got %g", m.Values[0][1])
	}
}

func TestCorrelationRejectsNonNumeric(t *testing.T) {
	ds := newTestStore(t, datastore.RawTable{
		Columns: []string{"name", "v"},
		Rows:    [][]string{{"a", "1"}, {"b", "2"}},
	})
	engine := NewEngine(nil)

	_, err := engine.Correlation(ds, "name", "v")
	var typeErr *ColumnTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected ColumnTypeError, got %v", err)
	}
}

func TestCorrelationNeedsTwoColumns(t *testing.T) {
	ds := newTestStore(t, datastore.RawTable{
		Columns: []string{"only"},
		Rows:    [][]string{{"1"}, {"2"}},
	})
	engine := NewEngine(nil)

	_, err := engine.Correlation(ds)
	var insuff *InsufficientColumnsError
	if !errors.As(err, &insuff) {
		t.Fatalf("expected InsufficientColumnsError, got %v", err)
	}
}

func TestCorrelationZeroVariance(t *testing.T) {
	ds := newTestStore(t, datastore.RawTable{
		Columns: []string{"flat", "v"},
		Rows:    [][]string{{"5", "1"}, {"5", "2"}, {"5", "3"}},
	})
	engine := NewEngine(nil)

	m, err := engine.Correlation(ds)
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if m.Values[0][1] != 0 {
		t.Errorf("zero-variance column should correlate 0, got %g", m.Values[0][1])
	}
}

func TestCorrelationMatrixProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 30).Draw(t, "rows")
		raw := datastore.RawTable{Columns: []string{"a", "b", "c"}}
		for i := 0; i < n; i++ {
			row := make([]string, 3)
			for j := range row {
				row[j] = fmt.Sprintf("%d", rapid.IntRange(-100, 100).Draw(t, "cell"))
			}
			raw.Rows = append(raw.Rows, row)
		}

		pool := dbpool.New(dbpool.EngineSQLite, nil)
		ds, err := datastore.New(pool, datastore.Options{MaxRows: 1000, MaxColumns: 16, MaxQueryRows: 100})
		if err != nil {
			t.Fatalf("datastore.New failed: %v", err)
		}
		defer ds.Close()
		if _, err := ds.Ingest(raw); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}

		m, err := NewEngine(nil).Correlation(ds)
		if err != nil {
			t.Fatalf("Correlation failed: %v", err)
		}
		for i := range m.Columns {
			if m.Values[i][i] != 1 {
				t.Fatalf("diagonal [%d][%d] = %g, expected 1", i, i, m.Values[i][i])
			}
			for j := range m.Columns {
				if m.Values[i][j] != m.Values[j][i] {
					t.Fatalf("matrix not symmetric at [%d][%d]", i, j)
				}
				if m.Values[i][j] < -1 || m.Values[i][j] > 1 {
					t.Fatalf("value out of [-1,1]: %g", m.Values[i][j])
				}
			}
		}
	})
}
