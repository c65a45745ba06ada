package datastore

import (
	"errors"
	"testing"

	"datapilot/dbpool"
)

func TestQueryAggregation(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	res, err := ds.Query(`SELECT region, SUM(units) AS total FROM dataset GROUP BY region ORDER BY region`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	totals := map[string]int64{}
	for _, row := range res.Rows {
		totals[row["region"].(string)] = row["total"].(int64)
	}
	if totals["north"] != 15 || totals["south"] != 20 || totals["east"] != 8 {
		t.Errorf("unexpected totals: %v", totals)
	}
}

func TestQueryRejectsNonSelect(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	for _, q := range []string{
		"DELETE FROM dataset",
		"UPDATE dataset SET units = 0",
		"DROP TABLE dataset",
		"SELECT 1; DROP TABLE dataset",
	} {
		_, err := ds.Query(q)
		var qerr *QueryError
		if !errors.As(err, &qerr) {
			t.Errorf("%q: expected QueryError, got %v", q, err)
		}
	}
}

func TestQueryCannotMutateMirror(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// passes the SELECT/WITH prefix check but is a write
	if _, err := ds.Query(`WITH doomed AS (SELECT 1) DELETE FROM dataset`); err == nil {
		t.Fatal("write statement behind a WITH prefix must fail")
	}

	res, err := ds.Query("SELECT COUNT(*) AS n FROM dataset")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.Rows[0]["n"].(int64) != 4 {
		t.Errorf("mirror was mutated: %v rows left", res.Rows[0]["n"])
	}

	// the mirror must still accept a fresh ingest afterwards
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("re-ingest after rejected write failed: %v", err)
	}
}

func TestQueryAllowsWithClause(t *testing.T) {
	ds := newTestStore(t)
	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	res, err := ds.Query(`WITH big AS (SELECT * FROM dataset WHERE units > 7) SELECT COUNT(*) AS n FROM big`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.Rows[0]["n"].(int64) != 3 {
		t.Errorf("expected 3, got %v", res.Rows[0]["n"])
	}
}

func TestQueryTruncatesAtRowCap(t *testing.T) {
	pool := dbpool.New(dbpool.EngineSQLite, nil)
	ds, err := New(pool, Options{MaxRows: 1000, MaxColumns: 16, MaxQueryRows: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ds.Close()

	if _, err := ds.Ingest(salesTable()); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	res, err := ds.Query("SELECT * FROM dataset")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.Rows) != 2 || !res.Truncated {
		t.Errorf("expected 2 truncated rows, got %d (truncated=%v)", len(res.Rows), res.Truncated)
	}
}

func TestQueryWithoutDataset(t *testing.T) {
	ds := newTestStore(t)
	_, err := ds.Query("SELECT 1")
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected QueryError, got %v", err)
	}
}
