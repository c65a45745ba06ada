package datastore

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"datapilot/dbpool"
)

// Options bounds a DataStore. Zero values fall back to permissive defaults.
type Options struct {
	MaxRows      int
	MaxColumns   int
	MaxQueryRows int
	Log          func(string)
}

// DataStore owns one session's tabular dataset: the typed in-memory rows,
// the per-column metadata, and an in-memory SQLite mirror used for SQL
// querying. Column types are inferred once at ingest and stay fixed for the
// lifetime of the loaded table.
type DataStore struct {
	mu   sync.RWMutex
	cols []Column
	rows [][]interface{}
	db   *sql.DB

	maxRows      int
	maxCols      int
	maxQueryRows int
	log          func(string)
}

// New creates an empty DataStore backed by a private in-memory SQLite database.
func New(pool *dbpool.DBManager, opts Options) (*DataStore, error) {
	db, err := pool.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset mirror: %w", err)
	}
	// The mirror connection stays read-only outside of rebuildMirror, so a
	// write statement smuggled past the SELECT prefix check still fails.
	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to lock dataset mirror: %w", err)
	}

	if opts.MaxRows <= 0 {
		opts.MaxRows = 100000
	}
	if opts.MaxColumns <= 0 {
		opts.MaxColumns = 256
	}
	if opts.MaxQueryRows <= 0 {
		opts.MaxQueryRows = 1000
	}
	if opts.Log == nil {
		opts.Log = func(string) {}
	}

	return &DataStore{
		db:           db,
		maxRows:      opts.MaxRows,
		maxCols:      opts.MaxColumns,
		maxQueryRows: opts.MaxQueryRows,
		log:          opts.Log,
	}, nil
}

// Close releases the SQLite mirror. The store must not be used afterwards.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.db == nil {
		return nil
	}
	err := ds.db.Close()
	ds.db = nil
	return err
}

// Loaded reports whether a table has been ingested.
func (ds *DataStore) Loaded() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.cols) > 0
}

// Ingest validates raw, infers column types, and replaces the whole table.
// Partial updates are not supported; a failed ingest leaves the previous
// table untouched.
func (ds *DataStore) Ingest(raw RawTable) (*IngestSummary, error) {
	if len(raw.Columns) == 0 || len(raw.Rows) == 0 {
		return nil, &IngestError{Reason: "table is empty"}
	}
	if len(raw.Columns) > ds.maxCols {
		return nil, &IngestError{Reason: fmt.Sprintf("table has %d columns, limit is %d", len(raw.Columns), ds.maxCols)}
	}
	if len(raw.Rows) > ds.maxRows {
		return nil, &IngestError{Reason: fmt.Sprintf("table has %d rows, limit is %d", len(raw.Rows), ds.maxRows)}
	}

	seen := make(map[string]bool, len(raw.Columns))
	for _, name := range raw.Columns {
		if strings.TrimSpace(name) == "" {
			return nil, &IngestError{Reason: "blank column name"}
		}
		if seen[name] {
			return nil, &IngestError{Reason: fmt.Sprintf("duplicate column name %q", name)}
		}
		seen[name] = true
	}
	for i, row := range raw.Rows {
		if len(row) != len(raw.Columns) {
			return nil, &IngestError{Reason: fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(raw.Columns))}
		}
	}

	cols := make([]Column, len(raw.Columns))
	for c, name := range raw.Columns {
		nonNull := make([]string, 0, len(raw.Rows))
		nulls := 0
		for _, row := range raw.Rows {
			if row[c] == "" {
				nulls++
				continue
			}
			nonNull = append(nonNull, row[c])
		}
		cols[c] = Column{Name: name, Type: inferColumnType(nonNull), Nulls: nulls}
	}

	rows := make([][]interface{}, len(raw.Rows))
	for r, rawRow := range raw.Rows {
		typed := make([]interface{}, len(cols))
		for c := range cols {
			typed[c] = convertCell(rawRow[c], cols[c].Type)
		}
		rows[r] = typed
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.db == nil {
		return nil, fmt.Errorf("datastore is closed")
	}
	if err := ds.rebuildMirror(cols, rows); err != nil {
		return nil, fmt.Errorf("failed to build dataset mirror: %w", err)
	}
	ds.cols = cols
	ds.rows = rows

	ds.log(fmt.Sprintf("[DATASTORE] Ingested %d rows x %d columns", len(rows), len(cols)))
	return &IngestSummary{RowCount: len(rows), Columns: append([]Column(nil), cols...)}, nil
}

// Preview returns the first min(n, rowCount) rows in original order.
func (ds *DataStore) Preview(n int) []map[string]interface{} {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if n > len(ds.rows) {
		n = len(ds.rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([]map[string]interface{}, 0, n)
	for _, row := range ds.rows[:n] {
		rec := make(map[string]interface{}, len(ds.cols))
		for c, col := range ds.cols {
			rec[col.Name] = row[c]
		}
		out = append(out, rec)
	}
	return out
}

// Columns returns a copy of the column metadata.
func (ds *DataStore) Columns() []Column {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]Column(nil), ds.cols...)
}

// RowCount returns the number of ingested rows.
func (ds *DataStore) RowCount() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.rows)
}

// Column returns the metadata for one column.
func (ds *DataStore) Column(name string) (Column, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	for _, col := range ds.cols {
		if col.Name == name {
			return col, nil
		}
	}
	return Column{}, &ColumnNotFoundError{Column: name}
}

// NumericColumns returns the names of all numeric columns in declaration order.
func (ds *DataStore) NumericColumns() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	var names []string
	for _, col := range ds.cols {
		if col.Type.IsNumeric() {
			names = append(names, col.Name)
		}
	}
	return names
}

// Values returns the raw typed values of one column, aligned with row order.
// Null cells are nil.
func (ds *DataStore) Values(name string) ([]interface{}, Column, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	for c, col := range ds.cols {
		if col.Name != name {
			continue
		}
		vals := make([]interface{}, len(ds.rows))
		for r, row := range ds.rows {
			vals[r] = row[c]
		}
		return vals, col, nil
	}
	return nil, Column{}, &ColumnNotFoundError{Column: name}
}

// Floats returns a numeric column as float64 values with a parallel null mask.
// ok[i] is false where the cell is null.
func (ds *DataStore) Floats(name string) (vals []float64, ok []bool, err error) {
	raw, col, err := ds.Values(name)
	if err != nil {
		return nil, nil, err
	}
	if !col.Type.IsNumeric() {
		return nil, nil, fmt.Errorf("column %q is %s, not numeric", name, col.Type)
	}
	vals = make([]float64, len(raw))
	ok = make([]bool, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case int64:
			vals[i], ok[i] = float64(n), true
		case float64:
			vals[i], ok[i] = n, true
		}
	}
	return vals, ok, nil
}

// Times returns a datetime column as time values with a parallel null mask.
func (ds *DataStore) Times(name string) (vals []time.Time, ok []bool, err error) {
	raw, col, err := ds.Values(name)
	if err != nil {
		return nil, nil, err
	}
	if col.Type != TypeDatetime {
		return nil, nil, fmt.Errorf("column %q is %s, not datetime", name, col.Type)
	}
	vals = make([]time.Time, len(raw))
	ok = make([]bool, len(raw))
	for i, v := range raw {
		if t, isTime := v.(time.Time); isTime {
			vals[i], ok[i] = t, true
		}
	}
	return vals, ok, nil
}
