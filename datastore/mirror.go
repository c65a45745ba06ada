package datastore

import (
	"fmt"
	"strings"
	"time"
)

// datasetTable is the fixed name of the SQL mirror table.
const datasetTable = "dataset"

func sqliteType(t ColumnType) string {
	switch t {
	case TypeInteger, TypeBoolean:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// rebuildMirror drops and recreates the SQL mirror from the typed rows.
// Caller holds ds.mu. The connection is writable only for the duration of
// the rebuild; query_only is restored even on a failed ingest.
func (ds *DataStore) rebuildMirror(cols []Column, rows [][]interface{}) error {
	if _, err := ds.db.Exec("PRAGMA query_only=OFF"); err != nil {
		return err
	}
	defer ds.db.Exec("PRAGMA query_only=ON")

	if _, err := ds.db.Exec("DROP TABLE IF EXISTS " + datasetTable); err != nil {
		return err
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(col.Name) + " " + sqliteType(col.Type)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", datasetTable, strings.Join(defs, ", "))
	if _, err := ds.db.Exec(create); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", datasetTable, placeholders)

	tx, err := ds.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for _, row := range rows {
		for c, v := range row {
			switch tv := v.(type) {
			case time.Time:
				args[c] = tv.Format("2006-01-02 15:04:05")
			case bool:
				if tv {
					args[c] = int64(1)
				} else {
					args[c] = int64(0)
				}
			default:
				args[c] = v
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// QueryResult holds the rows returned by a SQL query against the dataset.
type QueryResult struct {
	Columns   []string                 `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	Truncated bool                     `json:"truncated,omitempty"`
}

// Query runs a read-only SQL statement against the dataset mirror. The table
// is exposed as "dataset". Only a single SELECT (or WITH) statement is
// accepted, and results are capped at the configured query row limit. The
// prefix check is a fast client error; the mirror connection itself is held
// in query_only mode, so writes fail even when the prefix looks harmless.
func (ds *DataStore) Query(sqlText string) (*QueryResult, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqlText), ";"))
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return nil, &QueryError{Query: sqlText, Reason: "only SELECT statements are allowed"}
	}
	if strings.Contains(trimmed, ";") {
		return nil, &QueryError{Query: sqlText, Reason: "multiple statements are not allowed"}
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.db == nil {
		return nil, &QueryError{Query: sqlText, Reason: "datastore is closed"}
	}
	if len(ds.cols) == 0 {
		return nil, &QueryError{Query: sqlText, Reason: "no dataset loaded"}
	}

	rows, err := ds.db.Query(trimmed)
	if err != nil {
		return nil, &QueryError{Query: sqlText, Reason: err.Error()}
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: sqlText, Reason: err.Error()}
	}

	result := &QueryResult{Columns: colNames}
	scan := make([]interface{}, len(colNames))
	ptrs := make([]interface{}, len(colNames))
	for i := range scan {
		ptrs[i] = &scan[i]
	}

	for rows.Next() {
		if len(result.Rows) >= ds.maxQueryRows {
			result.Truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: sqlText, Reason: err.Error()}
		}
		rec := make(map[string]interface{}, len(colNames))
		for i, name := range colNames {
			v := scan[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[name] = v
		}
		result.Rows = append(result.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: sqlText, Reason: err.Error()}
	}
	return result, nil
}
