package datastore

import (
	"context"
	"fmt"
	"regexp"

	"datapilot/dbpool"
)

// Importer pulls a table out of an external database (MySQL, Snowflake) into
// a RawTable suitable for Ingest.
type Importer struct {
	pool    *dbpool.DBManager
	maxRows int
	log     func(string)
}

// NewImporter creates an Importer. maxRows caps the imported row count and
// should match the ingest ceiling.
func NewImporter(pool *dbpool.DBManager, maxRows int, log func(string)) *Importer {
	if log == nil {
		log = func(string) {}
	}
	if maxRows <= 0 {
		maxRows = 100000
	}
	return &Importer{pool: pool, maxRows: maxRows, log: log}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.$]*$`)

// ImportTable reads up to the row ceiling from the named table. All cells are
// stringified; type inference happens later in Ingest, so local and imported
// data go through the same policy.
func (im *Importer) ImportTable(ctx context.Context, engine dbpool.Engine, dsn, table string) (RawTable, error) {
	if !identPattern.MatchString(table) {
		return RawTable{}, fmt.Errorf("invalid table name %q", table)
	}

	db, err := im.pool.Open(dbpool.OpenOptions{Engine: engine, Path: dsn, Mode: dbpool.ModeReadOnly})
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to connect to %s: %w", engine, err)
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, im.maxRows+1)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return RawTable{}, err
	}

	raw := RawTable{Columns: cols}
	scan := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range scan {
		ptrs[i] = &scan[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return RawTable{}, err
		}
		rec := make([]string, len(cols))
		for i, v := range scan {
			switch c := v.(type) {
			case nil:
				rec[i] = ""
			case []byte:
				rec[i] = string(c)
			default:
				rec[i] = fmt.Sprintf("%v", c)
			}
		}
		raw.Rows = append(raw.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return RawTable{}, err
	}

	im.log(fmt.Sprintf("[IMPORT] %s table %s: %d rows", engine, table, len(raw.Rows)))
	return raw, nil
}
