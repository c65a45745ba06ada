package datastore

import (
	"strconv"
	"strings"
	"time"
)

// ColumnType is the inferred type of a dataset column.
type ColumnType string

const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeString   ColumnType = "string"
	TypeBoolean  ColumnType = "boolean"
	TypeDatetime ColumnType = "datetime"
)

// IsNumeric reports whether the type participates in numeric statistics.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Column describes one dataset column. Type is fixed at ingest time and never
// re-inferred afterwards.
type Column struct {
	Name  string     `json:"name"`
	Type  ColumnType `json:"type"`
	Nulls int        `json:"nulls"`
}

// RawTable is an uninterpreted table: a header plus string cells. Empty cells
// are treated as nulls during inference.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// IngestSummary reports the outcome of a successful ingest.
type IngestSummary struct {
	RowCount int      `json:"rowCount"`
	Columns  []Column `json:"columns"`
}

// dateFormats is the fixed set of layouts a datetime column must parse under.
// The order matters only for parse speed, not for inference outcome.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
}

func parseDatetime(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// inferColumnType picks a type for a column given its non-null cells.
// Precedence: boolean, then numeric (integer narrowing to float), then
// datetime, then string. Numeric wins over datetime, so "2024" is an integer.
func inferColumnType(values []string) ColumnType {
	if len(values) == 0 {
		return TypeString
	}

	allBool := true
	for _, v := range values {
		if _, ok := parseBool(v); !ok {
			allBool = false
			break
		}
	}
	if allBool {
		return TypeBoolean
	}

	allInt := true
	allNum := true
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allNum = false
			break
		}
	}
	if allNum {
		if allInt {
			return TypeInteger
		}
		return TypeFloat
	}

	allTime := true
	for _, v := range values {
		if _, ok := parseDatetime(v); !ok {
			allTime = false
			break
		}
	}
	if allTime {
		return TypeDatetime
	}

	return TypeString
}

// convertCell converts a raw cell to its typed value under the declared
// column type. Cells that fail to convert (possible when a column ceiling
// truncated inference input) degrade to nil.
func convertCell(raw string, t ColumnType) interface{} {
	if raw == "" {
		return nil
	}
	switch t {
	case TypeBoolean:
		if b, ok := parseBool(raw); ok {
			return b
		}
	case TypeInteger:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case TypeDatetime:
		if ts, ok := parseDatetime(raw); ok {
			return ts
		}
	case TypeString:
		return raw
	}
	return nil
}
