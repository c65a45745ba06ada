package analysis

import "fmt"

// InsufficientColumnsError reports a correlation request over fewer than two
// numeric columns.
type InsufficientColumnsError struct {
	Have int
}

func (e *InsufficientColumnsError) Error() string {
	return fmt.Sprintf("correlation requires at least 2 numeric columns, have %d", e.Have)
}

// ColumnTypeError reports a column whose declared type does not fit the
// requested analysis.
type ColumnTypeError struct {
	Column   string
	Expected string
	Actual   string
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("column %q is %s, expected %s", e.Column, e.Actual, e.Expected)
}
