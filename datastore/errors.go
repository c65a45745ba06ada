package datastore

import "fmt"

// IngestError reports a rejected table at ingest time. The Reason field is
// stable enough for callers (and the model) to self-correct.
type IngestError struct {
	Reason string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest rejected: %s", e.Reason)
}

// ColumnNotFoundError reports a reference to a column the dataset does not have.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in dataset", e.Column)
}

// QueryError reports a rejected or failed SQL query against the dataset mirror.
type QueryError struct {
	Query  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %s", e.Reason)
}
