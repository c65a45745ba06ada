package datastore

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	raw, err := ParseCSV(strings.NewReader("name, value \nalice, 3\nbob,4\n\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if raw.Columns[0] != "name" || raw.Columns[1] != "value" {
		t.Errorf("header not trimmed: %v", raw.Columns)
	}
	if len(raw.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(raw.Rows))
	}
	if raw.Rows[0][1] != "3" {
		t.Errorf("cell not trimmed: %q", raw.Rows[0][1])
	}
}

func TestParseCSVEmptyDocument(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestParseCSVQuotedCells(t *testing.T) {
	raw, err := ParseCSV(strings.NewReader("a,b\n\"x, y\",2\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if raw.Rows[0][0] != "x, y" {
		t.Errorf("quoted cell mangled: %q", raw.Rows[0][0])
	}
}
