package export

import (
	"bytes"
	"testing"

	"datapilot/datastore"
)

func TestRenderProducesPDF(t *testing.T) {
	svc := NewPDFService()
	data := ReportData{
		Title:    "Quarterly Sales",
		RowCount: 120,
		Columns: []datastore.ColumnSummary{
			{Name: "region", Type: datastore.TypeString, Count: 120, Distinct: 4, Top: "north", TopFreq: 40},
			{Name: "units", Type: datastore.TypeInteger, Count: 118, Nulls: 2, Distinct: 30,
				Numeric: &datastore.NumericStats{Min: 1, Max: 99, Mean: 42.5, Median: 40, StdDev: 12.3}},
		},
		Insights: []string{
			"Dataset overview: 120 rows, 2 columns.",
			"units: mean 42.5 (min 1, max 99, stddev 12.3)",
		},
	}

	pdf, err := svc.Render(data)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not carry the PDF magic header")
	}
}

func TestRenderEmptyReport(t *testing.T) {
	svc := NewPDFService()
	pdf, err := svc.Render(ReportData{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("empty report should still render a document")
	}
}
