package viz

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

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

func chartTable() datastore.RawTable {
	return datastore.RawTable{
		Columns: []string{"cat", "value", "group"},
		Rows: [][]string{
			{"A", "10", "g1"},
			{"B", "20", "g1"},
			{"A", "5", "g2"},
		},
	}
}

func decodeOption(t *testing.T, a *Artifact) map[string]interface{} {
	t.Helper()
	var option map[string]interface{}
	if err := json.Unmarshal(a.Option, &option); err != nil {
		t.Fatalf("option is not valid JSON: %v", err)
	}
	return option
}

func TestBarChartSumsDuplicateCategories(t *testing.T) {
	ds := newTestStore(t, chartTable())
	engine := NewEngine(nil)

	a, err := engine.Render(ds, ChartRequest{Kind: KindBar, XColumn: "cat", YColumn: "value"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	option := decodeOption(t, a)

	xAxis := option["xAxis"].(map[string]interface{})
	cats := xAxis["data"].([]interface{})
	if len(cats) != 2 || cats[0] != "A" || cats[1] != "B" {
		t.Errorf("categories should be first-seen order: %v", cats)
	}

	series := option["series"].([]interface{})
	data := series[0].(map[string]interface{})["data"].([]interface{})
	if data[0].(float64) != 15 || data[1].(float64) != 20 {
		t.Errorf("expected sums [15 20], got %v", data)
	}
}

func TestGroupedBarChartSeriesPerGroup(t *testing.T) {
	ds := newTestStore(t, chartTable())
	engine := NewEngine(nil)

	a, err := engine.Render(ds, ChartRequest{Kind: KindBar, XColumn: "cat", YColumn: "value", GroupBy: "group"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	option := decodeOption(t, a)

	series := option["series"].([]interface{})
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	first := series[0].(map[string]interface{})
	second := series[1].(map[string]interface{})
	if first["name"] != "g1" || second["name"] != "g2" {
		t.Errorf("series names out of order: %v, %v", first["name"], second["name"])
	}
	// g2 has no B value; the slot must be null, not zero
	if second["data"].([]interface{})[1] != nil {
		t.Errorf("missing pivot cell should be null: %v", second["data"])
	}

	c1 := first["itemStyle"].(map[string]interface{})["color"]
	c2 := second["itemStyle"].(map[string]interface{})["color"]
	if c1 != seriesColor(0) || c2 != seriesColor(1) {
		t.Errorf("palette not applied in order: %v, %v", c1, c2)
	}
}

func TestScatterRequiresNumericAxes(t *testing.T) {
	ds := newTestStore(t, chartTable())
	engine := NewEngine(nil)

	_, err := engine.Render(ds, ChartRequest{Kind: KindScatter, XColumn: "cat", YColumn: "value"})
	var axisErr *AxisTypeError
	if !errors.As(err, &axisErr) {
		t.Fatalf("expected AxisTypeError, got %v", err)
	}
	if axisErr.Axis != "x" {
		t.Errorf("expected x axis in error, got %s", axisErr.Axis)
	}
}

func TestHistogramBinsCoverAllValues(t *testing.T) {
	raw := datastore.RawTable{Columns: []string{"v"}}
	for i := 0; i < 100; i++ {
		raw.Rows = append(raw.Rows, []string{string(rune('0' + i%10))})
	}
	ds := newTestStore(t, raw)
	engine := NewEngine(nil)

	a, err := engine.Render(ds, ChartRequest{Kind: KindHistogram, XColumn: "v"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	option := decodeOption(t, a)

	series := option["series"].([]interface{})
	data := series[0].(map[string]interface{})["data"].([]interface{})
	if len(data) != histogramBins {
		t.Fatalf("expected %d bins, got %d", histogramBins, len(data))
	}
	total := 0.0
	for _, c := range data {
		total += c.(float64)
	}
	if total != 100 {
		t.Errorf("bins should cover all 100 values, got %g", total)
	}
}

func TestHeatmapWithoutGroupByIsCorrelationMatrix(t *testing.T) {
	ds := newTestStore(t, datastore.RawTable{
		Columns: []string{"x", "y"},
		Rows:    [][]string{{"1", "2"}, {"2", "4"}, {"3", "6"}},
	})
	engine := NewEngine(nil)

	a, err := engine.Render(ds, ChartRequest{Kind: KindHeatmap})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	option := decodeOption(t, a)

	vm := option["visualMap"].(map[string]interface{})
	if vm["min"].(float64) != -1 || vm["max"].(float64) != 1 {
		t.Errorf("correlation heatmap range should be [-1,1]: %v", vm)
	}
	xAxis := option["xAxis"].(map[string]interface{})
	cols := xAxis["data"].([]interface{})
	if len(cols) != 2 {
		t.Errorf("expected both numeric columns on the axis: %v", cols)
	}
}

func TestRenderTitleAndHTML(t *testing.T) {
	ds := newTestStore(t, chartTable())
	engine := NewEngine(nil)

	a, err := engine.Render(ds, ChartRequest{Kind: KindPie, XColumn: "cat", YColumn: "value", Title: "Share by category"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	option := decodeOption(t, a)
	title := option["title"].(map[string]interface{})
	if title["text"] != "Share by category" {
		t.Errorf("title not injected: %v", title)
	}

	if !strings.Contains(a.HTML, echartsScript) {
		t.Error("HTML must declare the echarts script")
	}
	if !strings.Contains(a.HTML, string(a.Option)) {
		t.Error("HTML must embed the option JSON")
	}
	if a.SourceCode == "" {
		t.Error("artifact should carry a reproducible source snippet")
	}
	if a.GeneratedAt.IsZero() {
		t.Error("GeneratedAt must be set")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	ds := newTestStore(t, chartTable())
	engine := NewEngine(nil)
	if _, err := engine.Render(ds, ChartRequest{Kind: Kind("sankey")}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPaletteWrapsDeterministically(t *testing.T) {
	if seriesColor(0) != seriesColor(len(palette)) {
		t.Error("palette should wrap modulo its size")
	}
	for i := 0; i < len(palette); i++ {
		if seriesColor(i) != palette[i] {
			t.Errorf("seriesColor(%d) should be palette[%d]", i, i)
		}
	}
}
