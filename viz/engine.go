// Package viz turns structured chart requests into renderable ECharts
// artifacts. The option JSON is deterministic for a given dataset and
// request: category and series order follow first appearance in the data,
// and colors come from a fixed palette.
package viz

import (
	"encoding/json"
	"fmt"
	"time"

	"datapilot/datastore"
)

// Engine renders chart requests against a DataStore.
type Engine struct {
	log func(string)
}

// NewEngine creates an Engine. log may be nil.
func NewEngine(log func(string)) *Engine {
	if log == nil {
		log = func(string) {}
	}
	return &Engine{log: log}
}

// Render validates req against the dataset and produces a new Artifact.
// Validation rules per kind:
//   - scatter: both axes numeric
//   - pie: y numeric, groupBy ignored
//   - histogram: x numeric, y ignored
//   - box: y numeric, grouped by x categories
//   - heatmap: pivot of x/groupBy when groupBy is set, otherwise the
//     correlation matrix of all numeric columns
//
// Duplicate (x, group) pairs in bar/line/pie/heatmap aggregate by SUM.
func (e *Engine) Render(ds *datastore.DataStore, req ChartRequest) (*Artifact, error) {
	if _, ok := ParseKind(string(req.Kind)); !ok {
		return nil, fmt.Errorf("unknown chart kind %q", req.Kind)
	}

	var option map[string]interface{}
	var err error
	switch req.Kind {
	case KindScatter:
		option, err = e.scatterOption(ds, req)
	case KindPie:
		option, err = e.pieOption(ds, req)
	case KindHistogram:
		option, err = e.histogramOption(ds, req)
	case KindBox:
		option, err = e.boxOption(ds, req)
	case KindHeatmap:
		option, err = e.heatmapOption(ds, req)
	default: // bar, line
		option, err = e.seriesOption(ds, req)
	}
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		option["title"] = map[string]interface{}{"text": req.Title}
	}

	raw, err := json.Marshal(option)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart option: %w", err)
	}

	e.log(fmt.Sprintf("[VIZ] Rendered %s chart (%d bytes option)", req.Kind, len(raw)))
	return &Artifact{
		Kind:        req.Kind,
		Title:       req.Title,
		Option:      raw,
		HTML:        renderHTML(req.Title, raw),
		SourceCode:  renderSource(raw),
		GeneratedAt: time.Now(),
	}, nil
}

// requireColumn fetches column metadata, mapping missing columns to the
// store's typed error.
func requireColumn(ds *datastore.DataStore, name string) (datastore.Column, error) {
	if name == "" {
		return datastore.Column{}, &datastore.ColumnNotFoundError{Column: "(empty)"}
	}
	return ds.Column(name)
}

// requireNumericAxis enforces a numeric column on the named axis.
func requireNumericAxis(ds *datastore.DataStore, axis, name string) (datastore.Column, error) {
	col, err := requireColumn(ds, name)
	if err != nil {
		return datastore.Column{}, err
	}
	if !col.Type.IsNumeric() {
		return datastore.Column{}, &AxisTypeError{Axis: axis, Column: name, Actual: string(col.Type)}
	}
	return col, nil
}
