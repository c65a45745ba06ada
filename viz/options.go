package viz

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"datapilot/analysis"
	"datapilot/datastore"
)

// categoryKey renders a cell as a category label.
func categoryKey(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return "(null)"
	case time.Time:
		return c.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(c, 10)
	default:
		return fmt.Sprintf("%v", c)
	}
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// pivot aggregates y by (x category, group category) with SUM, preserving
// first-seen order of both categories.
type pivot struct {
	xOrder     []string
	groupOrder []string
	sums       map[string]map[string]float64 // group -> x -> sum
}

func buildPivot(xs, groups []interface{}, ys []interface{}) *pivot {
	p := &pivot{sums: make(map[string]map[string]float64)}
	seenX := make(map[string]bool)
	seenG := make(map[string]bool)
	for i := range xs {
		y, ok := numericValue(ys[i])
		if !ok {
			continue
		}
		xk := categoryKey(xs[i])
		gk := "value"
		if groups != nil {
			gk = categoryKey(groups[i])
		}
		if !seenX[xk] {
			seenX[xk] = true
			p.xOrder = append(p.xOrder, xk)
		}
		if !seenG[gk] {
			seenG[gk] = true
			p.groupOrder = append(p.groupOrder, gk)
		}
		if p.sums[gk] == nil {
			p.sums[gk] = make(map[string]float64)
		}
		p.sums[gk][xk] += y
	}
	return p
}

// seriesOption builds bar and line options, pivoting by groupBy when present.
func (e *Engine) seriesOption(ds *datastore.DataStore, req ChartRequest) (map[string]interface{}, error) {
	if _, err := requireColumn(ds, req.XColumn); err != nil {
		return nil, err
	}
	if _, err := requireNumericAxis(ds, "y", req.YColumn); err != nil {
		return nil, err
	}

	xs, _, err := ds.Values(req.XColumn)
	if err != nil {
		return nil, err
	}
	ys, _, err := ds.Values(req.YColumn)
	if err != nil {
		return nil, err
	}

	var groups []interface{}
	if req.GroupBy != "" {
		if _, err := requireColumn(ds, req.GroupBy); err != nil {
			return nil, err
		}
		groups, _, err = ds.Values(req.GroupBy)
		if err != nil {
			return nil, err
		}
	}

	p := buildPivot(xs, groups, ys)

	series := make([]map[string]interface{}, 0, len(p.groupOrder))
	for gi, g := range p.groupOrder {
		data := make([]interface{}, len(p.xOrder))
		for xi, xk := range p.xOrder {
			if v, ok := p.sums[g][xk]; ok {
				data[xi] = v
			} else {
				data[xi] = nil
			}
		}
		name := g
		if req.GroupBy == "" {
			name = req.YColumn
		}
		series = append(series, map[string]interface{}{
			"name":      name,
			"type":      string(req.Kind),
			"data":      data,
			"itemStyle": map[string]interface{}{"color": seriesColor(gi)},
		})
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "axis"},
		"legend":  map[string]interface{}{},
		"xAxis":   map[string]interface{}{"type": "category", "data": p.xOrder},
		"yAxis":   map[string]interface{}{"type": "value"},
		"series":  series,
	}, nil
}

// pieOption sums y per x category. groupBy is ignored for pies.
func (e *Engine) pieOption(ds *datastore.DataStore, req ChartRequest) (map[string]interface{}, error) {
	if _, err := requireColumn(ds, req.XColumn); err != nil {
		return nil, err
	}
	if _, err := requireNumericAxis(ds, "y", req.YColumn); err != nil {
		return nil, err
	}

	xs, _, err := ds.Values(req.XColumn)
	if err != nil {
		return nil, err
	}
	ys, _, err := ds.Values(req.YColumn)
	if err != nil {
		return nil, err
	}

	p := buildPivot(xs, nil, ys)
	data := make([]map[string]interface{}, 0, len(p.xOrder))
	for i, xk := range p.xOrder {
		data = append(data, map[string]interface{}{
			"name":      xk,
			"value":     p.sums["value"][xk],
			"itemStyle": map[string]interface{}{"color": seriesColor(i)},
		})
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "item"},
		"series": []map[string]interface{}{{
			"name":   req.YColumn,
			"type":   "pie",
			"radius": "60%",
			"data":   data,
		}},
	}, nil
}

// scatterOption requires both axes numeric and plots non-null pairs.
func (e *Engine) scatterOption(ds *datastore.DataStore, req ChartRequest) (map[string]interface{}, error) {
	if _, err := requireNumericAxis(ds, "x", req.XColumn); err != nil {
		return nil, err
	}
	if _, err := requireNumericAxis(ds, "y", req.YColumn); err != nil {
		return nil, err
	}

	xv, xok, err := ds.Floats(req.XColumn)
	if err != nil {
		return nil, err
	}
	yv, yok, err := ds.Floats(req.YColumn)
	if err != nil {
		return nil, err
	}

	var groups []interface{}
	if req.GroupBy != "" {
		if _, err := requireColumn(ds, req.GroupBy); err != nil {
			return nil, err
		}
		groups, _, err = ds.Values(req.GroupBy)
		if err != nil {
			return nil, err
		}
	}

	type bucket struct {
		name string
		data [][]float64
	}
	var order []string
	byGroup := make(map[string]*bucket)
	for i := range xv {
		if !xok[i] || !yok[i] {
			continue
		}
		gk := req.YColumn
		if groups != nil {
			gk = categoryKey(groups[i])
		}
		b := byGroup[gk]
		if b == nil {
			b = &bucket{name: gk}
			byGroup[gk] = b
			order = append(order, gk)
		}
		b.data = append(b.data, []float64{xv[i], yv[i]})
	}

	series := make([]map[string]interface{}, 0, len(order))
	for i, gk := range order {
		series = append(series, map[string]interface{}{
			"name":      gk,
			"type":      "scatter",
			"data":      byGroup[gk].data,
			"itemStyle": map[string]interface{}{"color": seriesColor(i)},
		})
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "item"},
		"xAxis":   map[string]interface{}{"type": "value", "name": req.XColumn},
		"yAxis":   map[string]interface{}{"type": "value", "name": req.YColumn},
		"series":  series,
	}, nil
}

const histogramBins = 10

// histogramOption bins a numeric x column into equal-width buckets.
func (e *Engine) histogramOption(ds *datastore.DataStore, req ChartRequest) (map[string]interface{}, error) {
	if _, err := requireNumericAxis(ds, "x", req.XColumn); err != nil {
		return nil, err
	}

	xv, xok, err := ds.Floats(req.XColumn)
	if err != nil {
		return nil, err
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for i, v := range xv {
		if !xok[i] {
			continue
		}
		n++
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("column %q has no non-null values", req.XColumn)
	}

	width := (hi - lo) / histogramBins
	counts := make([]int, histogramBins)
	for i, v := range xv {
		if !xok[i] {
			continue
		}
		bin := histogramBins - 1
		if width > 0 {
			bin = int((v - lo) / width)
			if bin >= histogramBins {
				bin = histogramBins - 1
			}
		}
		counts[bin]++
	}

	labels := make([]string, histogramBins)
	data := make([]interface{}, histogramBins)
	for i := 0; i < histogramBins; i++ {
		labels[i] = fmt.Sprintf("%.4g–%.4g", lo+float64(i)*width, lo+float64(i+1)*width)
		data[i] = counts[i]
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "axis"},
		"xAxis":   map[string]interface{}{"type": "category", "data": labels, "name": req.XColumn},
		"yAxis":   map[string]interface{}{"type": "value", "name": "count"},
		"series": []map[string]interface{}{{
			"name":      req.XColumn,
			"type":      "bar",
			"data":      data,
			"barWidth":  "95%",
			"itemStyle": map[string]interface{}{"color": seriesColor(0)},
		}},
	}, nil
}

// boxOption computes five-number summaries of y per x category (or one box
// when x is empty).
func (e *Engine) boxOption(ds *datastore.DataStore, req ChartRequest) (map[string]interface{}, error) {
	if _, err := requireNumericAxis(ds, "y", req.YColumn); err != nil {
		return nil, err
	}

	yv, yok, err := ds.Floats(req.YColumn)
	if err != nil {
		return nil, err
	}

	var xs []interface{}
	if req.XColumn != "" {
		if _, err := requireColumn(ds, req.XColumn); err != nil {
			return nil, err
		}
		xs, _, err = ds.Values(req.XColumn)
		if err != nil {
			return nil, err
		}
	}

	var order []string
	groups := make(map[string][]float64)
	for i := range yv {
		if !yok[i] {
			continue
		}
		k := req.YColumn
		if xs != nil {
			k = categoryKey(xs[i])
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], yv[i])
	}

	data := make([][]float64, 0, len(order))
	for _, k := range order {
		data = append(data, fiveNumbers(groups[k]))
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "item"},
		"xAxis":   map[string]interface{}{"type": "category", "data": order},
		"yAxis":   map[string]interface{}{"type": "value", "name": req.YColumn},
		"series": []map[string]interface{}{{
			"name":      req.YColumn,
			"type":      "boxplot",
			"data":      data,
			"itemStyle": map[string]interface{}{"color": seriesColor(0)},
		}},
	}, nil
}

// fiveNumbers returns [min, q1, median, q3, max].
func fiveNumbers(vals []float64) []float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.5),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// heatmapOption pivots x by groupBy with summed y. Without groupBy it renders
// the correlation matrix of every numeric column instead.
func (e *Engine) heatmapOption(ds *datastore.DataStore, req ChartRequest) (map[string]interface{}, error) {
	if req.GroupBy == "" {
		return e.correlationHeatmap(ds)
	}

	if _, err := requireColumn(ds, req.XColumn); err != nil {
		return nil, err
	}
	if _, err := requireNumericAxis(ds, "y", req.YColumn); err != nil {
		return nil, err
	}
	if _, err := requireColumn(ds, req.GroupBy); err != nil {
		return nil, err
	}

	xs, _, err := ds.Values(req.XColumn)
	if err != nil {
		return nil, err
	}
	ys, _, err := ds.Values(req.YColumn)
	if err != nil {
		return nil, err
	}
	groups, _, err := ds.Values(req.GroupBy)
	if err != nil {
		return nil, err
	}

	p := buildPivot(xs, groups, ys)

	var cells [][3]interface{}
	lo, hi := math.Inf(1), math.Inf(-1)
	for gi, g := range p.groupOrder {
		for xi, xk := range p.xOrder {
			v, ok := p.sums[g][xk]
			if !ok {
				continue
			}
			cells = append(cells, [3]interface{}{xi, gi, v})
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("no plottable values for heatmap")
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"position": "top"},
		"xAxis":   map[string]interface{}{"type": "category", "data": p.xOrder},
		"yAxis":   map[string]interface{}{"type": "category", "data": p.groupOrder},
		"visualMap": map[string]interface{}{
			"min":        lo,
			"max":        hi,
			"calculable": true,
			"orient":     "horizontal",
			"left":       "center",
		},
		"series": []map[string]interface{}{{
			"name": req.YColumn,
			"type": "heatmap",
			"data": cells,
		}},
	}, nil
}

func (e *Engine) correlationHeatmap(ds *datastore.DataStore) (map[string]interface{}, error) {
	matrix, err := analysis.NewEngine(e.log).Correlation(ds)
	if err != nil {
		return nil, err
	}

	var cells [][3]interface{}
	for i := range matrix.Columns {
		for j := range matrix.Columns {
			cells = append(cells, [3]interface{}{i, j, round4(matrix.Values[i][j])})
		}
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"position": "top"},
		"xAxis":   map[string]interface{}{"type": "category", "data": matrix.Columns},
		"yAxis":   map[string]interface{}{"type": "category", "data": matrix.Columns},
		"visualMap": map[string]interface{}{
			"min":        -1,
			"max":        1,
			"calculable": true,
			"orient":     "horizontal",
			"left":       "center",
		},
		"series": []map[string]interface{}{{
			"name": "correlation",
			"type": "heatmap",
			"data": cells,
			"label": map[string]interface{}{
				"show": true,
			},
		}},
	}, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
