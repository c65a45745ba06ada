// Package analysis computes descriptive statistics, correlation matrices and
// time-series decompositions over a datastore.DataStore. All computations are
// synchronous and bounded by the size of the loaded table.
package analysis

import (
	"math"

	"datapilot/datastore"
)

// Engine is stateless; it reads from whichever DataStore it is handed.
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

// Describe delegates to the store's per-column summaries.
func (e *Engine) Describe(ds *datastore.DataStore, columns ...string) ([]datastore.ColumnSummary, error) {
	return ds.Describe(columns...)
}

// CorrelationMatrix is a symmetric Pearson matrix over the named columns.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlation computes the Pearson correlation matrix over the given numeric
// columns, or over every numeric column when none are named. Cells are
// computed pairwise over rows where both values are non-null; a pair with
// fewer than two shared rows (or zero variance) yields 0.
func (e *Engine) Correlation(ds *datastore.DataStore, columns ...string) (*CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = ds.NumericColumns()
	} else {
		for _, name := range columns {
			col, err := ds.Column(name)
			if err != nil {
				return nil, err
			}
			if !col.Type.IsNumeric() {
				return nil, &ColumnTypeError{Column: name, Expected: "numeric", Actual: string(col.Type)}
			}
		}
	}
	if len(columns) < 2 {
		return nil, &InsufficientColumnsError{Have: len(columns)}
	}

	vals := make([][]float64, len(columns))
	mask := make([][]bool, len(columns))
	for i, name := range columns {
		v, ok, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		vals[i], mask[i] = v, ok
	}

	matrix := &CorrelationMatrix{Columns: columns, Values: make([][]float64, len(columns))}
	for i := range columns {
		matrix.Values[i] = make([]float64, len(columns))
		matrix.Values[i][i] = 1.0
	}
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			r := pearson(vals[i], mask[i], vals[j], mask[j])
			matrix.Values[i][j] = r
			matrix.Values[j][i] = r
		}
	}
	return matrix, nil
}

// pearson computes the correlation over rows present in both masks.
func pearson(xs []float64, xok []bool, ys []float64, yok []bool) float64 {
	var n float64
	var sumX, sumY float64
	for i := range xs {
		if !xok[i] || !yok[i] {
			continue
		}
		n++
		sumX += xs[i]
		sumY += ys[i]
	}
	if n < 2 {
		return 0
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range xs {
		if !xok[i] || !yok[i] {
			continue
		}
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	r := cov / math.Sqrt(varX*varY)
	// Clamp float noise so callers can rely on [-1, 1].
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r
}
