package datastore

import (
	"fmt"
	"math"
	"sort"
)

// NumericStats holds summary statistics for a numeric column.
// StdDev is the sample standard deviation (n-1 denominator).
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
}

// ColumnSummary describes one column. Numeric is set only for numeric
// columns; Top/TopFreq only for non-numeric ones.
type ColumnSummary struct {
	Name     string        `json:"name"`
	Type     ColumnType    `json:"type"`
	Count    int           `json:"count"`
	Distinct int           `json:"distinct"`
	Nulls    int           `json:"nulls"`
	Numeric  *NumericStats `json:"numeric,omitempty"`
	Top      string        `json:"top,omitempty"`
	TopFreq  int           `json:"topFreq,omitempty"`
}

// Describe computes per-column summaries. With no arguments every column is
// described; otherwise only the named columns, failing on an unknown name.
func (ds *DataStore) Describe(names ...string) ([]ColumnSummary, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if len(ds.cols) == 0 {
		return nil, fmt.Errorf("no dataset loaded")
	}

	idx := make(map[string]int, len(ds.cols))
	for i, col := range ds.cols {
		idx[col.Name] = i
	}

	targets := names
	if len(targets) == 0 {
		targets = make([]string, len(ds.cols))
		for i, col := range ds.cols {
			targets[i] = col.Name
		}
	}

	out := make([]ColumnSummary, 0, len(targets))
	for _, name := range targets {
		c, okCol := idx[name]
		if !okCol {
			return nil, &ColumnNotFoundError{Column: name}
		}
		col := ds.cols[c]

		summary := ColumnSummary{Name: col.Name, Type: col.Type, Nulls: col.Nulls}
		freq := make(map[string]int)
		var nums []float64
		for _, row := range ds.rows {
			v := row[c]
			if v == nil {
				continue
			}
			summary.Count++
			key := fmt.Sprintf("%v", v)
			freq[key]++
			switch n := v.(type) {
			case int64:
				nums = append(nums, float64(n))
			case float64:
				nums = append(nums, n)
			}
		}
		summary.Distinct = len(freq)

		if col.Type.IsNumeric() && len(nums) > 0 {
			summary.Numeric = numericStats(nums)
		} else if !col.Type.IsNumeric() {
			top, topFreq := "", 0
			for k, n := range freq {
				if n > topFreq || (n == topFreq && k < top) {
					top, topFreq = k, n
				}
			}
			summary.Top = top
			summary.TopFreq = topFreq
		}
		out = append(out, summary)
	}
	return out, nil
}

func numericStats(nums []float64) *NumericStats {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	if len(sorted) > 1 {
		for _, v := range sorted {
			d := v - mean
			variance += d * d
		}
		variance /= float64(len(sorted) - 1)
	}

	return &NumericStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median(sorted),
		StdDev: math.Sqrt(variance),
	}
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
