package viz

import (
	"encoding/json"
	"time"
)

// Kind enumerates the supported chart kinds.
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindPie       Kind = "pie"
	KindScatter   Kind = "scatter"
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
	KindHeatmap   Kind = "heatmap"
)

// ParseKind validates a chart kind string.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindBar, KindLine, KindPie, KindScatter, KindHistogram, KindBox, KindHeatmap:
		return Kind(s), true
	}
	return "", false
}

// ChartRequest is a structured chart specification.
type ChartRequest struct {
	Kind    Kind
	XColumn string
	YColumn string
	GroupBy string
	Title   string
}

// Artifact is an immutable rendered visualization. Option is the ECharts
// option object; HTML is a self-contained page whose only external reference
// is the declared ECharts script include. A new request always produces a new
// Artifact.
type Artifact struct {
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title,omitempty"`
	Option      json.RawMessage `json:"option"`
	HTML        string          `json:"html"`
	SourceCode  string          `json:"sourceCode,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}
