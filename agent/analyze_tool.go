package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"datapilot/analysis"
	"datapilot/datastore"
)

// AnalyzeDataTool exposes the analysis engine: descriptive statistics,
// correlation matrices and time-series decomposition.
type AnalyzeDataTool struct {
	store  *datastore.DataStore
	engine *analysis.Engine
	log    func(string)
}

// NewAnalyzeDataTool creates the analyze_data tool.
func NewAnalyzeDataTool(store *datastore.DataStore, engine *analysis.Engine, log func(string)) *AnalyzeDataTool {
	if log == nil {
		log = func(string) {}
	}
	return &AnalyzeDataTool{store: store, engine: engine, log: log}
}

func (t *AnalyzeDataTool) Def() ToolDef {
	return ToolDef{
		Name: "analyze_data",
		Desc: `Run a statistical analysis over the loaded dataset.

Analyses:
- "describe": per-column summaries (count, distinct, nulls; min/max/mean/median/stddev for numeric columns; top value for others). Optionally restrict with "columns".
- "correlation": Pearson correlation matrix over numeric columns (optionally restricted with "columns"). Needs at least 2 numeric columns.
- "timeseries": bucket "value_column" over "time_column" at the given "frequency" (sum per bucket) and report the trend direction. Requires a datetime time column and a numeric value column.`,
		Params: map[string]*ParamSpec{
			"analysis": {
				Type:     schema.String,
				Desc:     "Which analysis to run.",
				Required: true,
				Enum:     []string{"describe", "correlation", "timeseries"},
			},
			"columns": {
				Type: schema.Array,
				Elem: schema.String,
				Desc: "Optional column names to restrict describe/correlation to.",
			},
			"time_column": {
				Type: schema.String,
				Desc: "Datetime column for timeseries analysis.",
			},
			"value_column": {
				Type: schema.String,
				Desc: "Numeric column for timeseries analysis.",
			},
			"frequency": {
				Type: schema.String,
				Desc: "Bucket size for timeseries analysis.",
				Enum: []string{"day", "week", "month", "quarter", "year"},
			},
		},
	}
}

func (t *AnalyzeDataTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	kind := stringArg(args, "analysis")
	t.log("[ANALYZE-DATA] " + kind)

	var out interface{}
	var err error
	switch kind {
	case "describe":
		out, err = t.engine.Describe(t.store, stringSliceArg(args, "columns")...)
	case "correlation":
		out, err = t.engine.Correlation(t.store, stringSliceArg(args, "columns")...)
	case "timeseries":
		timeCol := stringArg(args, "time_column")
		valueCol := stringArg(args, "value_column")
		if timeCol == "" || valueCol == "" {
			return "", fmt.Errorf("timeseries analysis needs time_column and value_column")
		}
		freqStr := stringArg(args, "frequency")
		if freqStr == "" {
			freqStr = string(analysis.FreqMonth)
		}
		var freq analysis.Frequency
		freq, err = analysis.ParseFrequency(freqStr)
		if err == nil {
			out, err = t.engine.TimeSeries(t.store, timeCol, valueCol, freq)
		}
	default:
		return "", fmt.Errorf("unknown analysis %q", kind)
	}
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
