package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"datapilot/datastore"
	"datapilot/viz"
)

// VisualizeDataTool renders a chart and hands the artifact to the
// orchestrator through the sink callback. The model only sees a short JSON
// confirmation; the artifact itself travels on the reply, not through the
// model context.
type VisualizeDataTool struct {
	store      *datastore.DataStore
	engine     *viz.Engine
	onArtifact func(*viz.Artifact)
	log        func(string)
}

// NewVisualizeDataTool creates the visualize_data tool. onArtifact must not
// be nil.
func NewVisualizeDataTool(store *datastore.DataStore, engine *viz.Engine, onArtifact func(*viz.Artifact), log func(string)) *VisualizeDataTool {
	if log == nil {
		log = func(string) {}
	}
	return &VisualizeDataTool{store: store, engine: engine, onArtifact: onArtifact, log: log}
}

func (t *VisualizeDataTool) Def() ToolDef {
	return ToolDef{
		Name: "visualize_data",
		Desc: `Render a chart from the loaded dataset. The chart is delivered to the user automatically; you only need to describe it.

Chart types:
- "bar" / "line": y_column (numeric) per x_column category; optional group_by pivots each distinct value into its own series. Duplicate (x, group) pairs are summed.
- "pie": y_column (numeric) summed per x_column category.
- "scatter": x_column and y_column must both be numeric; optional group_by colors points per group.
- "histogram": distribution of a numeric x_column (y_column ignored).
- "box": five-number summary of a numeric y_column per x_column category.
- "heatmap": with group_by, a matrix of summed y_column over x_column x group_by; without group_by, the correlation matrix of all numeric columns.`,
		Params: map[string]*ParamSpec{
			"chart_type": {
				Type:     schema.String,
				Desc:     "The kind of chart to render.",
				Required: true,
				Enum:     []string{"bar", "line", "pie", "scatter", "histogram", "box", "heatmap"},
			},
			"x_column": {
				Type: schema.String,
				Desc: "Column for the x axis (categories, or numeric for scatter/histogram).",
			},
			"y_column": {
				Type: schema.String,
				Desc: "Numeric column for the y axis / values.",
			},
			"group_by": {
				Type: schema.String,
				Desc: "Optional column whose distinct values become separate series.",
			},
			"title": {
				Type: schema.String,
				Desc: "Optional chart title.",
			},
		},
	}
}

func (t *VisualizeDataTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	kind, ok := viz.ParseKind(stringArg(args, "chart_type"))
	if !ok {
		return "", fmt.Errorf("unknown chart type %q", stringArg(args, "chart_type"))
	}

	req := viz.ChartRequest{
		Kind:    kind,
		XColumn: stringArg(args, "x_column"),
		YColumn: stringArg(args, "y_column"),
		GroupBy: stringArg(args, "group_by"),
		Title:   stringArg(args, "title"),
	}
	t.log(fmt.Sprintf("[VISUALIZE-DATA] %s x=%s y=%s group=%s", req.Kind, req.XColumn, req.YColumn, req.GroupBy))

	artifact, err := t.engine.Render(t.store, req)
	if err != nil {
		return "", err
	}
	t.onArtifact(artifact)

	payload, _ := json.Marshal(map[string]interface{}{
		"status":     "rendered",
		"chart_type": artifact.Kind,
		"title":      artifact.Title,
		"note":       "The chart has been attached to your reply; describe what it shows.",
	})
	return string(payload), nil
}
