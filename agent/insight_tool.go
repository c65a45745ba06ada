package agent

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"datapilot/analysis"
	"datapilot/datastore"
)

// InsightTool produces a templated narrative over the dataset: shape, numeric
// spreads, the strongest correlation, and a time trend when the data carries
// a datetime column.
type InsightTool struct {
	store  *datastore.DataStore
	engine *analysis.Engine
	log    func(string)
}

// NewInsightTool creates the summarize_insights tool.
func NewInsightTool(store *datastore.DataStore, engine *analysis.Engine, log func(string)) *InsightTool {
	if log == nil {
		log = func(string) {}
	}
	return &InsightTool{store: store, engine: engine, log: log}
}

func (t *InsightTool) Def() ToolDef {
	return ToolDef{
		Name: "summarize_insights",
		Desc: `Generate a narrative summary of the loaded dataset: its shape, notable numeric column behavior, the strongest correlation between numeric columns, and the overall time trend when a datetime column exists. Use this when the user asks for key insights, highlights, or an overview rather than a specific number.`,
		Params: map[string]*ParamSpec{
			"focus": {
				Type: schema.String,
				Desc: "Optional substring to restrict the summary to matching column names.",
			},
		},
	}
}

func (t *InsightTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	focus := stringArg(args, "focus")
	t.log("[SUMMARIZE-INSIGHTS] focus=" + focus)
	return BuildInsights(t.store, t.engine, focus)
}
