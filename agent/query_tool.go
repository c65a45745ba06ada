package agent

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/schema"

	"datapilot/datastore"
)

// QueryDataTool runs read-only SQL against the session dataset. The dataset
// is exposed to the model as a single table named "dataset".
type QueryDataTool struct {
	store *datastore.DataStore
	log   func(string)
}

// NewQueryDataTool creates the query_data tool.
func NewQueryDataTool(store *datastore.DataStore, log func(string)) *QueryDataTool {
	if log == nil {
		log = func(string) {}
	}
	return &QueryDataTool{store: store, log: log}
}

func (t *QueryDataTool) Def() ToolDef {
	return ToolDef{
		Name: "query_data",
		Desc: `Execute a SQL SELECT query against the loaded dataset and return the rows as JSON.

The dataset is a single SQLite table named "dataset"; use the column names from the schema in the system prompt. Use this for filtering, grouping and aggregation (e.g. 'SELECT region, SUM(sales) AS total FROM dataset GROUP BY region ORDER BY total DESC'). Results are capped, so aggregate or LIMIT when the table is large.`,
		Params: map[string]*ParamSpec{
			"query": {
				Type:     schema.String,
				Desc:     "The SQL SELECT statement to execute against the \"dataset\" table.",
				Required: true,
			},
		},
	}
}

func (t *QueryDataTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	query := stringArg(args, "query")
	t.log("[QUERY-DATA] " + query)

	result, err := t.store.Query(query)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
