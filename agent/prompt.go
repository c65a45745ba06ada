package agent

import (
	"fmt"
	"strings"

	"datapilot/datastore"
)

// buildSystemPrompt describes the current dataset schema to the model along
// with the working guidelines. Rebuilt per decision so a re-ingest is
// reflected immediately.
func buildSystemPrompt(ds *datastore.DataStore) string {
	var b strings.Builder
	b.WriteString("You are a data analysis assistant. Help the user explore their dataset using the available tools.\n\n")

	if ds.Loaded() {
		fmt.Fprintf(&b, "Loaded dataset: %d rows, table name \"dataset\". Columns:\n", ds.RowCount())
		for _, col := range ds.Columns() {
			fmt.Fprintf(&b, "- %s (%s", col.Name, col.Type)
			if col.Nulls > 0 {
				fmt.Fprintf(&b, ", %d nulls", col.Nulls)
			}
			b.WriteString(")\n")
		}
	} else {
		b.WriteString("No dataset is loaded yet. Ask the user to upload data before attempting analysis.\n")
	}

	b.WriteString(`
Guidelines:
1. Use query_data for filtering and aggregation; format result tables as Markdown tables.
2. Use analyze_data for statistics, correlations and time series rather than computing them yourself.
3. Use visualize_data when the user asks for a chart; the chart is attached to your reply automatically.
4. If a tool returns an error payload, correct the arguments and try again.
5. Keep final answers concise and grounded in the tool results.`)
	return b.String()
}
