package viz

import (
	"encoding/json"
	"fmt"
	"html"
)

// echartsScript is the single declared external dependency of rendered pages.
const echartsScript = "https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"

// renderHTML wraps an option object into a standalone page. The page can be
// persisted or re-sent verbatim; only the ECharts script tag reaches out.
func renderHTML(title string, option json.RawMessage) string {
	if title == "" {
		title = "Chart"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<script src="%s"></script>
</head>
<body>
<div id="chart" style="width:900px;height:560px;"></div>
<script>
var chart = echarts.init(document.getElementById('chart'));
chart.setOption(%s);
</script>
</body>
</html>
`, html.EscapeString(title), echartsScript, option)
}

// renderSource returns the reproducible snippet a user can paste into any
// ECharts host page.
func renderSource(option json.RawMessage) string {
	return fmt.Sprintf("var chart = echarts.init(document.getElementById('chart'));\nchart.setOption(%s);", option)
}
