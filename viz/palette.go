package viz

// palette is the fixed series color cycle. Series take colors in first-seen
// order, so rendering the same data twice yields identical colors.
var palette = []string{
	"#5470c6",
	"#91cc75",
	"#fac858",
	"#ee6666",
	"#73c0de",
	"#3ba272",
	"#fc8452",
	"#9a60b4",
	"#ea7ccc",
	"#2f4554",
}

func seriesColor(i int) string {
	return palette[i%len(palette)]
}
