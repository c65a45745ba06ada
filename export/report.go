package export

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"datapilot/datastore"
)

// ReportData is everything the PDF report renders: the dataset shape, the
// per-column summaries, and the insight lines produced by the analysis
// layer.
type ReportData struct {
	Title     string
	RowCount  int
	Columns   []datastore.ColumnSummary
	Insights  []string
	ChartNote string
}

// PDFService renders analysis reports with maroto.
type PDFService struct{}

// NewPDFService creates a PDF report service.
func NewPDFService() *PDFService {
	return &PDFService{}
}

// Render produces the report as PDF bytes.
func (s *PDFService) Render(data ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithDefaultFont(&props.Font{
			Family: fontfamily.Arial,
			Size:   10,
		}).
		Build()

	m := maroto.New(cfg)

	title := data.Title
	if title == "" {
		title = "Data Analysis Report"
	}
	s.addHeader(m, title)
	s.addOverview(m, data)
	if len(data.Columns) > 0 {
		s.addColumnTable(m, data.Columns)
	}
	if len(data.Insights) > 0 {
		s.addInsights(m, data.Insights)
	}
	s.addFooter(m)

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}

func (s *PDFService) addHeader(m core.Maroto, title string) {
	m.AddRow(20,
		col.New(12).Add(
			text.New(title, props.Text{
				Family: fontfamily.Arial,
				Size:   18,
				Style:  fontstyle.Bold,
				Align:  align.Center,
				Color:  &props.Color{Red: 59, Green: 130, Blue: 246},
			}),
		),
	)

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("Generated: %s", timestamp), props.Text{
				Family: fontfamily.Arial,
				Size:   9,
				Align:  align.Center,
				Color:  &props.Color{Red: 100, Green: 116, Blue: 139},
			}),
		),
	)

	m.AddRow(5)
}

func (s *PDFService) addOverview(m core.Maroto, data ReportData) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Dataset Overview", props.Text{
				Family: fontfamily.Arial,
				Size:   12,
				Style:  fontstyle.Bold,
			}),
		),
	)
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("%d rows, %d columns", data.RowCount, len(data.Columns)), props.Text{
				Family: fontfamily.Arial,
				Size:   10,
			}),
		),
	)
	m.AddRow(5)
}

func (s *PDFService) addColumnTable(m core.Maroto, columns []datastore.ColumnSummary) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Column Statistics", props.Text{
				Family: fontfamily.Arial,
				Size:   12,
				Style:  fontstyle.Bold,
			}),
		),
	)

	headers := []string{"Column", "Type", "Nulls", "Distinct", "Mean", "Min", "Max"}
	widths := []int{3, 2, 1, 2, 2, 1, 1}
	headerCols := make([]core.Col, 0, len(headers))
	for i, h := range headers {
		headerCols = append(headerCols, col.New(widths[i]).Add(
			text.New(h, props.Text{
				Family: fontfamily.Arial,
				Size:   8,
				Style:  fontstyle.Bold,
				Align:  align.Center,
			}),
		))
	}
	m.AddRow(7, headerCols...)

	for _, c := range columns {
		mean, min, max := "-", "-", "-"
		if c.Numeric != nil {
			mean = fmt.Sprintf("%.4g", c.Numeric.Mean)
			min = fmt.Sprintf("%.4g", c.Numeric.Min)
			max = fmt.Sprintf("%.4g", c.Numeric.Max)
		}
		cells := []string{c.Name, string(c.Type), fmt.Sprintf("%d", c.Nulls), fmt.Sprintf("%d", c.Distinct), mean, min, max}
		dataCols := make([]core.Col, 0, len(cells))
		for i, cell := range cells {
			if len(cell) > 30 {
				cell = cell[:27] + "..."
			}
			dataCols = append(dataCols, col.New(widths[i]).Add(
				text.New(cell, props.Text{
					Family: fontfamily.Arial,
					Size:   7,
					Align:  align.Left,
				}),
			))
		}
		m.AddRow(6, dataCols...)
	}

	m.AddRow(5)
}

func (s *PDFService) addInsights(m core.Maroto, insights []string) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Insights", props.Text{
				Family: fontfamily.Arial,
				Size:   12,
				Style:  fontstyle.Bold,
			}),
		),
	)

	for i, insight := range insights {
		m.AddRow(8,
			col.New(12).Add(
				text.New(fmt.Sprintf("%d. %s", i+1, insight), props.Text{
					Family: fontfamily.Arial,
					Size:   9,
				}),
			),
		)
	}

	m.AddRow(5)
}

func (s *PDFService) addFooter(m core.Maroto) {
	m.AddRow(10,
		col.New(12).Add(
			text.New("Generated by DataPilot", props.Text{
				Family: fontfamily.Arial,
				Size:   8,
				Align:  align.Center,
				Color:  &props.Color{Red: 148, Green: 163, Blue: 184},
			}),
		),
	)
}
