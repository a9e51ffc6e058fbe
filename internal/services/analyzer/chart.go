package analyzer

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/fathom/internal/models"
)

// RenderTrendChart renders a PNG line chart of the annual revenue and net
// income history from a stored analysis. Returns raw PNG bytes.
func RenderTrendChart(analysis *models.StockAnalysis) ([]byte, error) {
	revenue := trendPoints(analysis, "revenue")
	netIncome := trendPoints(analysis, "net_income")
	if len(revenue) < 2 {
		return nil, fmt.Errorf("need at least 2 revenue periods, got %d", len(revenue))
	}

	revenueSeries := chart.TimeSeries{
		Name: "Revenue",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
	}
	for _, p := range revenue {
		revenueSeries.XValues = append(revenueSeries.XValues, p.Date)
		revenueSeries.YValues = append(revenueSeries.YValues, p.Value)
	}

	incomeSeries := chart.TimeSeries{
		Name: "Net Income",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("16a34a"), // green-600
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
	}
	for _, p := range netIncome {
		incomeSeries.XValues = append(incomeSeries.XValues, p.Date)
		incomeSeries.YValues = append(incomeSeries.YValues, p.Value)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Annual History", analysis.Symbol),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("2006")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.1fB", f/1e9)
				}
				return ""
			},
		},
		Series: []chart.Series{revenueSeries},
	}
	if len(incomeSeries.XValues) >= 2 {
		graph.Series = append(graph.Series, incomeSeries)
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func trendPoints(analysis *models.StockAnalysis, metric string) []models.TrendPoint {
	for _, t := range analysis.Trends {
		if t.Metric == metric {
			return t.Points
		}
	}
	return nil
}
