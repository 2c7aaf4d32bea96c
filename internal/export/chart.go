package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/rxnsim/internal/sim"
)

type Format int

const (
	PNG Format = iota
	SVG
)

// FormatFromPath picks SVG for a ".svg" extension and PNG otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return SVG
	}
	return PNG
}

type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 1024, Height: 512}
}

// RenderChart draws every series of the result against time.
func RenderChart(w io.Writer, result *sim.Result, format Format, opts ChartOptions) error {
	if len(result.Times) < 2 {
		return fmt.Errorf("export: chart needs at least two samples, got %d", len(result.Times))
	}
	if len(result.Series) == 0 {
		return fmt.Errorf("export: chart needs at least one series")
	}

	maxY := 0.0
	series := make([]chart.Series, 0, len(result.Series))
	for i, s := range result.Series {
		for _, v := range s.Values {
			if v > maxY {
				maxY = v
			}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: result.Times,
			YValues: s.Values,
			Style:   chart.Style{StrokeColor: chart.GetDefaultColor(i), StrokeWidth: 2.0},
		})
	}
	if maxY == 0 {
		maxY = 1
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "time",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: result.Times[0], Max: result.Times[len(result.Times)-1]},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.3g", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "concentration",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.05},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var provider chart.RendererProvider = chart.PNG
	if format == SVG {
		provider = chart.SVG
	}
	return graph.Render(provider, w)
}

// ExportChart renders to path, choosing the format from its extension.
func ExportChart(path string, result *sim.Result, opts ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderChart(f, result, FormatFromPath(path), opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
