package viz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rxnsim/internal/sim"
)

var ErrNothingToPlot = errors.New("viz: nothing to plot")

type PlotOptions struct {
	Width     int
	Height    int
	Caption   string
	Precision uint
	Theme     Theme
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Width:     80,
		Height:    15,
		Precision: 3,
		Theme:     ThemeLab,
	}
}

// Plot renders every series of res on one set of axes followed by a
// color legend.
func Plot(res *sim.Result, opts PlotOptions) (string, error) {
	if res == nil || len(res.Series) == 0 || len(res.Times) == 0 {
		return "", ErrNothingToPlot
	}

	data := make([][]float64, len(res.Series))
	names := make([]string, len(res.Series))
	for i, s := range res.Series {
		data[i] = s.Values
		names[i] = s.Name
	}

	caption := opts.Caption
	if caption == "" {
		caption = fmt.Sprintf("t = %g .. %g", res.Times[0], res.Times[len(res.Times)-1])
	}
	return PlotSeries(data, names, caption, opts), nil
}

// PlotSeries renders raw series. Series with fewer than two samples are
// padded so asciigraph can draw them.
func PlotSeries(data [][]float64, names []string, caption string, opts PlotOptions) string {
	if opts.Theme.Series == nil {
		opts.Theme = ThemeLab
	}

	lines := make([][]float64, len(data))
	colors := make([]asciigraph.AnsiColor, len(data))
	for i, d := range data {
		switch len(d) {
		case 0:
			d = []float64{0, 0}
		case 1:
			d = []float64{d[0], d[0]}
		}
		lines[i] = d
		colors[i] = opts.Theme.SeriesColor(i)
	}

	graph := asciigraph.PlotMany(lines,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Precision(opts.Precision),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
	return graph + "\n" + Legend(names, opts.Theme)
}

// Legend lists the series names in their plot colors.
func Legend(names []string, theme Theme) string {
	items := make([]string, len(names))
	for i, name := range names {
		color := theme.SeriesColor(i)
		items[i] = color.String() + "■" + asciigraph.Default.String() + " " + theme.value().Render(name)
	}
	return strings.Join(items, "   ")
}
