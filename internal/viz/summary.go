package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/rxnsim/internal/config"
	"github.com/san-kum/rxnsim/internal/experiment"
	"github.com/san-kum/rxnsim/internal/sim"
	"github.com/san-kum/rxnsim/internal/storage"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Title.Padding(0, 1)
			}
			if col == 0 {
				return MetricLabel.Padding(0, 1)
			}
			return MetricValue.Padding(0, 1)
		})
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Summary renders the initial, final and peak amount of every sampled
// chemical followed by the run metrics.
func Summary(res *sim.Result) string {
	t := newTable("chemical", "initial", "final", "peak", "peak t")
	for _, s := range res.Series {
		if len(s.Values) == 0 {
			t.Row(s.Name, "-", "-", "-", "-")
			continue
		}
		peak, at := s.Values[0], 0
		for i, v := range s.Values {
			if v > peak {
				peak, at = v, i
			}
		}
		t.Row(s.Name, num(s.Values[0]), num(s.Values[len(s.Values)-1]), num(peak), num(res.Times[at]))
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", MetricLabel.Render("steps"), MetricValue.Render(strconv.Itoa(res.StepsTaken)))
	if len(res.Times) > 0 {
		fmt.Fprintf(&b, "%s %s\n", MetricLabel.Render("elapsed"), MetricValue.Render(num(res.Times[len(res.Times)-1])))
	}
	if len(res.Metrics) > 0 {
		b.WriteString(MetricsTable(res.Metrics))
		b.WriteString("\n")
	}
	return b.String()
}

// MetricsTable renders metrics sorted by name.
func MetricsTable(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("metric", "value")
	for _, name := range names {
		t.Row(name, num(m[name]))
	}
	return t.Render()
}

// RunTable lists stored runs.
func RunTable(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return Subtle.Render("no runs")
	}
	t := newTable("id", "source", "time", "dt", "duration", "steps")
	for _, r := range runs {
		t.Row(r.ID, r.Source, r.Timestamp.Format("2006-01-02 15:04:05"), num(r.Dt), num(r.Duration), strconv.Itoa(r.Steps))
	}
	return t.Render()
}

// SweepTable renders a step-size study with the final amounts of every
// chemical and the deviation from the finest run.
func SweepTable(results []experiment.SweepResult) string {
	if len(results) == 0 {
		return Subtle.Render("no results")
	}
	var names []string
	for _, s := range results[0].Result.Series {
		names = append(names, s.Name)
	}

	t := newTable(append(append([]string{"dt", "steps"}, names...), "deviation")...)
	for _, r := range results {
		row := []string{num(r.Dt), strconv.Itoa(r.Result.StepsTaken)}
		for _, name := range names {
			row = append(row, num(r.Final[name]))
		}
		row = append(row, num(r.Deviation))
		t.Row(row...)
	}
	return t.Render()
}

// PresetTable lists the built-in simulations.
func PresetTable(presets []*config.Preset) string {
	t := newTable("name", "dt", "duration", "description")
	for _, p := range presets {
		t.Row(p.Name, num(p.Dt), num(p.Duration), p.Description)
	}
	return t.Render()
}
