package metrics

import (
	"github.com/san-kum/rxnsim/internal/chem"
	"github.com/san-kum/rxnsim/internal/sim"
)

// Peak tracks the highest concentration one chemical reaches.
type Peak struct {
	name     string
	chemical chem.Chemical
	max      float64
	at       float64
	samples  int
}

func NewPeak(c chem.Chemical) *Peak {
	return &Peak{
		name:     "peak_" + c.Name(),
		chemical: c,
	}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x sim.State, t float64) {
	id := int(p.chemical.ID())
	if id < 0 || id >= len(x) {
		return
	}
	if p.samples == 0 || x[id] > p.max {
		p.max = x[id]
		p.at = t
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.max }

// Time is when the peak was first reached.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() {
	p.max = 0
	p.at = 0
	p.samples = 0
}

// Standard returns the metrics recorded for every run: the equilibrium gap,
// the settling time at threshold and a peak per tracked chemical.
func Standard(s *sim.Simulation, tracked []chem.Chemical, threshold float64) []sim.Metric {
	ms := []sim.Metric{
		NewEquilibriumGap(s.Reactions()),
		NewSettlingTime(threshold),
	}
	for _, c := range tracked {
		ms = append(ms, NewPeak(c))
	}
	return ms
}
