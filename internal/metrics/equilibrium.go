package metrics

import (
	"math"

	"github.com/san-kum/rxnsim/internal/chem"
	"github.com/san-kum/rxnsim/internal/sim"
)

// EquilibriumGap is the largest |ln(Q/K)| over the reactions at the last
// observed state. Zero means every reaction sits at equilibrium. Reactions
// whose quotient is zero, infinite or undefined are skipped.
type EquilibriumGap struct {
	name      string
	reactions []*chem.Reaction
	gap       float64
}

func NewEquilibriumGap(reactions []*chem.Reaction) *EquilibriumGap {
	return &EquilibriumGap{
		name:      "equilibrium_gap",
		reactions: reactions,
	}
}

func (e *EquilibriumGap) Name() string { return e.name }

func (e *EquilibriumGap) Observe(x sim.State, t float64) {
	e.gap = 0
	for _, r := range e.reactions {
		q := r.Quotient(x)
		if !(q > 0) || math.IsInf(q, 0) {
			continue
		}
		e.gap = math.Max(e.gap, math.Abs(math.Log(q/r.Equilibrium())))
	}
}

func (e *EquilibriumGap) Value() float64 { return e.gap }

func (e *EquilibriumGap) Reset() { e.gap = 0 }
