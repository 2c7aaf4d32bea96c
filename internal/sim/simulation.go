package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/rxnsim/internal/chem"
)

type compiledReaction struct {
	rxn       *chem.Reaction
	reactants []chem.Component
	products  []chem.Component
}

// Simulation owns the concentrations of one reaction network and advances
// them with explicit Euler steps. It is not safe for concurrent use; drive
// independent instances (see Clone) from separate goroutines instead.
type Simulation struct {
	registry  *chem.Registry
	conc      State
	next      State
	delta     []float64
	reactions []compiledReaction
	schedule  *chem.Schedule
	elapsed   float64
}

// New creates a simulation over every chemical in reg, all at zero.
func New(reg *chem.Registry) *Simulation {
	n := reg.Len()
	return &Simulation{
		registry:  reg,
		conc:      make(State, n),
		next:      make(State, n),
		delta:     make([]float64, n),
		reactions: make([]compiledReaction, 0),
		schedule:  chem.NewSchedule(),
	}
}

func (s *Simulation) AddReaction(r *chem.Reaction) error {
	cr := compiledReaction{rxn: r, reactants: r.Reactants(), products: r.Products()}
	for _, c := range append(append([]chem.Component{}, cr.reactants...), cr.products...) {
		if !s.registry.Contains(c.Chemical) {
			return fmt.Errorf("%w: %s", ErrForeignChemical, c.Chemical.Name())
		}
	}
	s.reactions = append(s.reactions, cr)
	return nil
}

func (s *Simulation) ScheduleAddition(a chem.Addition) error {
	if !s.registry.Contains(a.Chemical) {
		return fmt.Errorf("%w: %s", ErrForeignChemical, a.Chemical.Name())
	}
	s.schedule.Add(a)
	return nil
}

// AddChemical adds amount (possibly negative) to the stored concentration,
// clamping at zero. Chemicals from another registry are ignored.
func (s *Simulation) AddChemical(c chem.Chemical, amount float64) {
	if !s.registry.Contains(c) {
		return
	}
	id := c.ID()
	s.conc[id] = clamp(s.conc[id] + amount)
}

// Concentration returns the stored concentration, or 0 for a chemical that
// is not part of this simulation.
func (s *Simulation) Concentration(c chem.Chemical) float64 {
	if !s.registry.Contains(c) {
		return 0
	}
	return s.conc[c.ID()]
}

func (s *Simulation) Chemicals() []chem.Chemical { return s.registry.Chemicals() }
func (s *Simulation) Registry() *chem.Registry   { return s.registry }
func (s *Simulation) Elapsed() float64           { return s.elapsed }
func (s *Simulation) Pending() []chem.Addition   { return s.schedule.Pending() }

func (s *Simulation) Reactions() []*chem.Reaction {
	out := make([]*chem.Reaction, len(s.reactions))
	for i, cr := range s.reactions {
		out[i] = cr.rxn
	}
	return out
}

// Snapshot returns a copy of the concentrations indexed by handle.
func (s *Simulation) Snapshot() State { return s.conc.Clone() }

// Step advances the simulation by dt.
//
// Every reaction reads the same pre-step concentrations and contributes to
// a zeroed delta buffer; due additions are folded into the same buffer
// after the clock advances. The clamped sum is written to the back buffer,
// which then becomes the current state.
func (s *Simulation) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidStep, dt)
	}

	for i := range s.delta {
		s.delta[i] = 0
	}

	x := s.conc
	for _, cr := range s.reactions {
		extent := dt * cr.rxn.NetRate(x)
		for _, c := range cr.reactants {
			s.delta[c.Chemical.ID()] -= extent * float64(c.Coefficient)
		}
		for _, c := range cr.products {
			s.delta[c.Chemical.ID()] += extent * float64(c.Coefficient)
		}
	}

	s.elapsed += dt

	for _, a := range s.schedule.Due(s.elapsed) {
		s.delta[a.Chemical.ID()] += a.Amount
	}

	for i, v := range x {
		s.next[i] = clamp(v + s.delta[i])
	}
	s.conc, s.next = s.next, s.conc
	return nil
}

// Clone returns an independent copy sharing only the immutable registry
// and reactions.
func (s *Simulation) Clone() *Simulation {
	c := &Simulation{
		registry:  s.registry,
		conc:      s.conc.Clone(),
		next:      make(State, len(s.next)),
		delta:     make([]float64, len(s.delta)),
		reactions: make([]compiledReaction, len(s.reactions)),
		schedule:  s.schedule.Clone(),
		elapsed:   s.elapsed,
	}
	copy(c.reactions, s.reactions)
	return c
}

// clamp maps negative values and NaN to zero.
func clamp(v float64) float64 {
	if !(v >= 0) {
		return 0
	}
	return v
}
