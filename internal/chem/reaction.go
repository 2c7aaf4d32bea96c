package chem

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRate        = errors.New("chem: rate constants must be positive")
	ErrInvalidCoefficient = errors.New("chem: stoichiometric coefficient must be positive")
)

// Component is a chemical taking part in a reaction with its coefficient.
type Component struct {
	Chemical    Chemical
	Coefficient int
}

func (c Component) String() string {
	if c.Coefficient == 1 {
		return c.Chemical.Name()
	}
	return fmt.Sprintf("%d %s", c.Coefficient, c.Chemical.Name())
}

// Reaction is a reversible mass-action reaction. The backward rate constant
// is derived once from kfwd / kequ.
type Reaction struct {
	reactants []Component
	products  []Component
	kfwd      float64
	kbwd      float64
	kequ      float64
}

func NewReaction(reactants, products []Component, kfwd, kequ float64) (*Reaction, error) {
	if !(kfwd > 0) || !(kequ > 0) {
		return nil, fmt.Errorf("%w: kfwd=%g kequ=%g", ErrInvalidRate, kfwd, kequ)
	}
	for _, c := range append(append([]Component{}, reactants...), products...) {
		if c.Coefficient <= 0 {
			return nil, fmt.Errorf("%w: %d %s", ErrInvalidCoefficient, c.Coefficient, c.Chemical.Name())
		}
	}

	r := &Reaction{
		reactants: make([]Component, len(reactants)),
		products:  make([]Component, len(products)),
		kfwd:      kfwd,
		kequ:      kequ,
		kbwd:      kfwd / kequ,
	}
	copy(r.reactants, reactants)
	copy(r.products, products)
	return r, nil
}

func (r *Reaction) Reactants() []Component {
	out := make([]Component, len(r.reactants))
	copy(out, r.reactants)
	return out
}

func (r *Reaction) Products() []Component {
	out := make([]Component, len(r.products))
	copy(out, r.products)
	return out
}

func (r *Reaction) Forward() float64     { return r.kfwd }
func (r *Reaction) Backward() float64    { return r.kbwd }
func (r *Reaction) Equilibrium() float64 { return r.kequ }

// ForwardRate is kfwd times the product of reactant concentrations raised to
// their coefficients. x is indexed by chemical handle.
func (r *Reaction) ForwardRate(x []float64) float64 {
	return r.kfwd * activity(r.reactants, x)
}

func (r *Reaction) BackwardRate(x []float64) float64 {
	return r.kbwd * activity(r.products, x)
}

// NetRate is the forward minus the backward rate.
func (r *Reaction) NetRate(x []float64) float64 {
	return r.ForwardRate(x) - r.BackwardRate(x)
}

// Quotient is the reaction quotient Q. It is zero when a product is absent,
// +Inf when a reactant is absent and NaN when both are.
func (r *Reaction) Quotient(x []float64) float64 {
	return activity(r.products, x) / activity(r.reactants, x)
}

func (r *Reaction) String() string {
	side := func(cs []Component) string {
		parts := make([]string, len(cs))
		for i, c := range cs {
			parts[i] = c.String()
		}
		return strings.Join(parts, " + ")
	}
	return side(r.reactants) + " -> " + side(r.products)
}

func activity(cs []Component, x []float64) float64 {
	a := 1.0
	for _, c := range cs {
		a *= ipow(x[c.Chemical.ID()], c.Coefficient)
	}
	return a
}

func ipow(base float64, n int) float64 {
	result := 1.0
	for n > 0 {
		if n&1 == 1 {
			result *= base
		}
		base *= base
		n >>= 1
	}
	return result
}
