// Package dsl reads and writes the line-oriented simulation language: a
// chemicals block, a reactions block and an additions block.
package dsl

import (
	"errors"
	"math"
	"strings"

	"github.com/san-kum/rxnsim/internal/chem"
	"github.com/san-kum/rxnsim/internal/sim"
)

// Model is a parsed simulation description. Initial and Tracked are
// indexed by chemical handle.
type Model struct {
	Registry  *chem.Registry
	Initial   []float64
	Tracked   []bool
	Reactions []*chem.Reaction
	Additions []chem.Addition
}

// Parse reads the three declaration blocks. It stops at the first invalid
// declaration and returns it as a *ParseError.
func Parse(chemicals, reactions, additions string) (*Model, error) {
	m := &Model{Registry: chem.NewRegistry()}
	if err := m.parseChemicals(chemicals); err != nil {
		return nil, err
	}
	if err := m.parseReactions(reactions); err != nil {
		return nil, err
	}
	if err := m.parseAdditions(additions); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseSource parses the blocks of a simulation file.
func ParseSource(src Source) (*Model, error) {
	return Parse(src.Chemicals, src.Reactions, src.Additions)
}

// ParseSimulation parses the blocks and builds a ready-to-run simulation.
func ParseSimulation(chemicals, reactions, additions string) (*sim.Simulation, error) {
	m, err := Parse(chemicals, reactions, additions)
	if err != nil {
		return nil, err
	}
	return m.Simulation()
}

// Simulation builds a fresh simulation at time zero holding the initial
// amounts, reactions and pending additions of the model.
func (m *Model) Simulation() (*sim.Simulation, error) {
	s := sim.New(m.Registry)
	for _, c := range m.Registry.Chemicals() {
		s.AddChemical(c, m.Initial[c.ID()])
	}
	for _, r := range m.Reactions {
		if err := s.AddReaction(r); err != nil {
			return nil, err
		}
	}
	for _, a := range m.Additions {
		if err := s.ScheduleAddition(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// TrackedChemicals returns the chemicals marked with '#' in declaration
// order.
func (m *Model) TrackedChemicals() []chem.Chemical {
	var out []chem.Chemical
	for _, c := range m.Registry.Chemicals() {
		if m.Tracked[c.ID()] {
			out = append(out, c)
		}
	}
	return out
}

// eachLine calls fn for every non-blank line with its 1-based index among
// the non-blank lines.
func eachLine(text string, fn func(index int, line string) error) error {
	index := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		index++
		if err := fn(index, line); err != nil {
			return err
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// name [amount] [#]
func (m *Model) parseChemicals(text string) error {
	return eachLine(text, func(i int, line string) error {
		c := newCursor(Lex(line))

		name, _ := c.next()
		switch name.Type {
		case Ident:
		case Number:
			return parseErr(Chemicals, i, ErrNumericName, "cannot have a numeric name")
		default:
			return parseErr(Chemicals, i, ErrUnexpectedToken, "has no valid name")
		}

		amount := 0.0
		if tok, ok := c.accept(Number); ok {
			if tok.Value < 0 {
				return parseErr(Chemicals, i, ErrNegativeValue, "cannot have a negative initial amount")
			}
			if !finite(tok.Value) {
				return parseErr(Chemicals, i, ErrUnexpectedToken, "has invalid initial amount %s", tok.Text)
			}
			amount = tok.Value
		}

		_, tracked := c.accept(Hash)

		if tok, ok := c.next(); ok {
			return parseErr(Chemicals, i, ErrUnexpectedToken, "has unexpected token %s", tok.Text)
		}

		_, err := m.Registry.Register(name.Text)
		if errors.Is(err, chem.ErrDuplicateChemical) {
			return parseErr(Chemicals, i, ErrDuplicateName, "has a name identical to another chemical")
		}
		if err != nil {
			return parseErr(Chemicals, i, ErrUnexpectedToken, "has no valid name")
		}

		// handles are assigned densely in registration order
		m.Initial = append(m.Initial, amount)
		m.Tracked = append(m.Tracked, tracked)
		return nil
	})
}

// [n] A + [n] B -> [n] C + ... ; Kfwd [=] x ; Kequ [=] y
func (m *Model) parseReactions(text string) error {
	return eachLine(text, func(i int, line string) error {
		c := newCursor(Lex(line, kwKfwd, kwKequ))

		var reactants, products []chem.Component
		side := &reactants
		arrows := 0
		kfwd, kequ := -1.0, -1.0

		component := func(tok Token, coef int) error {
			chemical, ok := m.Registry.Lookup(tok.Text)
			if !ok {
				return parseErr(Reactions, i, ErrUnknownChemical, "has unknown chemical %s", tok.Text)
			}
			*side = append(*side, chem.Component{Chemical: chemical, Coefficient: coef})
			return nil
		}

		for tok, ok := c.next(); ok; tok, ok = c.next() {
			switch tok.Type {
			case Plus, Semicolon:
			case Arrow:
				arrows++
				if arrows > 1 {
					return parseErr(Reactions, i, ErrUnexpectedToken, "has more than one arrow")
				}
				side = &products
			case Keyword:
				c.accept(Equals)
				v, ok := c.accept(Number)
				if !ok || !(v.Value > 0) || !finite(v.Value) {
					return parseErr(Reactions, i, ErrInvalidRate, "has no valid Kfwd and/or Kequ")
				}
				if tok.Text == kwKfwd {
					kfwd = v.Value
				} else {
					kequ = v.Value
				}
			case Number:
				if !tok.Integer {
					return parseErr(Reactions, i, ErrUnexpectedToken, "has unexpected token %s", tok.Text)
				}
				name, ok := c.accept(Ident)
				if !ok || tok.Int <= 0 {
					return parseErr(Reactions, i, ErrUnexpectedToken, "has invalid coefficient %s", tok.Text)
				}
				if err := component(name, tok.Int); err != nil {
					return err
				}
			case Ident:
				if err := component(tok, 1); err != nil {
					return err
				}
			default:
				return parseErr(Reactions, i, ErrUnexpectedToken, "has unexpected token %s", tok.Text)
			}
		}

		if arrows == 0 {
			return parseErr(Reactions, i, ErrMissingField, "has no arrow")
		}
		if !(kfwd > 0) || !(kequ > 0) {
			return parseErr(Reactions, i, ErrInvalidRate, "has no valid Kfwd and/or Kequ")
		}

		r, err := chem.NewReaction(reactants, products, kfwd, kequ)
		if err != nil {
			return parseErr(Reactions, i, ErrInvalidRate, "has no valid Kfwd and/or Kequ")
		}
		m.Reactions = append(m.Reactions, r)
		return nil
	})
}

// name amount [t [=] time]
func (m *Model) parseAdditions(text string) error {
	return eachLine(text, func(i int, line string) error {
		c := newCursor(Lex(line, kwTime))

		var a chem.Addition
		found := false

		for tok, ok := c.next(); ok; tok, ok = c.next() {
			switch tok.Type {
			case Keyword:
				c.accept(Equals)
				v, ok := c.accept(Number)
				if !ok || math.IsNaN(v.Value) {
					return parseErr(Additions, i, ErrMissingField, "has no time value")
				}
				if v.Value < 0 {
					return parseErr(Additions, i, ErrNegativeValue, "cannot have a negative time")
				}
				if !finite(v.Value) {
					return parseErr(Additions, i, ErrUnexpectedToken, "has invalid time %s", v.Text)
				}
				a.Time = v.Value
			case Ident:
				chemical, ok := m.Registry.Lookup(tok.Text)
				if !ok {
					return parseErr(Additions, i, ErrUnknownChemical, "has unknown chemical %s", tok.Text)
				}
				v, ok := c.accept(Number)
				if !ok || !finite(v.Value) {
					return parseErr(Additions, i, ErrMissingField, "has no valid addition amount")
				}
				a.Chemical = chemical
				a.Amount = v.Value
				found = true
			default:
				return parseErr(Additions, i, ErrUnexpectedToken, "has unexpected token %s", tok.Text)
			}
		}

		if !found {
			return parseErr(Additions, i, ErrMissingField, "has no valid chemical")
		}
		m.Additions = append(m.Additions, a)
		return nil
	})
}
