package dsl

import (
	"strconv"
	"strings"

	"github.com/san-kum/rxnsim/internal/chem"
)

// Format renders a model back into declaration blocks that parse to an
// equivalent model.
func Format(m *Model) Source {
	var chems, rxns, adds []string

	for _, c := range m.Registry.Chemicals() {
		fields := []string{c.Name()}
		if v := m.Initial[c.ID()]; v != 0 {
			fields = append(fields, formatNumber(v))
		}
		if m.Tracked[c.ID()] {
			fields = append(fields, "#")
		}
		chems = append(chems, strings.Join(fields, " "))
	}

	for _, r := range m.Reactions {
		rxns = append(rxns, FormatReaction(r))
	}

	for _, a := range m.Additions {
		adds = append(adds, FormatAddition(a))
	}

	return Source{
		Chemicals: strings.Join(chems, "\n"),
		Reactions: strings.Join(rxns, "\n"),
		Additions: strings.Join(adds, "\n"),
	}
}

// FormatReaction renders r as "A + 2 B -> C ; Kfwd = x ; Kequ = y".
func FormatReaction(r *chem.Reaction) string {
	fields := make([]string, 0, 16)
	fields = appendSide(fields, r.Reactants())
	fields = append(fields, "->")
	fields = appendSide(fields, r.Products())
	fields = append(fields,
		";", kwKfwd, "=", formatNumber(r.Forward()),
		";", kwKequ, "=", formatNumber(r.Equilibrium()))
	return strings.Join(fields, " ")
}

// FormatAddition renders a as "A amount t = time".
func FormatAddition(a chem.Addition) string {
	return a.Chemical.Name() + " " + formatNumber(a.Amount) + " " + kwTime + " = " + formatNumber(a.Time)
}

func appendSide(fields []string, cs []chem.Component) []string {
	for i, c := range cs {
		if i > 0 {
			fields = append(fields, "+")
		}
		if c.Coefficient != 1 {
			fields = append(fields, strconv.Itoa(c.Coefficient))
		}
		fields = append(fields, c.Chemical.Name())
	}
	return fields
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
