package dsl

import "github.com/san-kum/rxnsim/internal/chem"

// TrackedChemicals scans a chemicals block for lines whose last token is
// '#' and returns the matching chemicals, in line order. Lines naming a
// chemical absent from chemicals are skipped. The block is not validated.
func TrackedChemicals(text string, chemicals []chem.Chemical) []chem.Chemical {
	byName := make(map[string]chem.Chemical, len(chemicals))
	for _, c := range chemicals {
		byName[c.Name()] = c
	}

	var out []chem.Chemical
	_ = eachLine(text, func(_ int, line string) error {
		toks := Lex(line)
		if len(toks) < 2 || toks[len(toks)-1].Type != Hash {
			return nil
		}
		if c, ok := byName[toks[0].Text]; ok {
			out = append(out, c)
		}
		return nil
	})
	return out
}
