package codepage

import "sort"

type mappedGlyph struct {
	grapheme Grapheme
	code     byte
}

// graphemeMap maps graphemes to code page bytes, keyed on the packed
// comparison form so that mark order does not matter.
type graphemeMap struct {
	entries map[string]mappedGlyph
}

func newGraphemeMap() *graphemeMap {
	return &graphemeMap{entries: make(map[string]mappedGlyph)}
}

// add inserts if the grapheme is not mapped yet and reports whether it did.
func (m *graphemeMap) add(g Grapheme, code byte) bool {
	key := g.key()
	if _, found := m.entries[key]; found {
		return false
	}
	m.entries[key] = mappedGlyph{grapheme: g, code: code}
	return true
}

// put inserts or overwrites.
func (m *graphemeMap) put(g Grapheme, code byte) {
	m.entries[g.key()] = mappedGlyph{grapheme: g, code: code}
}

// lookup is safe on a nil map.
func (m *graphemeMap) lookup(g Grapheme) (byte, bool) {
	if m == nil {
		return 0, false
	}
	glyph, found := m.entries[g.key()]
	return glyph.code, found
}

func (m *graphemeMap) len() int {
	return len(m.entries)
}

// sorted returns the entries ordered by grapheme, so that passes over the
// map stay deterministic.
func (m *graphemeMap) sorted() []mappedGlyph {
	out := make([]mappedGlyph, 0, len(m.entries))
	for _, glyph := range m.entries {
		out = append(out, glyph)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].grapheme.Compare(out[j].grapheme) < 0
	})
	return out
}
