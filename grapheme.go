package codepage

// replacementChar is emitted whenever there is no sane way to handle a glyph.
const replacementChar = 0x3F // '?'

// combiningRanges lists the BMP blocks treated as combining marks.
//
// Arabic combining marks start at 0x064B, but some of them appear as
// standalone characters in Arabic code pages. To allow this, the predicate
// only covers 0x0653 and above.
var combiningRanges = [...][2]uint16{
	{0x0300, 0x036F}, // Combining Diacritical Marks
	{0x0653, 0x065F}, // Arabic Combining Marks
	{0x1AB0, 0x1AFF}, // Combining Diacritical Marks Extended
	{0x1DC0, 0x1DFF}, // Combining Diacritical Marks Supplement
	{0x20D0, 0x20FF}, // Combining Diacritical Marks for Symbols
	{0xFE20, 0xFE2F}, // Combining Half Marks
}

func isCombiningMark(codePoint uint16) bool {
	for _, r := range combiningRanges {
		if codePoint >= r[0] && codePoint <= r[1] {
			return true
		}
	}
	return false
}

// Grapheme is one visible character cluster: a base code point plus zero or
// more combining marks. Marks keep their insertion order for output; a
// sorted view of the same marks is used for comparison, so the same cluster
// written with marks in a different order compares equal.
//
// The zero value is the empty grapheme, which is valid and has no marks.
type Grapheme struct {
	codePoint   uint16
	marks       []uint16
	marksSorted []uint16

	notEmpty bool
	invalid  bool
}

// NewGrapheme returns a grapheme for the given base code point. A combining
// mark is not a legal base, so the result is invalid for mark code points.
func NewGrapheme(codePoint uint16) Grapheme {
	g := Grapheme{codePoint: codePoint, notEmpty: true}
	if isCombiningMark(codePoint) {
		g.Invalidate()
	}
	return g
}

func (g Grapheme) IsEmpty() bool {
	return !g.notEmpty
}

func (g Grapheme) IsValid() bool {
	return !g.invalid
}

func (g Grapheme) HasMark() bool {
	return len(g.marks) > 0
}

// CodePoint returns the base code point. The empty grapheme reports a space.
func (g Grapheme) CodePoint() uint16 {
	if !g.notEmpty {
		return ' '
	}
	return g.codePoint
}

// AppendTo appends the base code point and the marks, in insertion order, to
// dst. Empty and invalid graphemes contribute nothing.
func (g Grapheme) AppendTo(dst []uint16) []uint16 {
	if !g.notEmpty || g.invalid {
		return dst
	}
	dst = append(dst, g.codePoint)
	return append(dst, g.marks...)
}

// Invalidate turns the grapheme into the replacement character and drops all
// marks.
func (g *Grapheme) Invalidate() {
	g.notEmpty = true
	g.invalid = true
	g.codePoint = replacementChar
	g.marks = nil
	g.marksSorted = nil
}

// AddMark attaches a combining mark. Adding anything to an invalid grapheme
// is ignored; adding a non-mark code point, or any mark to the empty
// grapheme, invalidates it. A mark already present is silently dropped.
func (g *Grapheme) AddMark(codePoint uint16) {
	if g.invalid {
		return
	}
	if !isCombiningMark(codePoint) || !g.notEmpty {
		g.Invalidate()
		return
	}
	for _, mark := range g.marks {
		if mark == codePoint {
			return
		}
	}
	g.marks = append(g.marks, codePoint)

	at := len(g.marksSorted)
	for i, mark := range g.marksSorted {
		if codePoint < mark {
			at = i
			break
		}
	}
	g.marksSorted = append(g.marksSorted, 0)
	copy(g.marksSorted[at+1:], g.marksSorted[at:])
	g.marksSorted[at] = codePoint
}

// StripMarks removes all combining marks, leaving the base code point.
func (g *Grapheme) StripMarks() {
	g.marks = nil
	g.marksSorted = nil
}

// Decomposed applies the decomposition rules to a copy of the grapheme, as
// long as a rule exists for the current base. The input grapheme is left
// untouched, so callers can keep matching against the original form.
// Termination relies on the rule table being acyclic.
func (g Grapheme) Decomposed(rules map[uint16]Grapheme) Grapheme {
	if g.invalid || !g.notEmpty {
		return g
	}

	out := g
	out.marks = append([]uint16(nil), g.marks...)
	out.marksSorted = append([]uint16(nil), g.marksSorted...)

	for {
		rule, found := rules[out.codePoint]
		if !found {
			break
		}
		out.codePoint = rule.codePoint
		for _, mark := range rule.marks {
			out.AddMark(mark)
		}
	}
	return out
}

// Equal reports componentwise equality using the sorted mark view.
func (g Grapheme) Equal(other Grapheme) bool {
	if g.notEmpty != other.notEmpty || g.invalid != other.invalid ||
		g.codePoint != other.codePoint {
		return false
	}
	if len(g.marksSorted) != len(other.marksSorted) {
		return false
	}
	for i, mark := range g.marksSorted {
		if mark != other.marksSorted[i] {
			return false
		}
	}
	return true
}

// Compare orders graphemes by base code point, then number of marks, then
// the sorted marks themselves. Emptiness and validity are not compared: an
// invalid grapheme ranks like a plain '?' and the empty grapheme like base 0.
func (g Grapheme) Compare(other Grapheme) int {
	if g.codePoint != other.codePoint {
		if g.codePoint < other.codePoint {
			return -1
		}
		return 1
	}
	if len(g.marksSorted) != len(other.marksSorted) {
		if len(g.marksSorted) < len(other.marksSorted) {
			return -1
		}
		return 1
	}
	for i, mark := range g.marksSorted {
		if mark != other.marksSorted[i] {
			if mark < other.marksSorted[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// key packs the comparison-relevant fields into a string usable as a map
// key: one flag byte, the base code point, then the sorted marks.
func (g Grapheme) key() string {
	var flags byte
	if g.notEmpty {
		flags |= 1
	}
	if g.invalid {
		flags |= 2
	}
	buf := make([]byte, 0, 3+2*len(g.marksSorted))
	buf = append(buf, flags, byte(g.codePoint>>8), byte(g.codePoint))
	for _, mark := range g.marksSorted {
		buf = append(buf, byte(mark>>8), byte(mark))
	}
	return string(buf)
}
