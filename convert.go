package codepage

// screenCodes holds the Unicode code points for the CP437 screen codes 0x00
// to 0x1F: in the DOS video memory these bytes display pictograms rather
// than acting as control characters.
var screenCodes = [0x20]uint16{
	0x0020, 0x263A, 0x263B, 0x2665, // 00-03
	0x2666, 0x2663, 0x2660, 0x2022, // 04-07
	0x25D8, 0x25CB, 0x25D9, 0x2642, // 08-0b
	0x2640, 0x266A, 0x266B, 0x263C, // 0c-0f
	0x25BA, 0x25C4, 0x2195, 0x203C, // 10-13
	0x00B6, 0x00A7, 0x25AC, 0x21A8, // 14-17
	0x2191, 0x2193, 0x2192, 0x2190, // 18-1b
	0x221F, 0x2194, 0x25B2, 0x25BC, // 1c-1f
}

// codePoint7F is the house pictogram displayed for byte 0x7F.
const codePoint7F = 0x2302

// wideToDOS maps a code point sequence onto code page bytes, one byte per
// grapheme. It reports false if any grapheme could not be mapped exactly,
// that is, was replaced with '?' or with a 7-bit ASCII stand-in.
func (c *Converter) wideToDOS(in []uint16, codePage uint16) ([]byte, bool) {
	ok := true
	out := make([]byte, 0, len(in))

	var mappingNormalized, mappingDecomposed *graphemeMap
	var aliasesNormalized, aliasesDecomposed *graphemeMap

	if codePage != 0 {
		var found bool
		if mappingNormalized, found = c.normalized[codePage]; !found {
			c.warnCodePage(codePage)
		}
		mappingDecomposed = c.decomposed[codePage]
		aliasesNormalized = c.aliasesNormalized[codePage]
		aliasesDecomposed = c.aliasesDecomposed[codePage]
	}

	// Code points which are 7-bit ASCII characters pass through as-is.
	push7bit := func(g Grapheme) bool {
		if g.HasMark() || g.CodePoint() >= decodeThresholdNonASCII {
			return false
		}
		out = append(out, byte(g.CodePoint()))
		return true
	}

	// Code points belonging to the selected code page.
	pushCodePage := func(mapping *graphemeMap, g Grapheme) bool {
		code, found := mapping.lookup(g)
		if !found {
			return false
		}
		out = append(out, code)
		return true
	}

	// Code points which can only be mapped to 7-bit ASCII using the
	// fallback table. The stand-in is a different glyph, so the
	// conversion no longer counts as exact.
	pushFallback := func(g Grapheme) bool {
		if g.HasMark() {
			return false
		}
		code, found := c.asciiFallback[g.CodePoint()]
		if !found {
			return false
		}
		out = append(out, code)
		ok = false
		return true
	}

	pushUnknown := func(codePoint uint16) {
		out = append(out, replacementChar)
		c.warnCodePoint(codePoint)
		ok = false
	}

	pushNormalized := func(g Grapheme) bool {
		return push7bit(g) ||
			pushCodePage(mappingNormalized, g) ||
			pushCodePage(aliasesNormalized, g) ||
			pushFallback(g)
	}

	pushDecomposed := func(g Grapheme) bool {
		decomposed := g.Decomposed(c.decompositionRules)
		return pushCodePage(mappingDecomposed, decomposed) ||
			pushCodePage(aliasesDecomposed, decomposed)
	}

	for i := 0; i < len(in); i++ {
		grapheme := NewGrapheme(in[i])
		for i+1 < len(in) && isCombiningMark(in[i+1]) {
			i++
			grapheme.AddMark(in[i])
		}

		if pushNormalized(grapheme) || pushDecomposed(grapheme) {
			continue
		}

		// Last, desperate attempt: decompose and strip the marks.
		originalCodePoint := grapheme.CodePoint()
		grapheme = grapheme.Decomposed(c.decompositionRules)
		if grapheme.HasMark() {
			grapheme.StripMarks()
			if pushNormalized(grapheme) {
				continue
			}
		}

		// We are unable to match this grapheme at all.
		pushUnknown(originalCodePoint)
	}

	return out, ok
}

// dosToWide maps code page bytes onto code points. Control-range bytes
// become their screen-code pictograms, bytes above 0x7F go through the
// reverse table and unknown bytes become '?'.
func (c *Converter) dosToWide(in []byte, codePage uint16) []uint16 {
	out := make([]uint16, 0, len(in))

	reverse := c.reverse[codePage]

	for _, code := range in {
		switch {
		case code >= decodeThresholdNonASCII:
			grapheme, found := reverse[code]
			if !found {
				out = append(out, replacementChar)
				continue
			}
			out = grapheme.AppendTo(out)
		case code == 0x7F:
			out = append(out, codePoint7F)
		case code >= 0x20:
			out = append(out, uint16(code))
		default:
			out = append(out, screenCodes[code])
		}
	}

	return out
}

// ActiveCodePage reports the code page the no-argument conversions would
// use: the deduplicated code page loaded by the emulated DOS, the default
// one below EGA or when the loaded code page is unsupported, and 0 when not
// even the default code page can be prepared.
func (c *Converter) ActiveCodePage() uint16 {
	c.loadConfigIfNeeded()

	if !c.env.CharsetCapable() {
		// Below EGA it wasn't possible to change the character set.
		return c.defaultCodePage()
	}

	codePage := c.deduplicateCodePage(c.env.LoadedCodePage())
	if c.prepareCodePage(codePage) {
		return codePage
	}
	return c.defaultCodePage()
}

// UTF8ToDOS converts a UTF-8 string to the active code page. It reports
// false if any part of the input could not be converted exactly; the output
// is still usable, with '?' in place of what could not be mapped.
func (c *Converter) UTF8ToDOS(in string) ([]byte, bool) {
	c.loadConfigIfNeeded()

	wide, okDecode := utf8ToWide([]byte(in))
	out, okMap := c.wideToDOS(wide, c.ActiveCodePage())
	return out, okDecode && okMap
}

// UTF8ToDOSCodePage converts a UTF-8 string to the given code page. Code
// page 0 skips the per-code-page tables and uses the ASCII fallback chain
// alone.
func (c *Converter) UTF8ToDOSCodePage(in string, codePage uint16) ([]byte, bool) {
	c.loadConfigIfNeeded()

	wide, okDecode := utf8ToWide([]byte(in))
	out, okMap := c.wideToDOS(wide, c.customCodePage(codePage))
	return out, okDecode && okMap
}

// DOSToUTF8 converts a code page byte string from the active code page to
// UTF-8. Conversion in this direction never fails; unknown bytes become '?'.
func (c *Converter) DOSToUTF8(in []byte) string {
	c.loadConfigIfNeeded()
	return string(wideToUTF8(c.dosToWide(in, c.ActiveCodePage())))
}

// DOSToUTF8CodePage converts a code page byte string from the given code
// page to UTF-8.
func (c *Converter) DOSToUTF8CodePage(in []byte, codePage uint16) string {
	c.loadConfigIfNeeded()
	return string(wideToUTF8(c.dosToWide(in, c.customCodePage(codePage))))
}
