package codepage

// prepareCodePage makes sure the lookup tables for a code page exist,
// building them on first reference. It reports whether the code page is
// usable.
func (c *Converter) prepareCodePage(codePage uint16) bool {
	c.loadConfigIfNeeded()

	if _, built := c.normalized[codePage]; built {
		return true
	}

	cfg, known := c.configMappings[codePage]
	if !known || !cfg.valid || !c.constructMapping(codePage) {
		// Unsupported code page or error
		return false
	}

	c.constructAliases(codePage)
	return true
}

// constructMapping builds the normalized, decomposed and reverse tables for
// a code page from its main-configuration recipe.
func (c *Converter) constructMapping(codePage uint16) bool {
	// Prevent processing if a previous attempt failed; this also
	// protects against circular EXTENDS CODEPAGE dependencies.
	if c.alreadyTried[codePage] {
		return false
	}
	c.alreadyTried[codePage] = true

	cfg := c.configMappings[codePage]
	newMapping := newGraphemeMap()
	newReverse := make(map[byte]Grapheme)

	addToMappings := func(code byte, grapheme Grapheme) {
		if code < decodeThresholdNonASCII {
			return
		}
		if !addIfNotMapped(newReverse, code, grapheme) {
			return
		}
		if grapheme.IsEmpty() || !grapheme.IsValid() {
			return
		}
		if newMapping.add(grapheme, code) {
			return
		}
		tracer().Infof("mapping for code page %d uses a code point twice; character 0x%02x",
			codePage, code)
	}

	// First apply the mapping found in the main configuration file.
	for _, code := range sortedByteKeys(cfg.mapping) {
		addToMappings(code, cfg.mapping[code])
	}

	// If the code page is an expansion of another code page, copy the
	// remaining entries.
	if cfg.extendsCodePage != 0 {
		dependency := c.deduplicateCodePage(cfg.extendsCodePage)
		if !c.prepareCodePage(dependency) {
			tracer().Errorf("code page %d mapping requires code page %d mapping",
				codePage, dependency)
			return false
		}
		for _, glyph := range c.normalized[dependency].sorted() {
			addToMappings(glyph.code, glyph.grapheme)
		}
	}

	// If the code page uses an external mapping file, load the remaining
	// entries from there.
	if cfg.extendsFile != "" {
		fileMapping, loaded := c.importMappingFile(cfg.extendsDir, cfg.extendsFile)
		if !loaded {
			return false
		}
		for _, code := range sortedByteKeys(fileMapping) {
			addToMappings(code, fileMapping[code])
		}
	}

	c.normalized[codePage] = newMapping
	c.reverse[codePage] = newReverse
	c.decomposed[codePage] = c.constructDecomposed(newMapping)
	return true
}

// constructDecomposed derives the decomposed-form lookup table from a
// normalized one. Only graphemes that actually change under decomposition
// are recorded.
func (c *Converter) constructDecomposed(normalized *graphemeMap) *graphemeMap {
	out := newGraphemeMap()
	for _, glyph := range normalized.sorted() {
		decomposed := glyph.grapheme.Decomposed(c.decompositionRules)
		if decomposed.Equal(glyph.grapheme) {
			continue
		}
		out.put(decomposed, glyph.code)
	}
	return out
}

// constructAliases derives the alias tables for a code page: for every
// configured alias whose target is mapped but whose source is not, the
// source borrows the target's code page byte. Aliases earlier in the
// configuration win.
func (c *Converter) constructAliases(codePage uint16) {
	mapping := c.normalized[codePage]
	aliases := newGraphemeMap()

	for _, alias := range c.configAliases {
		from := NewGrapheme(alias.from)
		if _, mapped := mapping.lookup(from); mapped {
			continue
		}
		code, mapped := mapping.lookup(NewGrapheme(alias.to))
		if !mapped {
			continue
		}
		aliases.add(from, code)
	}

	c.aliasesNormalized[codePage] = aliases
	c.aliasesDecomposed[codePage] = c.constructDecomposed(aliases)
}

// defaultCodePage prepares and returns the default code page, or 0 if it
// cannot be prepared - conversion then runs on the ASCII fallback alone.
func (c *Converter) defaultCodePage() uint16 {
	if !c.prepareCodePage(defaultCodePageNumber) {
		c.warnDefaultCodePage()
		return 0
	}
	return defaultCodePageNumber
}

// customCodePage resolves an explicitly requested code page: duplicates are
// redirected to their canonical definition, unknown code pages fall back to
// the default one.
func (c *Converter) customCodePage(codePage uint16) uint16 {
	if codePage == 0 {
		return 0
	}
	canonical := c.deduplicateCodePage(codePage)
	if !c.prepareCodePage(canonical) {
		c.warnCodePage(codePage)
		return c.defaultCodePage()
	}
	return canonical
}
