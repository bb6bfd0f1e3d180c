package codepage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/retroterm/codepage/mapfile"
	"github.com/spf13/afero"
)

const (
	fileNameMain          = "MAIN.TXT"
	fileNameASCII         = "ASCII.TXT"
	fileNameDecomposition = "DECOMPOSITION.TXT"
	dirNameMapping        = "mapping"
)

// loadConfigIfNeeded reads the top-level configuration, the decomposition
// rules and the fallback 7-bit ASCII mapping the first time the converter is
// asked to do anything.
func (c *Converter) loadConfigIfNeeded() {
	c.loadOnce.Do(func() {
		c.importDecomposition()
		c.importMappingASCII()
		c.importConfigMain()
	})
}

func (c *Converter) openResource(subdir, fileName string) (afero.File, bool) {
	path := filepath.Join(c.env.ResourceDir, subdir, fileName)
	file, err := c.env.Fs.Open(path)
	if err != nil {
		tracer().Errorf("could not open mapping file %s", fileName)
		return nil, false
	}
	return file, true
}

func logParseError(fileName string, err error) {
	var parseErr *mapfile.Error
	if errors.As(err, &parseErr) {
		tracer().Errorf("error parsing mapping file %s, line %d: %s",
			fileName, parseErr.Line, parseErr.Reason)
		return
	}
	tracer().Errorf("error reading mapping file %s: %v", fileName, err)
}

func errorParsing(fileName string, line int, details string) {
	tracer().Errorf("error parsing mapping file %s, line %d: %s", fileName, line, details)
}

func checkNotEmpty(fileName string, entries int) bool {
	if entries == 0 {
		tracer().Errorf("mapping file %s has no entries", fileName)
		return false
	}
	return true
}

// graphemeFromCodePoints builds a grapheme from a base code point and up to
// two combining marks, as read from a mapping entry.
func graphemeFromCodePoints(codePoints []uint16) Grapheme {
	g := NewGrapheme(codePoints[0])
	for _, mark := range codePoints[1:] {
		g.AddMark(mark)
	}
	return g
}

// importDecomposition loads the Unicode 'KD' decomposition rules; they will
// be used to handle non-normalized Unicode input. On any error the previous
// rule set stays in place.
func (c *Converter) importDecomposition() {
	file, opened := c.openResource(dirNameMapping, fileNameDecomposition)
	if !opened {
		return
	}
	defer file.Close()

	newRules := make(map[uint16]Grapheme)
	reader := mapfile.NewDecompositionReader(file)
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logParseError(fileNameDecomposition, err)
			return
		}
		for at, mark := range entry.Marks {
			if !isCombiningMark(mark) {
				errorParsing(fileNameDecomposition, reader.Line(),
					fmt.Sprintf("token #%d is not a supported combining mark", at+3))
				return
			}
		}
		rule := NewGrapheme(entry.Base)
		for _, mark := range entry.Marks {
			rule.AddMark(mark)
		}
		newRules[entry.Source] = rule
	}

	if !checkNotEmpty(fileNameDecomposition, len(newRules)) {
		return
	}
	c.decompositionRules = newRules
}

// importMappingASCII loads the Unicode to 7-bit ASCII fallback mapping; this
// mapping is only used if everything else fails.
func (c *Converter) importMappingASCII() {
	file, opened := c.openResource(dirNameMapping, fileNameASCII)
	if !opened {
		return
	}
	defer file.Close()

	newFallback := make(map[uint16]byte)
	reader := mapfile.NewASCIIReader(file)
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logParseError(fileNameASCII, err)
			return
		}
		newFallback[entry.CodePoint] = entry.ASCII
	}

	if !checkNotEmpty(fileNameASCII, len(newFallback)) {
		return
	}
	c.asciiFallback = newFallback
}

// importConfigMain loads the main configuration file, telling how to
// construct Unicode mappings for each and every supported code page.
func (c *Converter) importConfigMain() {
	file, opened := c.openResource(dirNameMapping, fileNameMain)
	if !opened {
		return
	}
	defer file.Close()

	newMappings := make(map[uint16]*configMapping)
	newDuplicates := make(map[uint16]uint16)
	var newAliases []aliasPair

	fileEmpty := true
	currentCodePage := uint16(0)

	// A code page number may be introduced once, either as a definition
	// or as a duplicate.
	checkNoCodePage := func(codePage uint16) bool {
		if _, defined := newMappings[codePage]; defined {
			return false
		}
		_, duplicate := newDuplicates[codePage]
		return !duplicate
	}

	reader := mapfile.NewMainReader(file)
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logParseError(fileNameMain, err)
			return
		}

		switch entry.Kind {
		case mapfile.EntryAlias:
			newAliases = append(newAliases, aliasPair{from: entry.AliasFrom, to: entry.AliasTo})
			if entry.Bidirectional {
				newAliases = append(newAliases, aliasPair{from: entry.AliasTo, to: entry.AliasFrom})
			}
			currentCodePage = 0

		case mapfile.EntryDuplicate:
			if !checkNoCodePage(entry.CodePage) {
				errorParsing(fileNameMain, reader.Line(), "code page already defined")
				return
			}
			newDuplicates[entry.CodePage] = entry.DuplicateOf
			currentCodePage = 0

		case mapfile.EntryCodePage:
			if !checkNoCodePage(entry.CodePage) {
				errorParsing(fileNameMain, reader.Line(), "code page already defined")
				return
			}
			newMappings[entry.CodePage] = &configMapping{
				valid:   true,
				mapping: make(map[byte]Grapheme),
			}
			currentCodePage = entry.CodePage

		case mapfile.EntryExtendsCodePage:
			if currentCodePage == 0 {
				errorParsing(fileNameMain, reader.Line(), "not currently defining a code page")
				return
			}
			newMappings[currentCodePage].extendsCodePage = entry.CodePage
			currentCodePage = 0

		case mapfile.EntryExtendsFile:
			if currentCodePage == 0 {
				errorParsing(fileNameMain, reader.Line(), "not currently defining a code page")
				return
			}
			newMappings[currentCodePage].extendsDir = entry.Dir
			newMappings[currentCodePage].extendsFile = entry.File
			fileEmpty = false
			currentCodePage = 0

		case mapfile.EntryMapping:
			if currentCodePage == 0 {
				errorParsing(fileNameMain, reader.Line(), "not currently defining a code page")
				return
			}
			mapping := entry.Mapping
			if mapping.Code < decodeThresholdNonASCII {
				continue // ignore 7-bit ASCII codes
			}
			grapheme := Grapheme{}
			if mapping.Defined() {
				grapheme = graphemeFromCodePoints(mapping.CodePoints)
				if !grapheme.IsValid() {
					errorParsing(fileNameMain, reader.Line(), "invalid grapheme")
					return
				}
			}
			addIfNotMapped(newMappings[currentCodePage].mapping, mapping.Code, grapheme)
			fileEmpty = false
		}
	}

	if fileEmpty {
		tracer().Errorf("mapping file %s has no entries", fileNameMain)
		return
	}

	c.configMappings = newMappings
	c.configDuplicates = newDuplicates
	c.configAliases = newAliases
}

// importMappingFile loads a code page character -> Unicode mapping from an
// external file referenced by an EXTENDS FILE directive.
func (c *Converter) importMappingFile(subdir, fileName string) (map[byte]Grapheme, bool) {
	file, opened := c.openResource(subdir, fileName)
	if !opened {
		return nil, false
	}
	defer file.Close()

	newMapping := make(map[byte]Grapheme)
	reader := mapfile.NewCodePageReader(file)
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logParseError(fileName, err)
			return nil, false
		}
		if entry.Code < decodeThresholdNonASCII {
			continue // ignore 7-bit ASCII codes
		}

		grapheme := Grapheme{}
		if entry.Defined() {
			grapheme = graphemeFromCodePoints(entry.CodePoints)
		}

		// An invalid grapheme that is not added (overridden) is OK
		// here; at least the CP 1258 definition from unicode.org maps
		// code page characters to bare combining marks, which is fine
		// for converting texts but a no-no for DOS emulation, where
		// the number of output characters has to match the number of
		// input characters. For such code page definitions the
		// problematic entries are overridden in the main
		// configuration file.
		if addIfNotMapped(newMapping, entry.Code, grapheme) && !grapheme.IsValid() {
			errorParsing(fileName, reader.Line(), "invalid grapheme")
			return nil, false
		}
	}

	if !checkNotEmpty(fileName, len(newMapping)) {
		return nil, false
	}
	return newMapping, true
}

// addIfNotMapped inserts if the code is not mapped yet and reports whether
// it did.
func addIfNotMapped(mapping map[byte]Grapheme, code byte, g Grapheme) bool {
	if _, found := mapping[code]; found {
		return false
	}
	mapping[code] = g
	return true
}

func sortedByteKeys(mapping map[byte]Grapheme) []byte {
	keys := make([]byte, 0, len(mapping))
	for code := range mapping {
		keys = append(keys, code)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
