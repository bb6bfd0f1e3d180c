package codepage

import (
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// defaultCodePageNumber is used when no explicit code page is requested:
// 437, United States.
const defaultCodePageNumber = 437

// Env wires a Converter to its host environment. The zero value is usable:
// resources are read from the "resources" directory of the process working
// directory, the loaded code page is the default one and the emulated video
// adapter is assumed to support reloadable character sets.
type Env struct {
	// Fs is the filesystem holding the resource files.
	Fs afero.Fs

	// ResourceDir is the root directory of the resource tree. The engine
	// reads its configuration from the "mapping" subdirectory; external
	// mapping files name their own subdirectory.
	ResourceDir string

	// LoadedCodePage reports the code page currently loaded by the
	// emulated DOS.
	LoadedCodePage func() uint16

	// CharsetCapable reports whether the emulated video adapter can
	// reload its character set. Below EGA the character set is fixed, so
	// only the default code page makes sense.
	CharsetCapable func() bool
}

type aliasPair struct {
	from uint16
	to   uint16
}

// configMapping is the main-configuration recipe for one code page.
type configMapping struct {
	valid           bool
	mapping         map[byte]Grapheme
	extendsCodePage uint16
	extendsDir      string
	extendsFile     string
}

// Converter owns the mapping tables for any number of DOS code pages and
// converts strings between UTF-8 and those code pages.
//
// Configuration is loaded on first use and per-code-page tables are built
// on first reference; after that nothing is ever mutated, so lookups are
// cheap. A Converter must not be used from multiple goroutines without
// external synchronization.
type Converter struct {
	env      Env
	loadOnce sync.Once

	// Global configuration tables, loaded once.
	configMappings     map[uint16]*configMapping
	configDuplicates   map[uint16]uint16
	configAliases      []aliasPair
	asciiFallback      map[uint16]byte
	decompositionRules map[uint16]Grapheme

	// Concrete Unicode -> code page mappings.
	normalized map[uint16]*graphemeMap
	decomposed map[uint16]*graphemeMap
	// Additional Unicode -> code page mappings, to avoid unknown characters.
	aliasesNormalized map[uint16]*graphemeMap
	aliasesDecomposed map[uint16]*graphemeMap
	// Reverse mappings, code page -> Unicode.
	reverse map[uint16]map[byte]Grapheme

	// Code pages whose construction was ever attempted. Doubles as the
	// circular-dependency breaker for EXTENDS CODEPAGE chains.
	alreadyTried map[uint16]bool

	warnedCodePoints map[uint16]bool
	warnedCodePages  map[uint16]bool
	warnedDefault    bool
}

// NewConverter returns a converter bound to the given environment. Zero
// fields of env are replaced with defaults.
func NewConverter(env Env) *Converter {
	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}
	if env.ResourceDir == "" {
		env.ResourceDir = "resources"
	}
	if env.LoadedCodePage == nil {
		env.LoadedCodePage = func() uint16 { return defaultCodePageNumber }
	}
	if env.CharsetCapable == nil {
		env.CharsetCapable = func() bool { return true }
	}
	return &Converter{
		env:                env,
		configMappings:     make(map[uint16]*configMapping),
		configDuplicates:   make(map[uint16]uint16),
		asciiFallback:      make(map[uint16]byte),
		decompositionRules: make(map[uint16]Grapheme),
		normalized:         make(map[uint16]*graphemeMap),
		decomposed:         make(map[uint16]*graphemeMap),
		aliasesNormalized:  make(map[uint16]*graphemeMap),
		aliasesDecomposed:  make(map[uint16]*graphemeMap),
		reverse:            make(map[uint16]map[byte]Grapheme),
		alreadyTried:       make(map[uint16]bool),
		warnedCodePoints:   make(map[uint16]bool),
		warnedCodePages:    make(map[uint16]bool),
	}
}

// CodePageInfo describes one code page known to the resource set.
type CodePageInfo struct {
	Number uint16
	// DuplicateOf is the canonical code page when Number is a registered
	// bit-identical duplicate, 0 when Number is defined directly.
	DuplicateOf uint16
}

// CodePages lists the code pages defined by the resource set, duplicates
// included, in ascending order.
func (c *Converter) CodePages() []CodePageInfo {
	c.loadConfigIfNeeded()

	out := make([]CodePageInfo, 0, len(c.configMappings)+len(c.configDuplicates))
	for number, cfg := range c.configMappings {
		if cfg.valid {
			out = append(out, CodePageInfo{Number: number})
		}
	}
	for number, canonical := range c.configDuplicates {
		out = append(out, CodePageInfo{Number: number, DuplicateOf: canonical})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (c *Converter) deduplicateCodePage(codePage uint16) uint16 {
	if canonical, found := c.configDuplicates[codePage]; found {
		return canonical
	}
	return codePage
}

func (c *Converter) warnCodePoint(codePoint uint16) {
	if c.warnedCodePoints[codePoint] {
		return
	}
	c.warnedCodePoints[codePoint] = true
	tracer().Infof("no fallback mapping for code point 0x%04x", codePoint)
}

func (c *Converter) warnCodePage(codePage uint16) {
	if c.warnedCodePages[codePage] {
		return
	}
	c.warnedCodePages[codePage] = true
	tracer().Infof("requested unknown code page %d", codePage)
}

func (c *Converter) warnDefaultCodePage() {
	if c.warnedDefault {
		return
	}
	c.warnedDefault = true
	tracer().Infof("unable to prepare default code page")
}
