/*
Package codepage converts text between UTF-8 and single-byte DOS code pages.

The package is meant for the boundary between a host system speaking UTF-8
and an emulated DOS program speaking a code page such as 437 or 852.
Conversion works on graphemes: a base code point plus its combining marks is
treated as one visible cluster and always maps to exactly one DOS byte, so
the emulated program sees one output character per input character.

Per-code-page tables are not hard-coded. They are assembled lazily from a
set of line-oriented resource files (a main configuration plus Unicode
Consortium-style mapping files), which lets code pages inherit from each
other, share storage when bit-identical, and borrow visually similar glyphs
through aliases. Parsing of the resource formats lives in package mapfile;
this package consumes the parsed entries and owns the lookup tables.

Example usage:

	conv := codepage.NewConverter(codepage.Env{ResourceDir: "resources"})
	dos, ok := conv.UTF8ToDOSCodePage("déjà vu", 437)

Lookups fall back in stages when an exact mapping is absent: glyph aliases,
a 7-bit ASCII table for characters without marks, the decomposed form
(directly and through aliases), and finally mark stripping, which retries
the exact, alias and ASCII lookups on the bare base character. Only when all of these fail
is the replacement character '?' emitted.

The engine is BMP-only and single-threaded; wrap calls in external
synchronization if a converter is shared across goroutines.
*/
package codepage

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'codepage'
func tracer() tracing.Trace {
	return tracing.Select("codepage")
}
