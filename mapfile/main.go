package mapfile

import "io"

// MainEntryKind discriminates the directives of the main configuration.
type MainEntryKind int

const (
	// EntryAlias is "ALIAS <from> <to> [BIDIRECTIONAL]".
	EntryAlias MainEntryKind = iota
	// EntryCodePage is "CODEPAGE <n>", opening a code page definition.
	EntryCodePage
	// EntryDuplicate is "CODEPAGE <n1> DUPLICATES <n2>".
	EntryDuplicate
	// EntryExtendsCodePage is "EXTENDS CODEPAGE <n>".
	EntryExtendsCodePage
	// EntryExtendsFile is "EXTENDS FILE <dir> <file>".
	EntryExtendsFile
	// EntryMapping is a "<byte> [<code point>...]" mapping line.
	EntryMapping
)

// MainEntry is one directive of the main configuration file. Only the
// fields relevant to Kind are set.
type MainEntry struct {
	Kind MainEntryKind

	// EntryAlias
	AliasFrom     uint16
	AliasTo       uint16
	Bidirectional bool

	// EntryCodePage, EntryDuplicate, EntryExtendsCodePage
	CodePage    uint16
	DuplicateOf uint16

	// EntryExtendsFile
	Dir  string
	File string

	// EntryMapping
	Mapping MappingEntry
}

// MainReader streams directives from the main configuration file, the
// stateful mini-language describing how to assemble every supported code
// page. The reader is purely lexical; tracking the current code page and
// rejecting redefinitions is the consumer's business.
type MainReader struct {
	s *scanner
}

func NewMainReader(reader io.Reader) *MainReader {
	return &MainReader{s: newScanner(reader)}
}

// Line returns the line number of the most recently returned entry.
func (r *MainReader) Line() int {
	return r.s.Line()
}

// Next returns the next directive. It returns io.EOF when exhausted.
func (r *MainReader) Next() (MainEntry, error) {
	tokens, err := r.s.next()
	if err != nil {
		return MainEntry{}, err
	}

	switch tokens[0] {
	case "ALIAS":
		return r.alias(tokens)
	case "CODEPAGE":
		return r.codePage(tokens)
	case "EXTENDS":
		return r.extends(tokens)
	}

	code, ok := Hex8(tokens[0])
	if !ok {
		return MainEntry{}, errorf(r.s.Line(), "unrecognized directive %q", tokens[0])
	}
	if len(tokens) > 4 {
		return MainEntry{}, errorf(r.s.Line(), "too many tokens in mapping entry")
	}
	codePoints, ok := hex16List(tokens[1:])
	if !ok {
		return MainEntry{}, errorf(r.s.Line(), "malformed code point in mapping entry")
	}
	return MainEntry{
		Kind:    EntryMapping,
		Mapping: MappingEntry{Code: code, CodePoints: codePoints},
	}, nil
}

func (r *MainReader) alias(tokens []string) (MainEntry, error) {
	if len(tokens) != 3 && len(tokens) != 4 {
		return MainEntry{}, errorf(r.s.Line(), "ALIAS needs two code points")
	}
	if len(tokens) == 4 && tokens[3] != "BIDIRECTIONAL" {
		return MainEntry{}, errorf(r.s.Line(), "unrecognized ALIAS modifier %q", tokens[3])
	}
	from, okFrom := Hex16(tokens[1])
	to, okTo := Hex16(tokens[2])
	if !okFrom || !okTo {
		return MainEntry{}, errorf(r.s.Line(), "malformed code point in ALIAS")
	}
	return MainEntry{
		Kind:          EntryAlias,
		AliasFrom:     from,
		AliasTo:       to,
		Bidirectional: len(tokens) == 4,
	}, nil
}

func (r *MainReader) codePage(tokens []string) (MainEntry, error) {
	if len(tokens) == 4 && tokens[2] == "DUPLICATES" {
		codePage, okPage := CodePage(tokens[1])
		duplicateOf, okDup := CodePage(tokens[3])
		if !okPage || !okDup {
			return MainEntry{}, errorf(r.s.Line(), "invalid code page number")
		}
		return MainEntry{
			Kind:        EntryDuplicate,
			CodePage:    codePage,
			DuplicateOf: duplicateOf,
		}, nil
	}

	if len(tokens) != 2 {
		return MainEntry{}, errorf(r.s.Line(), "invalid code page number")
	}
	codePage, ok := CodePage(tokens[1])
	if !ok {
		return MainEntry{}, errorf(r.s.Line(), "invalid code page number")
	}
	return MainEntry{Kind: EntryCodePage, CodePage: codePage}, nil
}

func (r *MainReader) extends(tokens []string) (MainEntry, error) {
	if len(tokens) == 3 && tokens[1] == "CODEPAGE" {
		codePage, ok := CodePage(tokens[2])
		if !ok {
			return MainEntry{}, errorf(r.s.Line(), "invalid code page number")
		}
		return MainEntry{Kind: EntryExtendsCodePage, CodePage: codePage}, nil
	}
	if len(tokens) == 4 && tokens[1] == "FILE" {
		return MainEntry{Kind: EntryExtendsFile, Dir: tokens[2], File: tokens[3]}, nil
	}
	return MainEntry{}, errorf(r.s.Line(), "malformed EXTENDS directive")
}
