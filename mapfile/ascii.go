package mapfile

import "io"

// ASCIIEntry maps a code point to its last-resort 7-bit ASCII stand-in.
type ASCIIEntry struct {
	CodePoint uint16
	ASCII     byte
}

// ASCIIReader streams entries of the Unicode to 7-bit ASCII fallback table:
//
//	0x00A2 c	# CENT SIGN
//	0x00A0 SPC	# NO-BREAK SPACE
//	0x2260 NNN	# NOT EQUAL TO - no sane fallback, use '?'
type ASCIIReader struct {
	s *scanner
}

func NewASCIIReader(reader io.Reader) *ASCIIReader {
	return &ASCIIReader{s: newScanner(reader)}
}

// Line returns the line number of the most recently returned entry.
func (r *ASCIIReader) Line() int {
	return r.s.Line()
}

// Next returns the next fallback entry. It returns io.EOF when exhausted.
func (r *ASCIIReader) Next() (ASCIIEntry, error) {
	tokens, err := r.s.next()
	if err != nil {
		return ASCIIEntry{}, err
	}

	if len(tokens) != 2 {
		return ASCIIEntry{}, errorf(r.s.Line(), "expected a code point and a fallback character")
	}
	codePoint, ok := Hex16(tokens[0])
	if !ok {
		return ASCIIEntry{}, errorf(r.s.Line(), "malformed code point %q", tokens[0])
	}
	ascii, ok := ASCII(tokens[1])
	if !ok {
		return ASCIIEntry{}, errorf(r.s.Line(), "malformed fallback character %q", tokens[1])
	}
	return ASCIIEntry{CodePoint: codePoint, ASCII: ascii}, nil
}
