package mapfile

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerCommentsAndBlanks(t *testing.T) {
	input := "# full comment line\n\n0x00A2 c # trailing comment\n   \n0x00A3 L\n"
	reader := NewASCIIReader(strings.NewReader(input))

	entry, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, ASCIIEntry{CodePoint: 0x00A2, ASCII: 'c'}, entry)
	assert.Equal(t, 3, reader.Line())

	entry, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, ASCIIEntry{CodePoint: 0x00A3, ASCII: 'L'}, entry)
	assert.Equal(t, 5, reader.Line())

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestScannerEndOfFileMarking(t *testing.T) {
	input := "0x00A2 c\n\x1a\n0x00A3 L\n"
	reader := NewASCIIReader(strings.NewReader(input))

	_, err := reader.Next()
	require.NoError(t, err)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)

	// The reader stays exhausted.
	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestScannerTabSeparated(t *testing.T) {
	reader := NewCodePageReader(strings.NewReader("0x85\t0x00E0\t\t# a grave\r\n"))
	entry, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, MappingEntry{Code: 0x85, CodePoints: []uint16{0x00E0}}, entry)
}

func TestHex8(t *testing.T) {
	value, ok := Hex8("0x85")
	assert.True(t, ok)
	assert.Equal(t, byte(0x85), value)

	value, ok = Hex8("0xaB")
	assert.True(t, ok)
	assert.Equal(t, byte(0xAB), value)

	for _, token := range []string{"", "0x", "0x8", "0x085", "85", "0X85", "0xG5"} {
		_, ok := Hex8(token)
		assert.False(t, ok, token)
	}
}

func TestHex16(t *testing.T) {
	value, ok := Hex16("0x00E9")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x00E9), value)

	for _, token := range []string{"0xE9", "0x000E9", "00E9", "0x00G9"} {
		_, ok := Hex16(token)
		assert.False(t, ok, token)
	}
}

func TestCodePage(t *testing.T) {
	value, ok := CodePage("437")
	assert.True(t, ok)
	assert.Equal(t, uint16(437), value)

	value, ok = CodePage("65535")
	assert.True(t, ok)
	assert.Equal(t, uint16(65535), value)

	for _, token := range []string{"", "0", "65536", "123456", "43x", "-1"} {
		_, ok := CodePage(token)
		assert.False(t, ok, token)
	}
}

func TestASCIILiterals(t *testing.T) {
	cases := map[string]byte{"c": 'c', "?": '?', "SPC": ' ', "HSH": '#', "NNN": 0x3F}
	for token, want := range cases {
		value, ok := ASCII(token)
		assert.True(t, ok, token)
		assert.Equal(t, want, value, token)
	}

	for _, token := range []string{"", "ab", "SPCX"} {
		_, ok := ASCII(token)
		assert.False(t, ok, token)
	}
}

func TestCodePageReaderUndefinedEntry(t *testing.T) {
	reader := NewCodePageReader(strings.NewReader("0xF0\n"))
	entry, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), entry.Code)
	assert.False(t, entry.Defined())
}

func TestCodePageReaderMarks(t *testing.T) {
	reader := NewCodePageReader(strings.NewReader("0x86 0x0041 0x030A 0x0301\n"))
	entry, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0041, 0x030A, 0x0301}, entry.CodePoints)
}

func TestCodePageReaderTooManyTokens(t *testing.T) {
	reader := NewCodePageReader(strings.NewReader("0x86 0x0041 0x030A 0x0301 0x0302\n"))
	_, err := reader.Next()
	var parseErr *Error
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
}

func TestCodePageReaderBadHex(t *testing.T) {
	for _, input := range []string{"0x8 0x0041\n", "0x86 0041\n", "CODEPAGE 437\n"} {
		reader := NewCodePageReader(strings.NewReader(input))
		_, err := reader.Next()
		var parseErr *Error
		assert.ErrorAs(t, err, &parseErr, input)
	}
}

func TestDecompositionReader(t *testing.T) {
	reader := NewDecompositionReader(strings.NewReader("0x00E9 0x0065 0x0301\n0x01D6 0x0075 0x0308 0x0304\n"))

	entry, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, DecompositionEntry{Source: 0x00E9, Base: 0x0065, Marks: []uint16{0x0301}}, entry)

	entry, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0308, 0x0304}, entry.Marks)
}

func TestDecompositionReaderNeedsMark(t *testing.T) {
	reader := NewDecompositionReader(strings.NewReader("0x00E9 0x0065\n"))
	_, err := reader.Next()
	var parseErr *Error
	require.ErrorAs(t, err, &parseErr)
}

func TestMainReaderDirectives(t *testing.T) {
	input := strings.Join([]string{
		"ALIAS 0x2019 0x0027",
		"ALIAS 0x00D8 0x00F8 BIDIRECTIONAL",
		"CODEPAGE 437",
		"0x82 0x00E9",
		"0xF0",
		"EXTENDS CODEPAGE 850",
		"CODEPAGE 858",
		"EXTENDS FILE ext CP858.TXT",
		"CODEPAGE 20437 DUPLICATES 437",
	}, "\n")
	reader := NewMainReader(strings.NewReader(input))

	wants := []MainEntry{
		{Kind: EntryAlias, AliasFrom: 0x2019, AliasTo: 0x0027},
		{Kind: EntryAlias, AliasFrom: 0x00D8, AliasTo: 0x00F8, Bidirectional: true},
		{Kind: EntryCodePage, CodePage: 437},
		{Kind: EntryMapping, Mapping: MappingEntry{Code: 0x82, CodePoints: []uint16{0x00E9}}},
		{Kind: EntryMapping, Mapping: MappingEntry{Code: 0xF0}},
		{Kind: EntryExtendsCodePage, CodePage: 850},
		{Kind: EntryCodePage, CodePage: 858},
		{Kind: EntryExtendsFile, Dir: "ext", File: "CP858.TXT"},
		{Kind: EntryDuplicate, CodePage: 20437, DuplicateOf: 437},
	}
	for _, want := range wants {
		entry, err := reader.Next()
		require.NoError(t, err)
		assert.Equal(t, want, entry)
	}
	_, err := reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestMainReaderErrors(t *testing.T) {
	inputs := []string{
		"ALIAS 0x2019",
		"ALIAS 0x2019 0x0027 SOMETIMES",
		"CODEPAGE",
		"CODEPAGE abc",
		"CODEPAGE 0",
		"CODEPAGE 437 DUPLICATES",
		"EXTENDS",
		"EXTENDS FILE ext",
		"GIBBERISH 0x82",
		"0x82 0x00E9 0x0301 0x0302 0x0303",
	}
	for _, input := range inputs {
		reader := NewMainReader(strings.NewReader(input + "\n"))
		_, err := reader.Next()
		var parseErr *Error
		assert.ErrorAs(t, err, &parseErr, input)
	}
}
