package codepage

// std is the converter behind the package-level functions. An emulator that
// needs its own environment replaces it through SetDefault before the first
// conversion.
var std = NewConverter(Env{})

// Default returns the converter used by the package-level functions.
func Default() *Converter {
	return std
}

// SetDefault replaces the converter used by the package-level functions.
func SetDefault(c *Converter) {
	std = c
}

// UTF8ToDOS converts a UTF-8 string to the active code page using the
// default converter.
func UTF8ToDOS(in string) ([]byte, bool) {
	return std.UTF8ToDOS(in)
}

// UTF8ToDOSCodePage converts a UTF-8 string to the given code page using
// the default converter.
func UTF8ToDOSCodePage(in string, codePage uint16) ([]byte, bool) {
	return std.UTF8ToDOSCodePage(in, codePage)
}

// DOSToUTF8 converts a code page byte string from the active code page to
// UTF-8 using the default converter.
func DOSToUTF8(in []byte) string {
	return std.DOSToUTF8(in)
}

// DOSToUTF8CodePage converts a code page byte string from the given code
// page to UTF-8 using the default converter.
func DOSToUTF8CodePage(in []byte, codePage uint16) string {
	return std.DOSToUTF8CodePage(in, codePage)
}

// ActiveCodePage reports the code page the package-level conversions would
// use.
func ActiveCodePage() uint16 {
	return std.ActiveCodePage()
}
