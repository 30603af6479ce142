package description

import "unicode/utf16"

// stringHash is the JVM String#hashCode of s, computed over UTF-16 code
// units with int32 overflow.
func stringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}
