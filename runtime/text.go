package s2proto

import (
	"strconv"
	"unicode/utf8"
	"unsafe"
)

// isUTF8Valid validates UTF-8 for a byte slice.
var isUTF8Valid = utf8.Valid

// unsafeString returns a string sharing b's memory. b must not be modified
// while the string is in use.
func unsafeString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// IsPrintable reports whether b is valid UTF-8 made only of printable
// runes. Blobs holding names and chat text pass; digests and handles do not.
func IsPrintable(b []byte) bool {
	if !isUTF8Valid(b) {
		return false
	}
	for _, r := range unsafeString(b) {
		if !strconv.IsPrint(r) {
			return false
		}
	}
	return true
}
