package utils

import "unicode/utf16"

// UTF16Len returns the length of s in UTF-16 code units, the unit reader
// clients use for paragraph offsets.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// UTF16Slice returns the part of s between the UTF-16 code unit offsets
// [start, end). Offsets are clamped to the string. A cut through a
// surrogate pair leaves a replacement character at that edge.
func UTF16Slice(s string, start, end int) string {
	units := utf16.Encode([]rune(s))
	if start < 0 {
		start = 0
	}
	if end > len(units) {
		end = len(units)
	}
	if start >= end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}
