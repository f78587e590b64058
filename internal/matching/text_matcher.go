// Package matching decides when two pieces of catalogue text name the same thing.
package matching

// SameText reports whether a and b are equal ignoring ASCII case.
//
// Comparison is byte by byte and position-wise: whitespace is not collapsed or trimmed, so
// "Chess  Basics" (two spaces) does not match "Chess Basics". Non-ASCII bytes must match
// exactly.
func SameText(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
