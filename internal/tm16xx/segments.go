package tm16xx

import "unicode"

// Segment bits, LSB first: A B C D E F G DP.
const (
	SegA byte = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
	SegDP
)

var segmentMap = map[rune]byte{
	'0': 0x3f, '1': 0x06, '2': 0x5b, '3': 0x4f,
	'4': 0x66, '5': 0x6d, '6': 0x7d, '7': 0x07,
	'8': 0x7f, '9': 0x6f,
	'a': 0x77, 'b': 0x7c, 'c': 0x39, 'd': 0x5e,
	'e': 0x79, 'f': 0x71, 'g': 0x6f, 'h': 0x76,
	'i': 0x04, 'j': 0x1e, 'l': 0x38, 'n': 0x54,
	'o': 0x5c, 'p': 0x73, 'q': 0x67, 'r': 0x50,
	's': 0x6d, 't': 0x78, 'u': 0x3e, 'y': 0x6e,
	' ': 0x00,
	'-': 0x40,
	'_': 0x08,
	'°': 0x63,
}

// Segments returns the pattern for r. Unknown characters are blank.
func Segments(r rune) byte {
	return segmentMap[unicode.ToLower(r)]
}

// Encode converts s to exactly digits segment bytes. A '.' lights the
// decimal point of the preceding character instead of taking a digit.
// Short input is padded with blanks, long input truncated.
func Encode(s string, digits int) []byte {
	out := make([]byte, 0, digits)
	for _, r := range s {
		if r == '.' && len(out) > 0 {
			out[len(out)-1] |= SegDP
			continue
		}
		if len(out) == digits {
			break
		}
		if r == '.' {
			out = append(out, SegDP)
			continue
		}
		out = append(out, Segments(r))
	}
	for len(out) < digits {
		out = append(out, 0)
	}
	return out
}
