package machine

import "unicode"

// Keymap maps keyboard runes to keypad keys. The left of a QWERTY
// keyboard stands in for the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r      4 5 6 D
//	a s d f  ->  7 8 9 E
//	z x c v      A 0 B F
var Keymap = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyFor returns the keypad key for r, ignoring case, and reports
// whether r is mapped at all.
func KeyFor(r rune) (byte, bool) {
	k, ok := Keymap[unicode.ToLower(r)]
	return k, ok
}
