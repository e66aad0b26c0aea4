// Package alphabet maps state codes to printable letters at the
// presentation edge. The encoder itself never consults this table; it
// emits raw codes, and writers pick the letters.
package alphabet

import (
	"fmt"
	"strings"
)

// Letters assigns one amino-acid-style letter per state, in centroid
// order, so downstream sequence tooling can treat state strings like
// protein sequences.
const Letters = "ACDEFGHIKLMNPQRSTVWY"

// InvalidLetter marks residues carrying the reserved invalid code.
const InvalidLetter byte = 'X'

// Size is the alphabet size K.
const Size = len(Letters)

// Letter returns the printable letter for a state code. Codes at or
// beyond the alphabet map to InvalidLetter.
func Letter(state byte) byte {
	if int(state) >= Size {
		return InvalidLetter
	}
	return Letters[state]
}

// String renders a state array as a letter string.
func String(states []byte) string {
	var b strings.Builder
	b.Grow(len(states))
	for _, s := range states {
		b.WriteByte(Letter(s))
	}
	return b.String()
}

// State inverts Letter for the canonical alphabet.
func State(letter byte) (byte, error) {
	if letter == InvalidLetter {
		return byte(Size), nil
	}
	idx := strings.IndexByte(Letters, letter)
	if idx < 0 {
		return 0, fmt.Errorf("letter %q is not in the state alphabet", letter)
	}
	return byte(idx), nil
}
