// Package bnt holds the 2-bit nucleotide encoding shared by the kmer
// and bank packages.
package bnt

// Base indices. A=00, C=01, T=10, G=11, matching the counting core's
// canonical-encoding convention.
const (
	A byte = 0
	C byte = 1
	T byte = 2
	G byte = 3
	// N marks a base outside {A,C,G,T} (ambiguous/unknown). It never
	// appears in a valid k-mer window.
	N byte = 4
)

// NumBitsInBase is the width of one base's 2-bit code.
const NumBitsInBase = 2

// NumBaseInUint64 is how many bases pack into one uint64 word.
const NumBaseInUint64 = 32

// BaseMask isolates the low 2 bits of a packed base.
const BaseMask = 0x3

// BntRev complements a 2-bit base code: A<->T, C<->G under the
// A=0,C=1,T=2,G=3 mapping, i.e. complement(code) = (code + 2) % 4.
var BntRev = [4]byte{T, G, A, C}

// ByteTab maps an ASCII base character to its 2-bit code, or N if the
// character is not one of A/C/G/T (case-insensitive).
var ByteTab = buildByteTab()

func buildByteTab() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = N
	}
	t['A'], t['a'] = A, A
	t['C'], t['c'] = C, C
	t['G'], t['g'] = G, G
	t['T'], t['t'] = T, T
	return t
}

// BaseTab maps a 2-bit code back to its ASCII character.
var BaseTab = [4]byte{'A', 'C', 'T', 'G'}
