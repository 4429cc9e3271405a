// Package kmer implements the canonical k-mer extraction primitive:
// given an encoded read, produce the ordered sequence of canonical
// k-mers it contains.
package kmer

import (
	"fmt"

	"github.com/UmeshIITG/dsk/bnt"
)

// Kmer is a canonical k-mer packed into the low 2*k bits of a uint64.
// This fixes the maximum supported k at 32.
type Kmer uint64

// MaxK is the largest k a Kmer can represent.
const MaxK = 32

// Model extracts k-mers of a fixed length k from encoded reads. It is
// immutable after construction and safe to share across worker
// goroutines.
type Model struct {
	k      int
	mask   uint64
	toShow uint // shift to place a base at the reverse-complement's high end
}

// New builds a Model for k-mers of length k. k must be in [1, MaxK].
func New(k int) (Model, error) {
	if k < 1 || k > MaxK {
		return Model{}, fmt.Errorf("kmer: invalid k=%d, must be in [1,%d]", k, MaxK)
	}
	return Model{
		k:      k,
		mask:   maskFor(k),
		toShow: uint((k - 1) * bnt.NumBitsInBase),
	}, nil
}

func maskFor(k int) uint64 {
	if k == 32 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(k*bnt.NumBitsInBase)) - 1
}

// K returns the configured k-mer length.
func (m Model) K() int { return m.k }

// Extract returns, in read order, the canonical k-mer for every window
// of length k in seq that contains only valid bases (bnt.A/C/G/T).
// seq holds one 2-bit-coded base per byte, as produced by the bank
// package; a byte other than 0..3 (bnt.N or any other value) marks an
// invalid base and every window overlapping it is skipped.
//
// Complexity is O(len(seq)): both the forward and reverse-complement
// rolling values are maintained incrementally, one base at a time.
func (m Model) Extract(seq []byte) []Kmer {
	if len(seq) < m.k {
		return nil
	}
	out := make([]Kmer, 0, len(seq)-m.k+1)

	var fwd, rc uint64
	validRun := 0
	for _, b := range seq {
		if b >= bnt.N {
			validRun = 0
			continue
		}
		fwd = ((fwd << bnt.NumBitsInBase) | uint64(b)) & m.mask
		comp := uint64(bnt.BntRev[b])
		rc = (rc >> bnt.NumBitsInBase) | (comp << m.toShow)
		validRun++
		if validRun < m.k {
			continue
		}
		out = append(out, m.canonical(fwd, rc))
	}
	return out
}

func (m Model) canonical(fwd, rc uint64) Kmer {
	if fwd <= rc {
		return Kmer(fwd)
	}
	return Kmer(rc)
}

// Encode returns the 2-bit-coded representation of an ASCII base
// sequence, suitable as input to Extract. Bytes outside A/C/G/T are
// mapped to bnt.N.
func Encode(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, c := range seq {
		out[i] = bnt.ByteTab[c]
	}
	return out
}

// String renders a k-mer as its ASCII base sequence, for logging and
// test fixtures. Not used on any hot path.
func (m Model) String(k Kmer) string {
	buf := make([]byte, m.k)
	v := uint64(k)
	for i := m.k - 1; i >= 0; i-- {
		buf[i] = bnt.BaseTab[v&bnt.BaseMask]
		v >>= bnt.NumBitsInBase
	}
	return string(buf)
}
