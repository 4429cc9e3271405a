package partition

import (
	"sort"

	"github.com/UmeshIITG/dsk/kmer"
)

// kmerSlice adapts []kmer.Kmer to sort.Interface: a named sortable
// slice type rather than an ad hoc sort.Slice closure.
type kmerSlice []kmer.Kmer

func (s kmerSlice) Len() int           { return len(s) }
func (s kmerSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s kmerSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Band is the inclusive abundance interval [Nks, MaxCouv], the
// "abundance band" a k-mer's occurrence count must fall in to be
// called solid.
type Band struct {
	Nks     int64
	MaxCouv int64
}

// DefaultMaxCouv is the hard-coded upper abundance bound used when no
// explicit ceiling is configured.
const DefaultMaxCouv = (1 << 31) - 2

// DefaultBand is the default abundance band: nks=3, unbounded above
// except by DefaultMaxCouv.
var DefaultBand = Band{Nks: 3, MaxCouv: DefaultMaxCouv}

// Gather sorts one partition's k-mers in place, scans runs of equal
// values, and returns the k-mers whose run length falls in band, each
// appearing once regardless of its abundance.
//
// Gather is a pure in-memory transform over the slice ReadAll
// produced; callers own the partition file's lifecycle, including
// deleting it once it has been gathered.
func Gather(kmers []kmer.Kmer, band Band) []kmer.Kmer {
	if len(kmers) == 0 {
		return nil
	}
	sort.Sort(kmerSlice(kmers))

	solid := make([]kmer.Kmer, 0)
	runStart := 0
	for i := 1; i <= len(kmers); i++ {
		if i < len(kmers) && kmers[i] == kmers[runStart] {
			continue
		}
		runLen := int64(i - runStart)
		if runLen >= band.Nks && runLen <= band.MaxCouv {
			solid = append(solid, kmers[runStart])
		}
		runStart = i
	}
	return solid
}
