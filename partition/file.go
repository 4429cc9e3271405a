// Package partition implements the partition sink, the
// gather stage's sort-and-aggregate, and the solid
// sink.
//
// A partition file, and the solid sink file, share one on-disk shape:
// an ordered sequence of Kmer values stored as raw little-endian
// fixed-width integers, concatenated without framing. No header, no
// index; length is implied by file size / sizeof(Kmer).
package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/UmeshIITG/dsk/kmer"
)

// KmerWidth is the on-disk width of one Kmer entry.
const KmerWidth = 8 // sizeof(uint64)

// Path builds the on-disk path for partition index in one pass.
func Path(prefix string, pass, index int) string {
	return fmt.Sprintf("%spass%d.partition%d", prefix, pass, index)
}

// ReadAll loads every Kmer stored in path, in file order.
func ReadAll(path string) ([]kmer.Kmer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("partition: open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("partition: stat %s: %w", path, err)
	}
	if st.Size()%KmerWidth != 0 {
		return nil, fmt.Errorf("partition: %s: size %d not a multiple of %d", path, st.Size(), KmerWidth)
	}
	n := st.Size() / KmerWidth
	out := make([]kmer.Kmer, n)

	r := bufio.NewReaderSize(f, 1<<20)
	var buf [KmerWidth]byte
	for i := int64(0); i < n; i++ {
		if _, err := readFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("partition: read %s: %w", path, err)
		}
		out[i] = kmer.Kmer(binary.LittleEndian.Uint64(buf[:]))
	}
	return out, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Remove deletes a partition file. Missing files are not an error;
// gather deletes on success, and cancellation may race a partial
// cleanup.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("partition: remove %s: %w", path, err)
	}
	return nil
}
