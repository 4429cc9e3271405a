// Package bank implements a compact, replayable encoding of a read
// corpus, plus the config-file and FASTA adapters that build one.
package bank

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Read is one corpus read, held as 2-bit-coded bases (bnt.A..bnt.T,
// or bnt.N for anything else), the same representation kmer.Extract
// consumes directly.
type Read struct {
	Bases []byte
}

// Iterator yields reads from a binary bank, batched to amortize the
// coordination cost of a shared work queue.
type Iterator interface {
	// NextBatch returns up to n reads. len(batch) < n only at EOF; an
	// empty batch with a nil error signals a clean end of the bank.
	NextBatch(n int) (batch []Read, err error)
	// Reset rewinds to the start of the bank so the orchestrator can
	// replay it for the next pass.
	Reset() error
	Close() error
}

const lengthPrefixSize = 4 // uint32

// Writer appends reads to a binary bank: each record is a
// little-endian uint32 length followed by that many raw base bytes.
// When built via CreateCompressed the stream is zstd-compressed on
// disk and transparently decompressed by the matching iterator.
type Writer struct {
	f   *os.File
	bw  *bufio.Writer
	zw  *zstd.Encoder // nil unless compressed
	dst io.Writer
	n   int64 // read count, for stats
	tot int64 // total base count, for volume estimation
}

// Create truncates (or creates) path and returns an uncompressed Writer.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bank: create %s: %w", path, err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	return &Writer{f: f, bw: bw, dst: bw}, nil
}

// CreateCompressed is Create, but the record stream is zstd-compressed.
// Used for the read bank cache, not for partition or solid files;
// those need direct fixed-width access into the record stream.
func CreateCompressed(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bank: create %s: %w", path, err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	zw, err := zstd.NewWriter(bw)
	if err != nil {
		return nil, fmt.Errorf("bank: zstd writer: %w", err)
	}
	return &Writer{f: f, bw: bw, zw: zw, dst: zw}, nil
}

// Append writes one read record.
func (w *Writer) Append(bases []byte) error {
	var hdr [lengthPrefixSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(bases)))
	if _, err := w.dst.Write(hdr[:]); err != nil {
		return fmt.Errorf("bank: write length: %w", err)
	}
	if _, err := w.dst.Write(bases); err != nil {
		return fmt.Errorf("bank: write bases: %w", err)
	}
	w.n++
	w.tot += int64(len(bases))
	return nil
}

// Stats returns the record count and total base count written so far.
func (w *Writer) Stats() (reads, bases int64) { return w.n, w.tot }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.f.Close()
}

// fileIterator reads a binary bank sequentially, from disk, and
// re-opens it on Reset so a pass can be replayed from the start.
type fileIterator struct {
	path       string
	compressed bool
	f          *os.File
	br         *bufio.Reader
	zr         *zstd.Decoder
	src        io.Reader
}

// Open opens an uncompressed bank at path for sequential iteration.
func Open(path string) (Iterator, error) {
	it := &fileIterator{path: path}
	if err := it.Reset(); err != nil {
		return nil, err
	}
	return it, nil
}

// OpenCompressed opens a zstd-compressed bank written by CreateCompressed.
func OpenCompressed(path string) (Iterator, error) {
	it := &fileIterator{path: path, compressed: true}
	if err := it.Reset(); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *fileIterator) Reset() error {
	if it.zr != nil {
		it.zr.Close()
		it.zr = nil
	}
	if it.f != nil {
		it.f.Close()
	}
	f, err := os.Open(it.path)
	if err != nil {
		return fmt.Errorf("bank: open %s: %w", it.path, err)
	}
	it.f = f
	it.br = bufio.NewReaderSize(f, 1<<20)
	if it.compressed {
		zr, err := zstd.NewReader(it.br)
		if err != nil {
			return fmt.Errorf("bank: zstd reader: %w", err)
		}
		it.zr = zr
		it.src = zr
	} else {
		it.src = it.br
	}
	return nil
}

func (it *fileIterator) NextBatch(n int) ([]Read, error) {
	batch := make([]Read, 0, n)
	for len(batch) < n {
		var hdr [lengthPrefixSize]byte
		if _, err := io.ReadFull(it.src, hdr[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("bank: %w: %s", ErrInputFormat, err)
		}
		l := binary.LittleEndian.Uint32(hdr[:])
		bases := make([]byte, l)
		if _, err := io.ReadFull(it.src, bases); err != nil {
			return nil, fmt.Errorf("bank: %w: %s", ErrInputFormat, err)
		}
		batch = append(batch, Read{Bases: bases})
	}
	return batch, nil
}

func (it *fileIterator) Close() error {
	if it.zr != nil {
		it.zr.Close()
	}
	if it.f == nil {
		return nil
	}
	return it.f.Close()
}

var ErrInputFormat = fmt.Errorf("malformed binary bank")
