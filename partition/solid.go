package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/UmeshIITG/dsk/kmer"
)

// SolidSink is the buffered append-only writer of the final solid
// k-mer file. It has a single mutex since, unlike the partition set,
// only one output stream exists for the whole run.
type SolidSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
	bw   *bufio.Writer
	n    int64
}

// CreateSolidSink truncates (or creates) path: an existing output
// file at the same path is unconditionally removed via os.Create.
func CreateSolidSink(path string) (*SolidSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("partition: create solid sink %s: %w", path, err)
	}
	return &SolidSink{path: path, f: f, bw: bufio.NewWriterSize(f, bufferBytes)}, nil
}

// Append writes kmers, in the order given, to the solid sink.
// Ordering across calls is pass-major then partition-major; within one call ascending order is the caller's responsibility.
func (s *SolidSink) Append(kmers []kmer.Kmer) error {
	if len(kmers) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf [KmerWidth]byte
	for _, k := range kmers {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		if _, err := s.bw.Write(buf[:]); err != nil {
			return fmt.Errorf("partition: write solid sink %s: %w", s.path, err)
		}
	}
	s.n += int64(len(kmers))
	return nil
}

// Count returns how many k-mers have been appended so far.
func (s *SolidSink) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Path returns the solid sink's file path.
func (s *SolidSink) Path() string { return s.path }

// Close flushes and closes the solid sink.
func (s *SolidSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bw.Flush(); err != nil {
		return fmt.Errorf("partition: flush solid sink %s: %w", s.path, err)
	}
	return s.f.Close()
}

// Abort closes and removes the solid sink: on any fatal error the
// solid output must not be left behind half-written.
func (s *SolidSink) Abort() error {
	s.Close()
	return Remove(s.path)
}
