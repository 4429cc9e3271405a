package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/UmeshIITG/dsk/kmer"
)

// bufferBytes is the fixed per-partition, per-worker write buffer
// size: 64 KiB.
const bufferBytes = 64 * 1024
const bufferKmers = bufferBytes / KmerWidth

// partitionFile is one partition's backing file: a mutex covers its
// file offset and OS handle, so multiple partitions may
// flush concurrently while writes to the same partition serialize.
type partitionFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
	bw   *bufio.Writer
	n    int64
}

func (pf *partitionFile) append(kmers []kmer.Kmer) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	var buf [KmerWidth]byte
	for _, k := range kmers {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		if _, err := pf.bw.Write(buf[:]); err != nil {
			return fmt.Errorf("partition: write %s: %w", pf.path, err)
		}
	}
	pf.n += int64(len(kmers))
	return nil
}

// Sink is the collection of Q append-only partition files for one
// pass.
type Sink struct {
	files []*partitionFile
}

// NewSink creates q partition files, indexed 0..q-1, under prefix for
// the given pass. Partition files are created at pass start and
// removed once gathered.
func NewSink(prefix string, pass, q int) (*Sink, error) {
	s := &Sink{files: make([]*partitionFile, q)}
	for i := 0; i < q; i++ {
		path := Path(prefix, pass, i)
		f, err := os.Create(path)
		if err != nil {
			s.closePartial(i)
			return nil, fmt.Errorf("partition: create %s: %w", path, err)
		}
		s.files[i] = &partitionFile{path: path, f: f, bw: bufio.NewWriterSize(f, bufferBytes)}
	}
	return s, nil
}

func (s *Sink) closePartial(n int) {
	for i := 0; i < n; i++ {
		if s.files[i] != nil {
			s.files[i].f.Close()
		}
	}
}

// Partitions returns how many partition files this sink holds.
func (s *Sink) Partitions() int { return len(s.files) }

// Path returns the on-disk path of partition index.
func (s *Sink) Path(index int) string { return s.files[index].path }

// Count returns how many k-mers have been appended to partition index
// so far (buffered-but-not-yet-flushed entries are not counted until
// Flush drains them).
func (s *Sink) Count(index int) int64 { return s.files[index].n }

// Close flushes every partition's buffered writer and closes its file.
func (s *Sink) Close() error {
	var first error
	for _, pf := range s.files {
		if err := pf.bw.Flush(); err != nil && first == nil {
			first = fmt.Errorf("partition: flush %s: %w", pf.path, err)
		}
		if err := pf.f.Close(); err != nil && first == nil {
			first = fmt.Errorf("partition: close %s: %w", pf.path, err)
		}
	}
	return first
}

// RemoveAll deletes every partition file, e.g. after gather has
// consumed them or on cancellation.
func (s *Sink) RemoveAll() error {
	var first error
	for _, pf := range s.files {
		if err := Remove(pf.path); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteCache is a per-worker, per-partition buffer over a Sink. Each
// worker holds one; when a buffer fills it is appended to the
// partition file under that partition's lock. WriteCache itself is
// not safe for concurrent use; one per goroutine.
type WriteCache struct {
	sink *Sink
	bufs [][]kmer.Kmer
}

// NewWriteCache returns a WriteCache over sink, sized to bufferKmers
// per partition.
func (s *Sink) NewWriteCache() *WriteCache {
	bufs := make([][]kmer.Kmer, len(s.files))
	for i := range bufs {
		bufs[i] = make([]kmer.Kmer, 0, bufferKmers)
	}
	return &WriteCache{sink: s, bufs: bufs}
}

// Insert buffers k for partition index, flushing that partition's
// buffer to disk when it fills.
func (c *WriteCache) Insert(index int, k kmer.Kmer) error {
	buf := append(c.bufs[index], k)
	if len(buf) >= bufferKmers {
		if err := c.sink.files[index].append(buf); err != nil {
			return err
		}
		buf = buf[:0]
	}
	c.bufs[index] = buf
	return nil
}

// Flush drains every non-empty buffer this cache holds. Must be
// called when a worker finishes its work item; buffers are not
// flushed automatically.
func (c *WriteCache) Flush() error {
	for i, buf := range c.bufs {
		if len(buf) == 0 {
			continue
		}
		if err := c.sink.files[i].append(buf); err != nil {
			return err
		}
		c.bufs[i] = buf[:0]
	}
	return nil
}
