package bank

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/UmeshIITG/dsk/bnt"
)

// appendFASTA streams srcPath's records into w, encoding every base
// with bnt.ByteTab, following the fasta.NewReader/linear.Seq pattern
// biogo's own examples use for streaming FASTA parsing.
func appendFASTA(w *Writer, srcPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("bank: open %s: %w", srcPath, err)
	}
	defer in.Close()

	template := linear.NewSeq("", nil, alphabet.DNA)
	fr := fasta.NewReader(in, template)
	for {
		s, rerr := fr.Read()
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return fmt.Errorf("bank: parse %s: %w", srcPath, rerr)
		}
		l, ok := s.(*linear.Seq)
		if !ok {
			return fmt.Errorf("bank: unexpected sequence type from %s", srcPath)
		}
		encoded := make([]byte, len(l.Seq))
		for i, letter := range l.Seq {
			encoded[i] = bnt.ByteTab[byte(letter)]
		}
		if err := w.Append(encoded); err != nil {
			return err
		}
	}
}

// FromFASTA converts a single FASTA file at srcPath into a binary
// read bank at dstPath. The counting core never reads FASTA directly;
// it only ever consumes the resulting Iterator.
func FromFASTA(srcPath, dstPath string) (reads, bases int64, err error) {
	w, err := Create(dstPath)
	if err != nil {
		return 0, 0, err
	}
	if err := appendFASTA(w, srcPath); err != nil {
		w.Close()
		return 0, 0, err
	}
	if err := w.Close(); err != nil {
		return 0, 0, err
	}
	reads, bases = w.Stats()
	return reads, bases, nil
}
