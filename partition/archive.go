package partition

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/brotli/go/cbrotli"
)

// ArchiveSolid writes a brotli-compressed copy of the solid sink at
// srcPath to dstPath, the "-out-brotli" companion file, using
// cbrotli.NewWriter(dst, cbrotli.WriterOptions{Quality: 1, LGWin: 21})
// to compress the flat record stream. It runs after the solid sink is closed and is
// purely additive: failure to archive does not roll back the primary
// solid output.
func ArchiveSolid(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("partition: archive open %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("partition: archive create %s: %w", dstPath, err)
	}
	bw := cbrotli.NewWriter(dst, cbrotli.WriterOptions{Quality: 1, LGWin: 21})

	r := bufio.NewReaderSize(src, 1<<20)
	if _, err := r.WriteTo(bw); err != nil {
		bw.Close()
		dst.Close()
		return fmt.Errorf("partition: archive compress %s: %w", dstPath, err)
	}
	if err := bw.Close(); err != nil {
		dst.Close()
		return fmt.Errorf("partition: archive close %s: %w", dstPath, err)
	}
	return dst.Close()
}
