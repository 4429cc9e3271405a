package bank

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash"
)

// fingerprint identifies a (sources, k) pair well enough to decide
// whether a previously built cache file can be reused: it folds in
// each source's path, size and modification time plus k, using
// xxhash.Sum64 as a fast non-cryptographic content hash. This is not
// the counting hash; it only gates cache reuse.
func fingerprint(cfg Config, k int) (uint64, error) {
	var buf []byte
	for _, src := range cfg.Sources {
		st, err := os.Stat(src)
		if err != nil {
			return 0, fmt.Errorf("bank: stat %s: %w", src, err)
		}
		buf = append(buf, src...)
		buf = append(buf, '\x00')
		buf = strconv.AppendInt(buf, st.Size(), 10)
		buf = append(buf, '\x00')
		buf = strconv.AppendInt(buf, st.ModTime().UnixNano(), 10)
		buf = append(buf, '\x00')
	}
	buf = strconv.AppendInt(buf, int64(k), 10)
	return xxhash.Sum64(buf), nil
}

func fingerprintPath(cachePath string) string { return cachePath + ".fp" }

// BuildOrReuse returns an Iterator over the binary bank for cfg at k,
// rebuilding it from FASTA only if cachePath is missing or its
// fingerprint sidecar disagrees with the current sources. compress
// selects a zstd-compressed cache (CreateCompressed/OpenCompressed).
// The common case, a single uncompressed source, builds through
// FromFASTA directly; a config file naming several sources, or a
// compressed cache, appends each source into one shared Writer since
// FromFASTA only ever produces a single-source, uncompressed bank.
// reads/bases are always the corpus's true totals, whether the cache
// was just built or reused, since the planner's volume estimate
// needs them either way.
func BuildOrReuse(cfg Config, k int, cachePath string, compress bool) (it Iterator, reads, bases int64, built bool, err error) {
	fp, err := fingerprint(cfg, k)
	if err != nil {
		return nil, 0, 0, false, err
	}

	if cachedReads, cachedBases, ok := reusable(cachePath, fp); ok {
		if compress {
			it, err = OpenCompressed(cachePath)
		} else {
			it, err = Open(cachePath)
		}
		if err == nil {
			return it, cachedReads, cachedBases, false, nil
		}
		// fall through and rebuild on any open failure
	}

	if !compress && len(cfg.Sources) == 1 {
		reads, bases, err = FromFASTA(cfg.Sources[0], cachePath)
		if err != nil {
			return nil, 0, 0, false, err
		}
	} else {
		var w *Writer
		if compress {
			w, err = CreateCompressed(cachePath)
		} else {
			w, err = Create(cachePath)
		}
		if err != nil {
			return nil, 0, 0, false, err
		}
		for _, src := range cfg.Sources {
			if err := appendFASTA(w, src); err != nil {
				w.Close()
				return nil, 0, 0, false, err
			}
		}
		if err := w.Close(); err != nil {
			return nil, 0, 0, false, err
		}
		reads, bases = w.Stats()
	}

	if err := writeFingerprint(cachePath, fp, reads, bases); err != nil {
		return nil, 0, 0, false, err
	}

	if compress {
		it, err = OpenCompressed(cachePath)
	} else {
		it, err = Open(cachePath)
	}
	if err != nil {
		return nil, 0, 0, false, err
	}
	return it, reads, bases, true, nil
}

// reusable reports whether cachePath's fingerprint sidecar matches fp,
// returning the corpus totals it recorded when it does.
func reusable(cachePath string, fp uint64) (reads, bases int64, ok bool) {
	if _, err := os.Stat(cachePath); err != nil {
		return 0, 0, false
	}
	raw, err := os.ReadFile(fingerprintPath(cachePath))
	if err != nil {
		return 0, 0, false
	}
	var want uint64
	if _, err := fmt.Sscanf(string(raw), "%x:%d:%d", &want, &reads, &bases); err != nil {
		return 0, 0, false
	}
	return reads, bases, want == fp
}

func writeFingerprint(cachePath string, fp uint64, reads, bases int64) error {
	line := fmt.Sprintf("%x:%d:%d", fp, reads, bases)
	return os.WriteFile(fingerprintPath(cachePath), []byte(line), 0o644)
}
