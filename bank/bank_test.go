package bank

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriterIteratorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.bank")

	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	recs := [][]byte{
		{0, 1, 2, 3},
		{},
		{3, 3, 3, 1, 0},
	}
	for _, r := range recs {
		if err := w.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	it, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	batch, err := it.NextBatch(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != len(recs) {
		t.Fatalf("got %d records, want %d", len(batch), len(recs))
	}
	for i, r := range recs {
		if len(batch[i].Bases) != len(r) {
			t.Fatalf("record %d: got len %d want %d", i, len(batch[i].Bases), len(r))
		}
	}

	if err := it.Reset(); err != nil {
		t.Fatal(err)
	}
	batch2, err := it.NextBatch(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch2) != len(recs) {
		t.Fatalf("after reset: got %d records, want %d", len(batch2), len(recs))
	}
}

func TestWriterIteratorBatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.bank")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := w.Append([]byte{0, 1, 2}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	it, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	b1, err := it.NextBatch(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b1) != 2 {
		t.Fatalf("got %d, want 2", len(b1))
	}
	b2, err := it.NextBatch(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b2) != 2 {
		t.Fatalf("got %d, want 2", len(b2))
	}
	b3, err := it.NextBatch(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b3) != 1 {
		t.Fatalf("got %d, want 1", len(b3))
	}
	b4, err := it.NextBatch(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b4) != 0 {
		t.Fatalf("got %d, want 0 at EOF", len(b4))
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.bank.zst")

	w, err := CreateCompressed(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append([]byte{0, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	it, err := OpenCompressed(path)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	batch, err := it.NextBatch(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 1 || len(batch[0].Bases) != 4 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestParseConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "corpus.cfg")
	content := "# comment\n\n; also a comment\nreads1.fa\nreads2.fa\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseConfig(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"reads1.fa", "reads2.fa"}
	if len(cfg.Sources) != len(want) {
		t.Fatalf("got %v, want %v", cfg.Sources, want)
	}
	for i := range want {
		if cfg.Sources[i] != want[i] {
			t.Fatalf("got %v, want %v", cfg.Sources, want)
		}
	}
}

func TestResolvePlainFile(t *testing.T) {
	cfg, err := Resolve("reads.fa")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "reads.fa" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
