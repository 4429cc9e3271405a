package partition

import (
	"path/filepath"
	"testing"

	"github.com/UmeshIITG/dsk/kmer"
)

func TestSinkWriteCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "dsk.")

	sink, err := NewSink(prefix, 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	wc := sink.NewWriteCache()
	want := map[int][]kmer.Kmer{
		0: {1, 2, 3},
		1: {10},
		2: {},
		3: {100, 200},
	}
	for idx, ks := range want {
		for _, k := range ks {
			if err := wc.Insert(idx, k); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := wc.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	for idx, ks := range want {
		got, err := ReadAll(sink.Path(idx))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(ks) {
			t.Fatalf("partition %d: got %v want %v", idx, got, ks)
		}
		for i := range ks {
			if got[i] != ks[i] {
				t.Fatalf("partition %d entry %d: got %v want %v", idx, i, got[i], ks[i])
			}
		}
	}
	if err := sink.RemoveAll(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteCacheSpillsAcrossBufferBoundary(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "dsk.")
	sink, err := NewSink(prefix, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	wc := sink.NewWriteCache()
	n := bufferKmers*2 + 17 // force at least two internal flushes
	for i := 0; i < n; i++ {
		if err := wc.Insert(0, kmer.Kmer(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := wc.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll(sink.Path(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != n {
		t.Fatalf("got %d entries, want %d", len(got), n)
	}
	for i := 0; i < n; i++ {
		if got[i] != kmer.Kmer(i) {
			t.Fatalf("entry %d: got %v want %v", i, got[i], i)
		}
	}
}

func TestGatherEmptyPartition(t *testing.T) {
	if got := Gather(nil, DefaultBand); got != nil {
		t.Fatalf("expected nil for empty partition, got %v", got)
	}
}

func TestGatherAllIdentical(t *testing.T) {
	ks := []kmer.Kmer{7, 7, 7, 7, 7}
	got := Gather(ks, Band{Nks: 1, MaxCouv: 100})
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v, want [7]", got)
	}
}

func TestGatherThresholdFilter(t *testing.T) {
	// S1/S2 from : ACG count 4, TAC count 2.
	ks := []kmer.Kmer{1, 1, 1, 1, 2, 2}
	got := Gather(ks, Band{Nks: 3, MaxCouv: DefaultMaxCouv})
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v, want [1]", got)
	}
}

func TestGatherUpperBound(t *testing.T) {
	// S3 from : max_couv=3 excludes the count-4 k-mer.
	ks := []kmer.Kmer{1, 1, 1, 1, 2, 2}
	got := Gather(ks, Band{Nks: 1, MaxCouv: 3})
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("got %v, want [2]", got)
	}
}

func TestGatherOrderIndependent(t *testing.T) {
	a := Gather([]kmer.Kmer{3, 1, 2, 1, 3, 3}, Band{Nks: 1, MaxCouv: DefaultMaxCouv})
	b := Gather([]kmer.Kmer{1, 1, 2, 3, 3, 3}, Band{Nks: 1, MaxCouv: DefaultMaxCouv})
	if len(a) != len(b) {
		t.Fatalf("got %v and %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("got %v and %v", a, b)
		}
	}
}

func TestSolidSinkAppendAndReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.bin")

	sink, err := CreateSolidSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Append([]kmer.Kmer{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Append([]kmer.Kmer{4}); err != nil {
		t.Fatal(err)
	}
	if sink.Count() != 4 {
		t.Fatalf("count = %d, want 4", sink.Count())
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []kmer.Kmer{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestSolidSinkAbortRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.bin")
	sink, err := CreateSolidSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Append([]kmer.Kmer{1}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Abort(); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAll(path); err == nil {
		t.Fatal("expected file to be removed after Abort")
	}
}
