package counter

import (
	"context"
	"fmt"
	"sync"

	"github.com/UmeshIITG/dsk/bank"
	"github.com/UmeshIITG/dsk/kmer"
	"github.com/UmeshIITG/dsk/partition"
	"github.com/UmeshIITG/dsk/stats"
)

// batchSize is how many reads a worker pulls from the shared bank
// iterator at once, amortizing the coordinator's contention.
const batchSize = 256

// scatterPass extracts every canonical k-mer from one pass over the
// bank and routes it to its partition: a single coordinator goroutine
// serializes reads off the bank iterator and hands batches to a fixed
// worker pool, each worker holding its own partition.WriteCache.
//
// ctx cancellation stops the coordinator from pulling further batches
// and stops workers from processing batches already queued; scatterPass
// then returns ctx.Err() so the caller can distinguish an abort from an
// I/O failure.
func scatterPass(ctx context.Context, it bank.Iterator, model kmer.Model, sink *partition.Sink, pass, passes, nbCores int, progress stats.Progress) error {
	work := make(chan []bank.Read, nbCores*2)
	errCh := make(chan error, nbCores+1)

	go func() {
		defer close(work)
		for {
			if ctx.Err() != nil {
				return
			}
			batch, err := it.NextBatch(batchSize)
			if err != nil {
				errCh <- fmt.Errorf("counter: scatter pass %d: %w", pass, err)
				return
			}
			if len(batch) == 0 {
				return
			}
			select {
			case work <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()

	q := uint64(sink.Partitions())
	p := uint64(passes)
	target := uint64(pass)

	var wg sync.WaitGroup
	wg.Add(nbCores)
	for w := 0; w < nbCores; w++ {
		go func() {
			defer wg.Done()
			cache := sink.NewWriteCache()
			for batch := range work {
				if ctx.Err() != nil {
					continue
				}
				for _, r := range batch {
					for _, k := range model.Extract(r.Bases) {
						h := Hash(uint64(k))
						if h%p != target {
							continue
						}
						reduced := h / p
						idx := int(reduced % q)
						if err := cache.Insert(idx, k); err != nil {
							errCh <- err
							return
						}
					}
				}
				progress.Advance("scatter", int64(len(batch)))
			}
			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}
			if err := cache.Flush(); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
