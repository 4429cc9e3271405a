// Package counter implements the scatter stage and the orchestrator
// that drives the pass loop: plan, then for each pass scatter ->
// gather -> flush into the solid sink.
package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/UmeshIITG/dsk/bank"
	"github.com/UmeshIITG/dsk/kmer"
	"github.com/UmeshIITG/dsk/partition"
	"github.com/UmeshIITG/dsk/planner"
	"github.com/UmeshIITG/dsk/stats"
)

// Config is the counting run's option table, minus the input source
// itself (the orchestrator takes an already-opened bank.Iterator so it
// stays agnostic to where reads come from).
type Config struct {
	K            int
	NbCores      int
	MaxMemoryMB  int64
	DiskMB       int64 // 0 selects the planner's D-estimation rule
	MaxOpenFiles int
	Nks          int64
	MaxCouv      int64
	Prefix       string
	OutPath      string
	Quiet        bool
	StatsPath    string
	OutBrotli    string // optional path for a brotli-compressed archival copy of the solid output
}

// Validate checks the parts of Config that belong to the
// ConfigInvalid kind, before any I/O happens.
func (c Config) Validate() error {
	if c.K < 1 || c.K > kmer.MaxK {
		return wrap(ConfigInvalid, fmt.Errorf("kmer-size %d outside supported range [1,%d]", c.K, kmer.MaxK))
	}
	if c.Nks < 1 {
		return wrap(ConfigInvalid, fmt.Errorf("nks must be >= 1, got %d", c.Nks))
	}
	if c.MaxCouv < c.Nks {
		return wrap(ConfigInvalid, fmt.Errorf("max-couv %d must be >= nks %d", c.MaxCouv, c.Nks))
	}
	if c.NbCores < 1 {
		return wrap(ConfigInvalid, fmt.Errorf("nb-cores must be >= 1, got %d", c.NbCores))
	}
	if c.OutPath == "" {
		return wrap(ConfigInvalid, fmt.Errorf("out path must be set"))
	}
	if c.Prefix == "" {
		return wrap(ConfigInvalid, fmt.Errorf("prefix must be set"))
	}
	return nil
}

// Orchestrator drives the pass loop over a bank.Iterator. It owns the Plan, the per-pass partition set, and the solid
// sink; the k-mer model is shared immutably with every scatter worker.
type Orchestrator struct {
	cfg      Config
	model    kmer.Model
	progress stats.Progress
	Tree     *stats.Tree
}

// New validates cfg and builds an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := kmer.New(cfg.K)
	if err != nil {
		return nil, wrap(ConfigInvalid, err)
	}
	progress := stats.NewConsole()
	if cfg.Quiet {
		progress = stats.NoOp()
	}
	return &Orchestrator{cfg: cfg, model: model, progress: progress, Tree: stats.New()}, nil
}

// Run drives the full pass loop over it, which must already be
// positioned at the start of the bank. totalBases is used only to
// estimate the counted volume; availDiskMB/inputFileMB feed the
// planner's disk-budget estimation rule when cfg.DiskMB==0.
//
// ctx cancellation aborts at the next partition boundary: the pass in
// flight finishes gathering the partition it is on, then the run stops,
// discards the current pass's remaining partition files, and removes
// the solid output built so far, returning a Cancelled error.
func (o *Orchestrator) Run(ctx context.Context, it bank.Iterator, totalBases, availDiskMB, inputFileMB int64) (*partition.SolidSink, error) {
	o.Tree.SetConfig("kmer-size", o.cfg.K)
	o.Tree.SetConfig("nb-cores", o.cfg.NbCores)
	o.Tree.SetConfig("nks", o.cfg.Nks)
	o.Tree.SetConfig("max-couv", o.cfg.MaxCouv)

	volume := planner.EstimateVolume(totalBases, o.cfg.K)
	plan, err := planner.Compute(volume, o.cfg.MaxMemoryMB, o.cfg.DiskMB, inputFileMB, availDiskMB, o.cfg.MaxOpenFiles)
	if err != nil {
		return nil, wrap(BudgetInfeasible, err)
	}
	o.Tree.SetConfig("passes", plan.Passes)
	o.Tree.SetConfig("partitions", plan.Partitions)

	solid, err := partition.CreateSolidSink(o.cfg.OutPath)
	if err != nil {
		return nil, wrap(IOFailure, err)
	}

	band := partition.Band{Nks: o.cfg.Nks, MaxCouv: o.cfg.MaxCouv}

	for p := 0; p < plan.Passes; p++ {
		if err := ctx.Err(); err != nil {
			solid.Abort()
			return nil, wrap(Cancelled, err)
		}
		if err := o.runPass(ctx, it, p, plan.Passes, plan.Partitions, band, solid); err != nil {
			solid.Abort()
			return nil, err
		}
		if p < plan.Passes-1 {
			if err := it.Reset(); err != nil {
				solid.Abort()
				return nil, wrap(IOFailure, err)
			}
		}
	}

	if err := solid.Close(); err != nil {
		partition.Remove(solid.Path())
		return nil, wrap(IOFailure, err)
	}
	o.progress.Done("scatter")
	o.progress.Done("gather")
	o.Tree.SetResult("solid-kmers", solid.Count())

	if o.cfg.OutBrotli != "" {
		if err := partition.ArchiveSolid(solid.Path(), o.cfg.OutBrotli); err != nil {
			return solid, wrap(IOFailure, err)
		}
	}

	if o.cfg.StatsPath != "" {
		if err := o.Tree.Dump(o.cfg.StatsPath); err != nil {
			return solid, err
		}
		_ = stats.PlanDiagram(o.cfg.StatsPath+".dot", plan.Passes, plan.Partitions)
	}
	return solid, nil
}

// runPass executes one pass: open a fresh partition set, scatter into
// it, then gather each partition into the solid sink, deleting
// partition files as they're consumed. ctx is checked at each partition
// boundary in the gather loop, so a cancellation lands between two
// partitions rather than mid-partition.
func (o *Orchestrator) runPass(ctx context.Context, it bank.Iterator, pass, passes, partitions int, band partition.Band, solid *partition.SolidSink) error {
	timer := o.Tree.StartTimer(fmt.Sprintf("pass%d", pass))
	defer timer.Stop()

	sink, err := partition.NewSink(o.cfg.Prefix, pass, partitions)
	if err != nil {
		return wrap(IOFailure, err)
	}

	if err := scatterPass(ctx, it, o.model, sink, pass, passes, o.cfg.NbCores, o.progress); err != nil {
		sink.Close()
		sink.RemoveAll()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return wrap(Cancelled, err)
		}
		if errors.Is(err, bank.ErrInputFormat) {
			return wrap(InputFormat, err)
		}
		return wrap(IOFailure, err)
	}
	if err := sink.Close(); err != nil {
		sink.RemoveAll()
		return wrap(IOFailure, err)
	}

	for q := 0; q < partitions; q++ {
		if err := ctx.Err(); err != nil {
			sink.RemoveAll()
			return wrap(Cancelled, err)
		}
		o.Tree.SetResult(fmt.Sprintf("pass%d.partition%d.scattered", pass, q), sink.Count(q))
		path := sink.Path(q)
		kmers, err := partition.ReadAll(path)
		if err != nil {
			sink.RemoveAll()
			return wrap(IOFailure, err)
		}
		solidKmers := partition.Gather(kmers, band)
		if err := solid.Append(solidKmers); err != nil {
			sink.RemoveAll()
			return wrap(IOFailure, err)
		}
		if err := partition.Remove(path); err != nil {
			return wrap(IOFailure, err)
		}
		o.progress.Advance("gather", int64(len(kmers)))
	}
	return nil
}
