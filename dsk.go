package main

import (
	"context"
	"log"
	"math"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jwaldrip/odin/cli"

	"github.com/UmeshIITG/dsk/bank"
	"github.com/UmeshIITG/dsk/counter"
)

var app = cli.New("1.0.0", "disk-streaming k-mer counter", func(c cli.Command) {})

func init() {
	count := app.DefineSubCommand("count", "count solid k-mers in a read corpus", Count)
	{
		count.DefineStringFlag("db", "", "read corpus: a FASTA file, or a .cfg file listing several FASTA sources")
		count.DefineIntFlag("kmer-size", 31, "k-mer length, in [1, 32]")
		count.DefineIntFlag("nb-cores", runtime.NumCPU(), "number of scatter worker goroutines")
		count.DefineInt64Flag("max-memory", 5000, "RAM budget in MB the planner sizes passes against")
		count.DefineInt64Flag("max-disk", 0, "disk budget in MB; 0 selects a 10 GB budget (free disk space and input size are not consulted)")
		count.DefineIntFlag("max-open-files", 300, "maximum simultaneously open partition files")
		count.DefineInt64Flag("nks", 3, "minimum abundance for a k-mer to be called solid")
		count.DefineInt64Flag("max-couv", math.MaxInt32-1, "maximum abundance for a k-mer to be called solid")
		count.DefineStringFlag("prefix", "./dsk.", "prefix for partition and bank cache files")
		count.DefineStringFlag("out", "solid_kmers.bin", "output path for the solid k-mer file")
		count.DefineStringFlag("out-brotli", "", "optional path for a brotli-compressed archival copy of the solid output")
		count.DefineStringFlag("stats", "", "optional path to dump a JSON run summary and a .dot plan diagram")
		count.DefineBoolFlag("quiet", false, "suppress console progress output")
		count.DefineBoolFlag("cache-compress", false, "zstd-compress the binary bank cache built from FASTA input")
	}
}

func main() {
	app.Start()
}

// Count is the "count" subcommand entry point: resolve the corpus,
// build or reuse its binary bank cache, run the orchestrator, and
// report the result. Flags are read up front, validated with fatal
// log messages tagged by function name, then handed to the package
// that does the work.
func Count(c cli.Command) {
	opt, ok := checkCountArgs(c)
	if !ok {
		log.Fatalf("[Count] argument validation failed\n")
	}

	cfg, err := bank.Resolve(opt.db)
	if err != nil {
		log.Fatalf("[Count] resolve corpus %q: %v\n", opt.db, err)
	}

	cachePath := opt.prefix + "bank.cache"
	it, reads, bases, built, err := bank.BuildOrReuse(cfg, opt.kmerSize, cachePath, opt.cacheCompress)
	if err != nil {
		log.Fatalf("[Count] build read bank: %v\n", err)
	}
	defer it.Close()
	log.Printf("[Count] corpus: %d reads, %d bases (cache %s, built=%v)\n", reads, bases, cachePath, built)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orc, err := counter.New(counter.Config{
		K:            opt.kmerSize,
		NbCores:      opt.nbCores,
		MaxMemoryMB:  opt.maxMemoryMB,
		DiskMB:       opt.maxDiskMB,
		MaxOpenFiles: opt.maxOpenFiles,
		Nks:          opt.nks,
		MaxCouv:      opt.maxCouv,
		Prefix:       opt.prefix,
		OutPath:      opt.out,
		OutBrotli:    opt.outBrotli,
		Quiet:        opt.quiet,
		StatsPath:    opt.statsPath,
	})
	if err != nil {
		log.Fatalf("[Count] %v\n", err)
	}

	solid, err := orc.Run(ctx, it, bases, 0, 0)
	if err != nil {
		log.Fatalf("[Count] %v\n", err)
	}
	log.Printf("[Count] done: %d solid k-mers written to %s\n", solid.Count(), opt.out)
}

type countArgs struct {
	db            string
	kmerSize      int
	nbCores       int
	maxMemoryMB   int64
	maxDiskMB     int64
	maxOpenFiles  int
	nks           int64
	maxCouv       int64
	prefix        string
	out           string
	outBrotli     string
	statsPath     string
	quiet         bool
	cacheCompress bool
}

// checkCountArgs validates the "count" subcommand's flags: pull every
// flag up front, fatal on the first structurally invalid one, and
// leave the rest of the domain-level validation to
// counter.Config.Validate.
func checkCountArgs(c cli.Command) (countArgs, bool) {
	var a countArgs
	a.db = c.Flag("db").String()
	if a.db == "" {
		log.Fatalf("[checkCountArgs] argument 'db' not set\n")
	}
	var ok bool
	a.kmerSize, ok = c.Flag("kmer-size").Get().(int)
	if !ok {
		log.Fatalf("[checkCountArgs] argument 'kmer-size': %v set error\n", c.Flag("kmer-size"))
	}
	a.nbCores, ok = c.Flag("nb-cores").Get().(int)
	if !ok || a.nbCores < 1 {
		log.Fatalf("[checkCountArgs] argument 'nb-cores': %v set error\n", c.Flag("nb-cores"))
	}
	a.maxMemoryMB, ok = c.Flag("max-memory").Get().(int64)
	if !ok {
		log.Fatalf("[checkCountArgs] argument 'max-memory': %v set error\n", c.Flag("max-memory"))
	}
	a.maxDiskMB, ok = c.Flag("max-disk").Get().(int64)
	if !ok {
		log.Fatalf("[checkCountArgs] argument 'max-disk': %v set error\n", c.Flag("max-disk"))
	}
	a.maxOpenFiles, ok = c.Flag("max-open-files").Get().(int)
	if !ok {
		log.Fatalf("[checkCountArgs] argument 'max-open-files': %v set error\n", c.Flag("max-open-files"))
	}
	a.nks, ok = c.Flag("nks").Get().(int64)
	if !ok {
		log.Fatalf("[checkCountArgs] argument 'nks': %v set error\n", c.Flag("nks"))
	}
	a.maxCouv, ok = c.Flag("max-couv").Get().(int64)
	if !ok {
		log.Fatalf("[checkCountArgs] argument 'max-couv': %v set error\n", c.Flag("max-couv"))
	}
	a.prefix = c.Flag("prefix").String()
	a.out = c.Flag("out").String()
	a.outBrotli = c.Flag("out-brotli").String()
	a.statsPath = c.Flag("stats").String()
	a.quiet, _ = c.Flag("quiet").Get().(bool)
	a.cacheCompress, _ = c.Flag("cache-compress").Get().(bool)

	if a.out == "" {
		log.Fatalf("[checkCountArgs] argument 'out' not set\n")
	}
	if a.prefix == "" {
		log.Fatalf("[checkCountArgs] argument 'prefix' not set\n")
	}
	return a, true
}
