// Package planner sizes the two-dimensional pass/partition
// decomposition: given an estimated k-mer volume and the run's
// RAM/disk/file-descriptor budgets, compute how many passes and how
// many partitions per pass keep every partition loadable in RAM while
// bounding disk residency and open files.
package planner

import (
	"fmt"

	"github.com/UmeshIITG/dsk/utils"
)

// sanePassCap bounds how many passes the planner will try before
// declaring the budgets infeasible.
const sanePassCap = 256

// BytesPerKmer is the on-disk width of one partition-file entry: a
// Kmer packed as a little-endian uint64 (kmer.MaxK == 32).
const BytesPerKmer = 8

// Plan is the immutable (passes, partitions, volume-per-pass) tuple a
// planner computation produces.
type Plan struct {
	Passes         int
	Partitions     int
	VolumePerPass  int64 // bytes of k-mer volume handled by one pass
	TotalVolume    int64
	MaxOpenFiles   int
	RAMBudgetBytes int64
}

// Compute sizes a Plan from the given volume estimate and budgets.
//
//	volume:       V, estimated total k-mer volume in bytes
//	ramMB:        M, RAM budget per partition, in MB
//	diskMB:       D, disk budget, in MB (0 selects the D-estimation rule)
//	inputFileMB:  the input corpus size, in MB, used when diskMB==0
//	availDiskMB:  available disk space, in MB, used when diskMB==0
//	maxOpenFiles: F, the OS open-file budget
func Compute(volume int64, ramMB, diskMB, inputFileMB, availDiskMB int64, maxOpenFiles int) (Plan, error) {
	if volume < 0 {
		return Plan{}, fmt.Errorf("planner: negative volume %d", volume)
	}
	if ramMB <= 0 {
		return Plan{}, fmt.Errorf("planner: max-memory must be > 0, got %d", ramMB)
	}
	if maxOpenFiles < 2 {
		return Plan{}, fmt.Errorf("planner: open-file budget too small: %d", maxOpenFiles)
	}

	ram := ramMB * 1 << 20

	// Step 1: pick a disk budget D.
	disk := diskMB * 1 << 20
	if disk <= 0 {
		half := (availDiskMB * 1 << 20) / 2
		input := inputFileMB * 1 << 20
		disk = utils.MinInt64(half, input)
		if disk <= 0 {
			disk = 10 * 1024 * 1024 * 1024 // 10 GB, step 1
		}
	}

	// Step 2: initial pass count from the disk budget.
	passes := int(ceilDiv(volume, disk))
	if passes < 1 {
		passes = 1
	}

	// Step 3: grow passes until Q stays under F/2.
	limit := maxOpenFiles / 2
	var partitions int
	for {
		if passes > sanePassCap {
			return Plan{}, fmt.Errorf("planner: budgets infeasible, would need P>%d passes for volume=%d ram=%dMB disk=%dMB files=%d",
				sanePassCap, volume, ramMB, diskMB, maxOpenFiles)
		}
		perPass := ceilDiv(volume, int64(passes))
		partitions = int(ceilDiv(perPass, ram))
		if partitions < 1 {
			partitions = 1
		}
		if partitions >= limit {
			passes++
			continue
		}
		break
	}

	volPerPass := ceilDiv(volume, int64(passes))
	return Plan{
		Passes:         passes,
		Partitions:     partitions,
		VolumePerPass:  volPerPass,
		TotalVolume:    volume,
		MaxOpenFiles:   maxOpenFiles,
		RAMBudgetBytes: ram,
	}, nil
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// EstimateVolume derives the counted volume from bank metadata: total
// base count and k, since every base contributes at most one k-mer
// entry of BytesPerKmer bytes. This is an upper bound: short reads and
// invalid-base windows produce fewer k-mers, so the estimate is
// conservative by construction.
func EstimateVolume(totalBases int64, k int) int64 {
	if totalBases <= 0 {
		return 0
	}
	return totalBases * BytesPerKmer
}
