// Package stats implements a run's statistics surface: a nested
// property tree with groups {config, result, time}, dumped as JSON,
// plus an optional plan diagram and a progress observer.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Tree is a nested key-value tree with groups, modeled as an
// explicit value passed around rather than a process-wide global
// statistics object.
type Tree struct {
	mu     sync.Mutex
	Config map[string]any `json:"config"`
	Result map[string]any `json:"result"`
	Time   map[string]any `json:"time"`
}

// New returns an empty, ready-to-use Tree.
func New() *Tree {
	return &Tree{
		Config: map[string]any{},
		Result: map[string]any{},
		Time:   map[string]any{},
	}
}

func (t *Tree) set(group map[string]any, key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	group[key] = value
}

// SetConfig records a planner/CLI configuration value.
func (t *Tree) SetConfig(key string, value any) { t.set(t.Config, key, value) }

// SetResult records a final outcome value, e.g. the solid k-mer count.
func (t *Tree) SetResult(key string, value any) { t.set(t.Result, key, value) }

// SetTime records a stage's wall-clock duration.
func (t *Tree) SetTime(key string, d time.Duration) { t.set(t.Time, key, d.String()) }

// Timer is a scoped timing helper: it records wall-clock time at
// construction, and Stop publishes the elapsed time to the tree under
// key along every exit path (defer tree.StartTimer(...).Stop()).
type Timer struct {
	tree  *Tree
	key   string
	start time.Time
}

// StartTimer begins timing a stage.
func (t *Tree) StartTimer(key string) *Timer {
	return &Timer{tree: t, key: key, start: time.Now()}
}

// Stop records the elapsed time since StartTimer under the timer's key.
func (tm *Timer) Stop() {
	tm.tree.SetTime(tm.key, time.Since(tm.start))
}

// Dump writes the tree as indented JSON to path.
func (t *Tree) Dump(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("stats: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("stats: write %s: %w", path, err)
	}
	return nil
}
