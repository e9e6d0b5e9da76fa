// Package journal records what a zshup run did, step by step, with
// locking so two runs cannot interleave. The last run's journal backs the
// `zshup status` command.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StepState represents the outcome of a single run step.
type StepState string

const (
	StateCompleted StepState = "completed"
	StateWarning   StepState = "warning"
	StateFailed    StepState = "failed"
	StateSkipped   StepState = "skipped"
)

// Step is one recorded step of a run.
type Step struct {
	Name   string    `json:"name"`
	State  StepState `json:"state"`
	Detail string    `json:"detail,omitempty"`
}

// Run is the journal of one zshup invocation.
type Run struct {
	Version    int       `json:"version"` // Schema version for future evolution
	ID         string    `json:"id"`      // UUID for unique identification
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Steps      []Step    `json:"steps"`
	Success    bool      `json:"success"`
}

// NewRun creates a journal for a run starting now.
func NewRun() *Run {
	return &Run{
		Version:   1,
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
}

// Record appends a step outcome to the journal.
func (r *Run) Record(name string, state StepState, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, State: state, Detail: detail})
}

// Finish marks the run complete.
func (r *Run) Finish(success bool) {
	r.Success = success
	r.FinishedAt = time.Now().UTC()
}

// HasFailures returns true if any step failed.
func (r *Run) HasFailures() bool {
	for _, s := range r.Steps {
		if s.State == StateFailed {
			return true
		}
	}
	return false
}

// Save writes the journal to dir atomically using write-then-rename. The
// filename starts with the UTC start timestamp so lexical order is
// chronological order.
func (r *Run) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	filename := fmt.Sprintf("run-%s-%s.json", r.StartedAt.Format("20060102T150405"), r.ID)
	finalPath := filepath.Join(dir, filename)
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temporary journal file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath) // Clean up temp file on error
		return fmt.Errorf("rename journal file: %w", err)
	}

	return nil
}

// Load reads a journal from disk.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal file: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal journal: %w", err)
	}

	return &run, nil
}

// ErrNoRuns is returned by Latest when the journal directory holds no runs.
var ErrNoRuns = fmt.Errorf("no recorded runs")

// Latest loads the most recent run journal from dir.
func Latest(dir string) (*Run, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("read journal directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "run-") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoRuns
	}

	sort.Strings(names)
	return Load(filepath.Join(dir, names[len(names)-1]))
}
