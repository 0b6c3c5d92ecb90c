package pipeline

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the local processing state of one stage.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

func (s Status) terminal() bool { return s == StatusCompleted || s == StatusError }

// StageID identifies one of the five fixed pipeline stages. The stages are
// local progress labels, deliberately independent of the backend's real
// sub-steps.
type StageID string

const (
	StageAnalysis    StageID = "analysis"
	StagePoseMapping StageID = "pose-mapping"
	StageRelighting  StageID = "relighting"
	StageCompositing StageID = "compositing"
	StageFinalRender StageID = "final-render"
)

var stageOrder = []StageID{StageAnalysis, StagePoseMapping, StageRelighting, StageCompositing, StageFinalRender}

var stageCaser = cases.Title(language.English)

func stageName(id StageID) string {
	if id == StageAnalysis {
		return "Analysis & Segmentation"
	}
	return stageCaser.String(strings.ReplaceAll(string(id), "-", " "))
}

// Stage is one labeled progress step.
type Stage struct {
	ID      StageID `json:"id"`
	Name    string  `json:"name"`
	Status  Status  `json:"status"`
	Details string  `json:"details,omitempty"`
}

// Tracker sequences status for the fixed stage list. Stages advance strictly
// left to right; a stage can never be processing while an earlier one is not
// completed, and completed/error are terminal within one attempt.
type Tracker struct {
	mu     sync.Mutex
	stages []Stage
}

// NewTracker returns a tracker with every stage pending.
func NewTracker() *Tracker {
	t := &Tracker{stages: make([]Stage, len(stageOrder))}
	for i, id := range stageOrder {
		t.stages[i] = Stage{ID: id, Name: stageName(id), Status: StatusPending}
	}
	return t
}

// Reset returns every stage to pending for a new top-level generation. When
// keepAnalysis is true the analysis stage keeps its completed status and
// details, so an already-analyzed reference image is not re-analyzed.
func (t *Tracker) Reset(keepAnalysis bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.stages {
		if keepAnalysis && t.stages[i].ID == StageAnalysis && t.stages[i].Status == StatusCompleted {
			continue
		}
		t.stages[i].Status = StatusPending
		t.stages[i].Details = ""
	}
}

// Start marks a stage processing. It fails if the stage is terminal or any
// earlier stage has not completed.
func (t *Tracker) Start(id StageID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, err := t.indexLocked(id)
	if err != nil {
		return err
	}
	if t.stages[idx].Status.terminal() {
		return fmt.Errorf("pipeline: stage %s already %s", id, t.stages[idx].Status)
	}
	for i := 0; i < idx; i++ {
		if t.stages[i].Status != StatusCompleted {
			return fmt.Errorf("pipeline: stage %s cannot start before %s completes", id, t.stages[i].ID)
		}
	}
	t.stages[idx].Status = StatusProcessing
	return nil
}

// Complete marks a processing stage completed, with optional details.
func (t *Tracker) Complete(id StageID, details string) error {
	return t.finish(id, StatusCompleted, details)
}

// Fail marks a processing stage errored, carrying the failure detail.
func (t *Tracker) Fail(id StageID, details string) error {
	return t.finish(id, StatusError, details)
}

func (t *Tracker) finish(id StageID, status Status, details string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, err := t.indexLocked(id)
	if err != nil {
		return err
	}
	if t.stages[idx].Status != StatusProcessing {
		return fmt.Errorf("pipeline: stage %s is %s, not processing", id, t.stages[idx].Status)
	}
	t.stages[idx].Status = status
	t.stages[idx].Details = details
	return nil
}

// RestartFinal reopens only the final-render stage for a refinement pass. The
// four earlier stages keep the status they earned during generation.
func (t *Tracker) RestartFinal() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	last := len(t.stages) - 1
	for i := 0; i < last; i++ {
		if t.stages[i].Status != StatusCompleted {
			return fmt.Errorf("pipeline: cannot refine before %s completes", t.stages[i].ID)
		}
	}
	t.stages[last].Status = StatusProcessing
	t.stages[last].Details = ""
	return nil
}

// Snapshot returns a copy of the current stage list, in order.
func (t *Tracker) Snapshot() []Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// StatusOf reports the current status of one stage.
func (t *Tracker) StatusOf(id StageID) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, err := t.indexLocked(id)
	if err != nil {
		return ""
	}
	return t.stages[idx].Status
}

func (t *Tracker) indexLocked(id StageID) (int, error) {
	for i := range t.stages {
		if t.stages[i].ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("pipeline: unknown stage %s", id)
}
