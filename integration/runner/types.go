package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/pkg/engine"
)

// TestSuite defines a complete playthrough scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player intent and its expected outcome.
// A step without an intent waits for a timer: the session is polled until
// the expectations hold or the runner times out.
type TestStep struct {
	Name         string         `json:"name,omitempty"`
	Intent       *engine.Intent `json:"intent,omitempty"`
	Expectations Expectations   `json:"expect"`
}

// IsWait reports whether the step only polls the session.
func (s TestStep) IsWait() bool {
	return s.Intent == nil
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Response
	Status        *int   `json:"status,omitempty"`         // defaults to 200 for intents
	ErrorContains string `json:"error_contains,omitempty"` // substring of the error body

	// GameState properties - aligned with pkg/state/gamestate.go
	Scene         *string  `json:"scene,omitempty"`
	DialogueIndex *int     `json:"dialogue_index,omitempty"`
	LineID        *string  `json:"line_id,omitempty"`
	HP            *int     `json:"hp,omitempty"`
	Points        *int     `json:"points,omitempty"`
	BattlePhase   *string  `json:"battle_phase,omitempty"`
	DeathCount    *int     `json:"death_count,omitempty"`
	Inventory     []string `json:"inventory,omitempty"` // Full inventory item ids (order independent)
	Contacts      []string `json:"contacts,omitempty"`  // Full contact list (order independent)
	Unlocked      []string `json:"unlocked,omitempty"`  // Map nodes that must be unlocked

	// UIState properties - aligned with pkg/state/ui.go
	OpenModals   []string `json:"open_modals,omitempty"`
	ClosedModals []string `json:"closed_modals,omitempty"`
	VideoPhase   *int     `json:"video_phase,omitempty"`
	IsDying      *bool    `json:"is_dying,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Status   int
	IsWait   bool // True for steps that only polled for a timer
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // ID of the session used for this test
}
