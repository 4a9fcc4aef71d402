package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays test suites against a running cell-commander API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration // how long a wait step polls
	PollInterval      time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 10 * time.Second},
		Timeout:           WaitTimeout,
		PollInterval:      PollInterval,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays a suite in a fresh session, deleting the session afterwards
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	sessionID, _, err := CreateSession(ctx, r.Client, r.BaseURL)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = sessionID
	defer func() {
		if err := DeleteSession(context.WithoutCancel(ctx), r.Client, r.BaseURL, sessionID); err != nil {
			r.Logger("    Warning: failed to delete session %s: %v", sessionID, err)
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, sessionID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			// Later steps build on this one; only continue mode keeps going
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep posts the step's intent, or polls when the step only waits
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
		IsWait:   step.IsWait(),
	}

	if step.IsWait() {
		_, err := PollForView(ctx, r.Client, r.BaseURL, sessionID, r.PollInterval, r.Timeout, func(v *engine.View) error {
			return checkView(step.Expectations, v)
		})
		if err != nil {
			result.Error = fmt.Errorf("wait expectation failed: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		result.Status = http.StatusOK
		result.Success = true
		result.Duration = time.Since(start)
		return result
	}

	resp, err := PostIntent(ctx, r.Client, r.BaseURL, sessionID, *step.Intent)
	if err != nil {
		result.Error = fmt.Errorf("failed to post intent: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	result.Status = resp.Status

	if err := checkResponse(step.Expectations, resp); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkResponse validates the status and error text, then the view if any
func checkResponse(exp Expectations, resp *IntentResponse) error {
	wantStatus := http.StatusOK
	if exp.Status != nil {
		wantStatus = *exp.Status
	}
	if resp.Status != wantStatus {
		return fmt.Errorf("expected status %d, got %d (%s)", wantStatus, resp.Status, resp.Error)
	}

	if exp.ErrorContains != "" && !strings.Contains(strings.ToLower(resp.Error), strings.ToLower(exp.ErrorContains)) {
		return fmt.Errorf("expected error to contain '%s', got '%s'", exp.ErrorContains, resp.Error)
	}

	if resp.View == nil {
		if exp.hasViewChecks() {
			return fmt.Errorf("status %d carried no view to check", resp.Status)
		}
		return nil
	}
	return checkView(exp, resp.View)
}

func (exp Expectations) hasViewChecks() bool {
	return exp.Scene != nil || exp.DialogueIndex != nil || exp.LineID != nil ||
		exp.HP != nil || exp.Points != nil || exp.BattlePhase != nil ||
		exp.DeathCount != nil || len(exp.Inventory) > 0 || len(exp.Contacts) > 0 ||
		len(exp.Unlocked) > 0 || len(exp.OpenModals) > 0 || len(exp.ClosedModals) > 0 ||
		exp.VideoPhase != nil || exp.IsDying != nil
}

// checkView validates the expectations against a session view
func checkView(exp Expectations, v *engine.View) error {
	gs := v.State

	if exp.Scene != nil && string(gs.CurrentScene) != *exp.Scene {
		return fmt.Errorf("expected scene %s, got %s", *exp.Scene, gs.CurrentScene)
	}

	if exp.DialogueIndex != nil && gs.DialogueIndex != *exp.DialogueIndex {
		return fmt.Errorf("expected dialogue_index %d, got %d", *exp.DialogueIndex, gs.DialogueIndex)
	}

	if exp.LineID != nil {
		got := ""
		if v.Line != nil {
			got = v.Line.ID
		}
		if got != *exp.LineID {
			return fmt.Errorf("expected line %s, got %s", *exp.LineID, got)
		}
	}

	if exp.HP != nil && gs.HP != *exp.HP {
		return fmt.Errorf("expected hp %d, got %d", *exp.HP, gs.HP)
	}

	if exp.Points != nil && gs.Points != *exp.Points {
		return fmt.Errorf("expected points %d, got %d", *exp.Points, gs.Points)
	}

	if exp.BattlePhase != nil && string(gs.Flags.BattlePhase) != *exp.BattlePhase {
		return fmt.Errorf("expected battle_phase %s, got %s", *exp.BattlePhase, gs.Flags.BattlePhase)
	}

	if exp.DeathCount != nil && gs.Flags.DeathCount != *exp.DeathCount {
		return fmt.Errorf("expected death_count %d, got %d", *exp.DeathCount, gs.Flags.DeathCount)
	}

	// Full inventory check (order independent)
	if len(exp.Inventory) > 0 {
		actual := make([]string, 0, len(gs.Inventory))
		for _, it := range gs.Inventory {
			actual = append(actual, it.ID)
		}
		if err := sameSet("inventory", exp.Inventory, actual); err != nil {
			return err
		}
	}

	if len(exp.Contacts) > 0 {
		actual := make([]string, 0, len(gs.Contacts))
		for _, id := range gs.Contacts {
			actual = append(actual, string(id))
		}
		if err := sameSet("contacts", exp.Contacts, actual); err != nil {
			return err
		}
	}

	for _, node := range exp.Unlocked {
		if !slices.Contains(gs.UnlockedMapNodes, story.Scene(node)) {
			return fmt.Errorf("expected map node %s to be unlocked. Unlocked: %v", node, gs.UnlockedMapNodes)
		}
	}

	ui := v.UI
	for _, name := range exp.OpenModals {
		m, err := state.ParseModal(name)
		if err != nil {
			return err
		}
		if !ui.IsOpen(m) {
			return fmt.Errorf("expected modal %s to be open", name)
		}
	}
	for _, name := range exp.ClosedModals {
		m, err := state.ParseModal(name)
		if err != nil {
			return err
		}
		if ui.IsOpen(m) {
			return fmt.Errorf("expected modal %s to be closed", name)
		}
	}

	if exp.VideoPhase != nil && ui.VideoPhase != *exp.VideoPhase {
		return fmt.Errorf("expected video_phase %d, got %d", *exp.VideoPhase, ui.VideoPhase)
	}

	if exp.IsDying != nil && ui.IsDying != *exp.IsDying {
		return fmt.Errorf("expected is_dying to be %t, got %t", *exp.IsDying, ui.IsDying)
	}

	return nil
}

// sameSet compares two lists ignoring order
func sameSet(field string, expected, actual []string) error {
	for _, want := range expected {
		if !slices.Contains(actual, want) {
			return fmt.Errorf("expected %s to contain '%s', but it's missing. Actual %s: %v", field, want, field, actual)
		}
	}
	for _, got := range actual {
		if !slices.Contains(expected, got) {
			return fmt.Errorf("%s contains unexpected '%s'. Expected %s: %v, Actual: %v", field, got, field, expected, actual)
		}
	}
	return nil
}
