// Package release drives the release pipeline: cutting a release branch
// with a manifest version bump, then merging, tagging, pushing, and
// publishing. Steps run strictly in order and the pipeline halts on the
// first failure; completed steps are never rolled back.
package release

import (
	"context"
	"fmt"
	"strings"
)

// Step is one named unit of pipeline work.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// StepResult records the outcome of an executed step.
type StepResult struct {
	Name string
	Err  error
}

// runSteps executes steps in order, halting on the first failure. The
// observer, when non-nil, is notified as each step starts.
//
// The returned results cover exactly the steps that ran; a step after a
// failed one never starts. The error, if any, belongs to the last result
// and is wrapped with the step name so callers can identify where the
// pipeline stopped.
func runSteps(ctx context.Context, steps []Step, observe func(name string)) ([]StepResult, error) {
	var results []StepResult
	for _, step := range steps {
		if observe != nil {
			observe(step.Name)
		}
		err := step.Run(ctx)
		results = append(results, StepResult{Name: step.Name, Err: err})
		if err != nil {
			return results, fmt.Errorf("step %s: %w", step.Name, err)
		}
	}
	return results, nil
}

// Report describes a pipeline run: the identifiers it operated on and the
// outcome of every step that started. On failure the report still lists
// the completed steps so a human can decide what remains to be done.
type Report struct {
	Version string
	Branch  string
	Tag     string
	Steps   []StepResult
}

// Failed returns the failed step, or nil if every step succeeded.
func (r *Report) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Err != nil {
			return &r.Steps[i]
		}
	}
	return nil
}

// Summary renders a human-readable per-step outcome listing.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, step := range r.Steps {
		if step.Err != nil {
			fmt.Fprintf(&b, "FAIL %s: %v\n", step.Name, step.Err)
		} else {
			fmt.Fprintf(&b, "ok   %s\n", step.Name)
		}
	}
	return b.String()
}
