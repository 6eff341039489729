package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oryxcli/oryx/internal/tools"
)

// ValidationError rejects a plan with a message that is byte-identical
// for identical input. Callers rely on that for stable tests and logs.
type ValidationError struct {
	PlanID  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan %s rejected: %s", e.PlanID, e.Message)
}

// Validate is the strict pass over an interpreted plan. It rejects
// unknown tools, steps missing required arguments, and failed
// preconditions. Precondition checks are pure reads; nothing here has
// side effects. Steps are checked in order and arguments in sorted key
// order, which keeps the rejection message deterministic.
func Validate(p *Plan, catalog *tools.Catalog, checker *tools.Checker) error {
	for _, step := range p.Steps {
		if err := checkWhitelist(p.PlanID, step, catalog); err != nil {
			return err
		}
		if err := checkArguments(p.PlanID, step, catalog); err != nil {
			return err
		}
		if err := checkPreconditions(p.PlanID, step, catalog, checker); err != nil {
			return err
		}
	}
	return nil
}

// Screen is the gate-independent subset of Validate: whitelist
// membership and preconditions only. A gated call is screened before
// the loop pauses on it, so an approval request never names an unknown
// tool or an impossible target; argument completeness is judged by the
// full Validate pass once the gate is settled.
func Screen(p *Plan, catalog *tools.Catalog, checker *tools.Checker) error {
	for _, step := range p.Steps {
		if err := checkWhitelist(p.PlanID, step, catalog); err != nil {
			return err
		}
		if err := checkPreconditions(p.PlanID, step, catalog, checker); err != nil {
			return err
		}
	}
	return nil
}

func checkWhitelist(planID string, step Step, catalog *tools.Catalog) error {
	if !catalog.Allowed(step.Tool) {
		return &ValidationError{
			PlanID:  planID,
			Message: fmt.Sprintf("step %s uses unknown tool %q", step.StepID, step.Tool),
		}
	}
	return nil
}

func checkArguments(planID string, step Step, catalog *tools.Catalog) error {
	var missing []string
	for _, arg := range catalog.RequiredArgs(step.Tool) {
		if strings.TrimSpace(step.Arguments[arg]) == "" {
			missing = append(missing, arg)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{
			PlanID: planID,
			Message: fmt.Sprintf("step %s (%s) is missing required argument(s): %s",
				step.StepID, step.Tool, strings.Join(missing, ", ")),
		}
	}
	return nil
}

func checkPreconditions(planID string, step Step, catalog *tools.Catalog, checker *tools.Checker) error {
	for _, name := range preconditionsForStep(step, catalog) {
		if err := checker.Check(name, step.Arguments); err != nil {
			return &ValidationError{
				PlanID:  planID,
				Message: fmt.Sprintf("step %s (%s): %v", step.StepID, step.Tool, err),
			}
		}
	}
	return nil
}

// preconditionsForStep merges the catalog's preconditions for the tool
// with the step's own declared precondition, deduplicated, in sorted
// order.
func preconditionsForStep(step Step, catalog *tools.Catalog) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range catalog.PreconditionsFor(step.Tool) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if step.Precondition != "" && !seen[step.Precondition] {
		names = append(names, step.Precondition)
	}
	sort.Strings(names)
	return names
}
