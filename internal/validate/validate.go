// Package validate checks a built warehouse for referential integrity and
// business-rule drift.
//
// Rules live in a Registry and are evaluated uniformly into a Report. The
// validator never fails a run: findings are data for the caller to act on.
package validate

import (
	"fmt"
	"slices"

	"elt/internal/config"
	"elt/internal/warehouse"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Thresholds holds the heuristic bounds used by the business rules.
type Thresholds struct {
	// Tolerance is the absolute slack for money and volume comparisons.
	Tolerance float64
	// PaymentMinRatio and PaymentMaxMultiple bound an order's payment value
	// relative to an item's total value.
	PaymentMinRatio    float64
	PaymentMaxMultiple float64
	// ReviewMinDays is the earliest accepted days_to_review.
	ReviewMinDays int
}

// DefaultThresholds returns the stock bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Tolerance:          0.01,
		PaymentMinRatio:    0.1,
		PaymentMaxMultiple: 20,
		ReviewMinDays:      -1,
	}
}

// ThresholdsFromConfig overlays non-zero configured values onto the
// defaults. ReviewMinDays is a pointer in config because zero is a valid
// bound.
func ThresholdsFromConfig(v config.Validation) Thresholds {
	th := DefaultThresholds()
	if v.Tolerance > 0 {
		th.Tolerance = v.Tolerance
	}
	if v.PaymentMinRatio > 0 {
		th.PaymentMinRatio = v.PaymentMinRatio
	}
	if v.PaymentMaxMultiple > 0 {
		th.PaymentMaxMultiple = v.PaymentMaxMultiple
	}
	if v.ReviewMinDays != nil {
		th.ReviewMinDays = *v.ReviewMinDays
	}
	return th
}

// Result is what a rule check returns. Severity, when set, overrides the
// rule's default for this run.
type Result struct {
	Failing  int
	Severity Severity
	Details  []string
}

// Rule is a named predicate over the warehouse.
type Rule struct {
	Name        string
	Description string
	Severity    Severity
	Check       func(w *warehouse.Warehouse, th Thresholds) Result
}

// Finding is the outcome of one rule.
type Finding struct {
	Rule        string   `json:"rule"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Failing     int      `json:"failing_rows"`
	Passed      bool     `json:"passed"`
	Details     []string `json:"details,omitempty"`
}

// Report collects every finding. Passed is false when any error-severity
// rule failed; failing warnings do not affect it.
type Report struct {
	Findings []Finding `json:"findings"`
	Passed   bool      `json:"passed"`
	Errors   int       `json:"errors"`
	Warnings int       `json:"warnings"`
}

// Failed returns the findings that did not pass.
func (r Report) Failed() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Passed {
			out = append(out, f)
		}
	}
	return out
}

// Registry is an ordered set of rules with unique names.
type Registry struct {
	rules []Rule
	names map[string]struct{}
}

func NewRegistry() *Registry { return &Registry{names: make(map[string]struct{})} }

// Register adds r. Names must be unique.
func (reg *Registry) Register(r Rule) error {
	if r.Name == "" || r.Check == nil {
		return fmt.Errorf("validate: rule needs a name and a check")
	}
	if _, dup := reg.names[r.Name]; dup {
		return fmt.Errorf("validate: duplicate rule %q", r.Name)
	}
	if r.Severity == "" {
		r.Severity = SeverityError
	}
	reg.names[r.Name] = struct{}{}
	reg.rules = append(reg.rules, r)
	return nil
}

// Rules returns the registered rule names in registration order.
func (reg *Registry) Rules() []string {
	out := make([]string, len(reg.rules))
	for i, r := range reg.rules {
		out[i] = r.Name
	}
	return out
}

// Run evaluates every rule independently.
func (reg *Registry) Run(w *warehouse.Warehouse, th Thresholds) Report {
	rep := Report{Passed: true, Findings: make([]Finding, 0, len(reg.rules))}
	for _, r := range reg.rules {
		res := r.Check(w, th)
		f := Finding{
			Rule:        r.Name,
			Description: r.Description,
			Severity:    r.Severity,
			Failing:     res.Failing,
			Passed:      res.Failing == 0,
			Details:     res.Details,
		}
		if res.Severity != "" {
			f.Severity = res.Severity
		}
		if !f.Passed {
			switch f.Severity {
			case SeverityError:
				rep.Errors++
				rep.Passed = false
			default:
				rep.Warnings++
			}
		}
		rep.Findings = append(rep.Findings, f)
	}
	return rep
}

// maxDetails caps sample values listed per finding.
const maxDetails = 10

// sample returns up to maxDetails sorted distinct values.
func sample(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	slices.Sort(out)
	if len(out) > maxDetails {
		out = append(out[:maxDetails], fmt.Sprintf("... and %d more", len(values)-maxDetails))
	}
	return out
}
