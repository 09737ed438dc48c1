package validate

import (
	"sync"

	sigma "github.com/markuskont/go-sigma-rule-lint"
)

// Validator applies an ordered set of checks to parsed rules
// It holds no mutable state and can be shared between goroutines
type Validator struct {
	checks []Check
}

// NewValidator keeps checks in given order
// Values that implement neither RuleCheck nor ItemCheck are never invoked
func NewValidator(checks ...Check) *Validator {
	return &Validator{checks: append([]Check(nil), checks...)}
}

// Validate runs every check over rule, in check order
// Rule checks are invoked once, item checks once per detection item
func (v *Validator) Validate(t *sigma.Tree) Issues {
	if t == nil {
		return Issues{}
	}
	items := t.DetectionItems()
	out := make(Issues, 0)
	for _, c := range v.checks {
		if rc, ok := c.(RuleCheck); ok {
			out = append(out, rc.CheckRule(t.Rule)...)
		}
		ic, ok := c.(ItemCheck)
		if !ok {
			continue
		}
		if pre, ok := c.(ItemPrecondition); ok && !pre.Applicable(t.Rule) {
			continue
		}
		for _, item := range items {
			out = append(out, ic.CheckItem(t.Rule, item)...)
		}
	}
	return out
}

// Result pairs a rule with issues found in it
type Result struct {
	Tree   *sigma.Tree
	Issues Issues
}

// ValidateAll validates rules in parallel, one rule per worker at a time
// Results are in the same order as input
func (v *Validator) ValidateAll(trees []*sigma.Tree, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(trees))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = Result{Tree: trees[i], Issues: v.Validate(trees[i])}
			}
		}()
	}
	for i := range trees {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
