package validate

import (
	"fmt"
	"sort"
	"strings"

	sigma "github.com/markuskont/go-sigma-rule-lint"
)

// Issue is a single reported convention violation
// Optional fields are only set by checks that report them
type Issue struct {
	Rule *sigma.RuleHandle `json:"-"`

	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`

	Field      string   `json:"field,omitempty"`
	Value      string   `json:"value,omitempty"`
	User       string   `json:"user,omitempty"`
	Word       string   `json:"word,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// NewIssue fills common fields from check
func NewIssue(kind string, c Check, r *sigma.RuleHandle) Issue {
	return Issue{
		Rule:        r,
		Kind:        kind,
		Description: c.Description(),
		Severity:    c.Severity(),
	}
}

func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", i.Severity, i.Kind, i.Description)
	for _, kv := range [][2]string{
		{"field", i.Field},
		{"value", i.Value},
		{"user", i.User},
		{"word", i.Word},
		{"attributes", strings.Join(i.Attributes, ",")},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, " %s=%q", kv[0], kv[1])
		}
	}
	return b.String()
}

// Issues is an ordered issue sequence
type Issues []Issue

// Filter keeps issues at or above min severity, input order is kept
func (is Issues) Filter(min Severity) Issues {
	out := make(Issues, 0, len(is))
	for _, i := range is {
		if i.Severity >= min {
			out = append(out, i)
		}
	}
	return out
}

// Sort orders by severity, most severe first, then by kind
// Issues that compare equal keep their relative order
func (is Issues) Sort() {
	sort.SliceStable(is, func(a, b int) bool {
		if is[a].Severity != is[b].Severity {
			return is[a].Severity > is[b].Severity
		}
		return is[a].Kind < is[b].Kind
	})
}

// Count returns number of issues per severity
func (is Issues) Count() map[Severity]int {
	out := make(map[Severity]int)
	for _, i := range is {
		out[i.Severity]++
	}
	return out
}
