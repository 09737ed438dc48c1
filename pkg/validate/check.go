package validate

import (
	sigma "github.com/markuskont/go-sigma-rule-lint"
)

// Check is the common part of every lint check
type Check interface {
	// Description is a fixed human readable explanation of the issue
	Description() string
	// Severity is fixed per check
	Severity() Severity
}

// RuleCheck inspects rule metadata and is invoked once per rule
type RuleCheck interface {
	Check
	CheckRule(*sigma.RuleHandle) []Issue
}

// ItemCheck inspects a single detection item and is invoked once per item
type ItemCheck interface {
	Check
	CheckItem(*sigma.RuleHandle, *sigma.DetectionItem) []Issue
}

// ItemPrecondition can be implemented by an ItemCheck to skip all items of a rule
// For example, when rule logsource is not known
type ItemPrecondition interface {
	Applicable(*sigma.RuleHandle) bool
}
