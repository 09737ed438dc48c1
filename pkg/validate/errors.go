package validate

import "fmt"

// ErrUnknownCheck indicates that selection refers to a check that was never registered
type ErrUnknownCheck struct{ ID string }

func (e ErrUnknownCheck) Error() string { return fmt.Sprintf("unknown check %s", e.ID) }

// ErrDuplicateCheck indicates a second registration under the same id
type ErrDuplicateCheck struct{ ID string }

func (e ErrDuplicateCheck) Error() string { return fmt.Sprintf("check %s already registered", e.ID) }

// ErrInvalidCheck indicates that registered value implements neither RuleCheck nor ItemCheck
// or that registration id is empty
type ErrInvalidCheck struct {
	ID  string
	Msg string
}

func (e ErrInvalidCheck) Error() string { return fmt.Sprintf("invalid check %s: %s", e.ID, e.Msg) }

// ErrMissingCatalog is returned when a check that needs convention catalog is built without one
type ErrMissingCatalog struct{ ID string }

func (e ErrMissingCatalog) Error() string {
	return fmt.Sprintf("check %s requires a convention catalog", e.ID)
}

// ErrInvalidSeverity indicates unknown severity name
type ErrInvalidSeverity struct{ Value string }

func (e ErrInvalidSeverity) Error() string { return fmt.Sprintf("invalid severity %s", e.Value) }
