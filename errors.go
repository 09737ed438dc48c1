package sigma

import (
	"fmt"
	"reflect"
)

// ErrMissingDetection indicates missing detection field
type ErrMissingDetection struct{}

func (e ErrMissingDetection) Error() string { return "sigma rule is missing detection field" }

// ErrMissingConditionItem indicates that identifier in condition is missing in detection map
type ErrMissingConditionItem struct {
	Key string
}

func (e ErrMissingConditionItem) Error() string {
	return fmt.Sprintf("missing condition identifier %s", e.Key)
}

// ErrEmptyDetection indicates detection field present but has no search identifiers
type ErrEmptyDetection struct{}

func (e ErrEmptyDetection) Error() string { return "sigma rule has detection but is empty" }

// ErrMissingCondition indicates missing condition field
type ErrMissingCondition struct{}

func (e ErrMissingCondition) Error() string { return "sigma rule is missing condition" }

// ErrUnsupportedToken is a parser error indicating lexical token that is not yet supported
// Meant to be used as informational warning, rather than application breaking error
type ErrUnsupportedToken struct{ Msg string }

func (e ErrUnsupportedToken) Error() string { return fmt.Sprintf("UNSUPPORTED TOKEN: %s", e.Msg) }

// ErrParseYaml indicates YAML parsing error
type ErrParseYaml struct {
	Path  string
	Err   error
	Count int
}

func (e ErrParseYaml) Error() string {
	return fmt.Sprintf("%d - File: %s; Err: %s", e.Count, e.Path, e.Err)
}

// ErrBulkParseYaml is a bulk error handler for dealing with broken sigma rules
// Some rules are bound to fail, no reason to exit entire application
// Individual errors can be collected and returned at the end
// Caller decides if they should be only reported or it warrants full exit
type ErrBulkParseYaml struct {
	Errs []ErrParseYaml
}

func (e ErrBulkParseYaml) Error() string {
	return fmt.Sprintf("got %d broken yaml files", len(e.Errs))
}

// ErrInvalidTokenSeq indicates expression syntax error from rule writer
// For example, two indents should be separated by a logical AND / OR operator
type ErrInvalidTokenSeq struct {
	Prev, Next Item
	Collected  []Item
}

func (e ErrInvalidTokenSeq) Error() string {
	return fmt.Sprintf(`seq error after collecting %d elements.`+
		` Invalid token sequence %s -> %s. Values: %s -> %s.`,
		len(e.Collected), e.Prev.T, e.Next.T, e.Prev.Val, e.Next.Val)
}

// ErrIncompleteTokenSeq is invoked when lex channel drain does not end with EOF
// thus indicating incomplete lexing sequence
type ErrIncompleteTokenSeq struct {
	Expression string
	Items      []Item
	Last       Item
}

func (e ErrIncompleteTokenSeq) Error() string {
	return fmt.Sprintf("last element should be EOF, got token %s with value %s",
		e.Last.T.String(), e.Last.Val)
}

// ErrInvalidKeywordConstruct indicates that parser found a keyword expression
// that did not match any known keyword rule structure
// could be unmarshal issue
type ErrInvalidKeywordConstruct struct {
	Msg  string
	Expr interface{}
}

func (e ErrInvalidKeywordConstruct) Error() string {
	return fmt.Sprintf(`invalid type for parsing keyword expression. `+
		`Should be a scalar or a list of scalars. %s Got |%+v| with type |%s|`,
		e.Msg, e.Expr, typeName(e.Expr))
}

// ErrInvalidSelectionConstruct indicates that parser found a selection expression
// that did not match any known selection rule structure
// could be unmarshal issue
type ErrInvalidSelectionConstruct struct {
	Key  string
	Msg  string
	Expr interface{}
}

func (e ErrInvalidSelectionConstruct) Error() string {
	return fmt.Sprintf("invalid type for parsing selection %s. %s Got |%+v| with type |%s|",
		e.Key, e.Msg, e.Expr, typeName(e.Expr))
}

// ErrUnknownModifier indicates a value modifier in selection key that sigma does not define
type ErrUnknownModifier struct {
	Key, Modifier string
}

func (e ErrUnknownModifier) Error() string {
	return fmt.Sprintf("selection key %s has unknown modifier %s", e.Key, e.Modifier)
}

// ErrInvalidStatus indicates status field value outside of the defined set
type ErrInvalidStatus struct{ Value string }

func (e ErrInvalidStatus) Error() string { return fmt.Sprintf("invalid rule status %s", e.Value) }

// ErrInvalidLevel indicates level field value outside of the defined set
type ErrInvalidLevel struct{ Value string }

func (e ErrInvalidLevel) Error() string { return fmt.Sprintf("invalid rule level %s", e.Value) }

func typeName(v interface{}) string {
	if t := reflect.TypeOf(v); t != nil {
		return t.String()
	}
	return "nil"
}

// ErrParseTree indicates that rule yaml was fine, but detection could not be parsed
type ErrParseTree struct {
	Path string
	Err  error
}

func (e ErrParseTree) Error() string {
	return fmt.Sprintf("File: %s; Err: %s", e.Path, e.Err)
}
