package sigmahq

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sigma "github.com/markuskont/go-sigma-rule-lint"
	"github.com/markuskont/go-sigma-rule-lint/pkg/catalog"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate"
)

// minDescriptionLength is counted in characters, not bytes
const minDescriptionLength = 16

// StatusExistence reports rules without status
type StatusExistence struct{ check }

// NewStatusExistence creates the check
func NewStatusExistence() *StatusExistence {
	return &StatusExistence{check{
		id:          IDStatusExistence,
		description: "Rule is missing the status field.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c StatusExistence) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil || r.Status != sigma.StatusNone {
		return nil
	}
	return []validate.Issue{c.issue(r)}
}

// Status reports deprecated and unsupported rules
// Folder placement is not known here, so these are always reported
type Status struct{ check }

// NewStatus creates the check
func NewStatus() *Status {
	return &Status{check{
		id: IDStatus,
		description: "Rule uses a status field with either Deprecated or Unsupported values, " +
			"and it is not located in the appropriate folder.",
		severity: validate.SeverityHigh,
	}}
}

// CheckRule implements validate.RuleCheck
func (c Status) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil {
		return nil
	}
	switch r.Status {
	case sigma.StatusDeprecated, sigma.StatusUnsupported:
		return []validate.Issue{c.issue(r)}
	}
	return nil
}

// DateExistence reports rules without date
type DateExistence struct{ check }

// NewDateExistence creates the check
func NewDateExistence() *DateExistence {
	return &DateExistence{check{
		id:          IDDateExistence,
		description: "Rule is missing the date field.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c DateExistence) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil || r.Date != "" {
		return nil
	}
	return []validate.Issue{c.issue(r)}
}

// DescriptionExistence reports rules without description
type DescriptionExistence struct{ check }

// NewDescriptionExistence creates the check
func NewDescriptionExistence() *DescriptionExistence {
	return &DescriptionExistence{check{
		id:          IDDescriptionExistence,
		description: "Rule is missing the description field.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c DescriptionExistence) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil || r.Description != nil {
		return nil
	}
	return []validate.Issue{c.issue(r)}
}

// DescriptionLength reports overly brief descriptions
// Missing description is left to DescriptionExistence
type DescriptionLength struct{ check }

// NewDescriptionLength creates the check
func NewDescriptionLength() *DescriptionLength {
	return &DescriptionLength{check{
		id:          IDDescriptionLength,
		description: "Rule has an overly brief description.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c DescriptionLength) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil || r.Description == nil {
		return nil
	}
	if utf8.RuneCountInString(*r.Description) < minDescriptionLength {
		return []validate.Issue{c.issue(r)}
	}
	return nil
}

// LevelExistence reports rules without level
type LevelExistence struct{ check }

// NewLevelExistence creates the check
func NewLevelExistence() *LevelExistence {
	return &LevelExistence{check{
		id:          IDLevelExistence,
		description: "Rule is missing the level field.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c LevelExistence) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil || r.Level != sigma.LevelNone {
		return nil
	}
	return []validate.Issue{c.issue(r)}
}

// FalsepositivesCapital reports false positive entries that start with a lowercase letter
type FalsepositivesCapital struct{ check }

// NewFalsepositivesCapital creates the check
func NewFalsepositivesCapital() *FalsepositivesCapital {
	return &FalsepositivesCapital{check{
		id:          IDFalsepositivesCapital,
		description: "Rule contains a falsepositive entry that doesn't start with a capital letter.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c FalsepositivesCapital) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil {
		return nil
	}
	out := make([]validate.Issue, 0)
	for _, fp := range r.Falsepositives {
		first, _ := utf8.DecodeRuneInString(fp)
		if fp == "" || unicode.ToUpper(first) == first {
			continue
		}
		i := c.issue(r)
		// only the first word
		i.Word = strings.SplitN(fp, " ", 2)[0]
		out = append(out, i)
	}
	return out
}

// wordCheck applies a catalog word predicate to every space separated false positive token
type wordCheck struct {
	check
	match func(string) bool
}

// CheckRule implements validate.RuleCheck
func (c wordCheck) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil {
		return nil
	}
	out := make([]validate.Issue, 0)
	for _, fp := range r.Falsepositives {
		for _, word := range strings.Split(fp, " ") {
			if c.match(word) {
				i := c.issue(r)
				i.Word = word
				out = append(out, i)
			}
		}
	}
	return out
}

// FalsepositivesBannedWord reports false positive tokens that are on banned list
type FalsepositivesBannedWord struct{ wordCheck }

// NewFalsepositivesBannedWord creates the check, catalog is required
func NewFalsepositivesBannedWord(cat *catalog.Catalog) (*FalsepositivesBannedWord, error) {
	if cat == nil {
		return nil, validate.ErrMissingCatalog{ID: IDFalsepositivesBannedWord}
	}
	return &FalsepositivesBannedWord{wordCheck{
		check: check{
			id:          IDFalsepositivesBannedWord,
			description: "Rule defines a falsepositive entry that is part of the banned words list.",
			severity:    validate.SeverityMedium,
		},
		match: cat.IsBanned,
	}}, nil
}

// FalsepositivesTypoWord reports false positive tokens that look like a common typo
type FalsepositivesTypoWord struct{ wordCheck }

// NewFalsepositivesTypoWord creates the check, catalog is required
func NewFalsepositivesTypoWord(cat *catalog.Catalog) (*FalsepositivesTypoWord, error) {
	if cat == nil {
		return nil, validate.ErrMissingCatalog{ID: IDFalsepositivesTypoWord}
	}
	return &FalsepositivesTypoWord{wordCheck{
		check: check{
			id:          IDFalsepositivesTypoWord,
			description: "Rule contains a falsepositive entry with a common typo.",
			severity:    validate.SeverityMedium,
		},
		match: cat.TypoMatch,
	}}, nil
}

// LinkInDescription reports hyperlinks in description when references are empty
type LinkInDescription struct {
	check
	markers []string
}

// NewLinkInDescription creates the check, catalog is required
func NewLinkInDescription(cat *catalog.Catalog) (*LinkInDescription, error) {
	if cat == nil {
		return nil, validate.ErrMissingCatalog{ID: IDLinkInDescription}
	}
	return &LinkInDescription{
		check: check{
			id: IDLinkInDescription,
			description: "Rule has a description field that contains a reference to a hyperlink. " +
				"All hyperlinks are reserved for the references field.",
			severity: validate.SeverityMedium,
		},
		markers: cat.LinkMarkers(),
	}, nil
}

// CheckRule implements validate.RuleCheck
func (c LinkInDescription) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil || r.Description == nil || *r.Description == "" || len(r.References) > 0 {
		return nil
	}
	desc := strings.ToLower(*r.Description)
	for _, m := range c.markers {
		if strings.Contains(desc, m) {
			return []validate.Issue{c.issue(r)}
		}
	}
	return nil
}

// UnknownField reports top-level rule attributes that are not part of sigma specification
type UnknownField struct{ check }

// NewUnknownField creates the check
func NewUnknownField() *UnknownField {
	return &UnknownField{check{
		id:          IDUnknownField,
		description: "Rule uses an unknown field.",
		severity:    validate.SeverityMedium,
	}}
}

// CheckRule implements validate.RuleCheck
func (c UnknownField) CheckRule(r *sigma.RuleHandle) []validate.Issue {
	if r == nil {
		return nil
	}
	names := r.CustomAttributeNames()
	if len(names) == 0 {
		return nil
	}
	i := c.issue(r)
	i.Attributes = names
	return []validate.Issue{i}
}
