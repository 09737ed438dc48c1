// Package sigmahq implements SigmaHQ rule conventions as lint checks
package sigmahq

import (
	sigma "github.com/markuskont/go-sigma-rule-lint"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate"
)

// Check ids, stable across releases
const (
	IDSpaceFieldname           = "sigmahq_space_fieldname"
	IDFieldnameCast            = "sigmahq_fieldname_cast"
	IDInvalidFieldname         = "sigmahq_invalid_fieldname"
	IDInvalidAllModifier       = "sigmahq_invalid_all_modifier"
	IDFieldDuplicateValue      = "sigmahq_field_duplicate_value"
	IDFieldUser                = "sigmahq_field_user"
	IDStatusExistence          = "sigmahq_status_existence"
	IDStatus                   = "sigmahq_status"
	IDDateExistence            = "sigmahq_date_existence"
	IDDescriptionExistence     = "sigmahq_description_existence"
	IDDescriptionLength        = "sigmahq_description_length"
	IDLevelExistence           = "sigmahq_level_existence"
	IDFalsepositivesCapital    = "sigmahq_falsepositives_capital"
	IDFalsepositivesBannedWord = "sigmahq_falsepositives_banned_word"
	IDFalsepositivesTypoWord   = "sigmahq_falsepositives_typo_word"
	IDLinkInDescription        = "sigmahq_link_in_description"
	IDUnknownField             = "sigmahq_unknown_field"
)

// check carries fixed metadata shared by every check implementation
type check struct {
	id          string
	description string
	severity    validate.Severity
}

// ID returns stable check id, also used as issue kind
func (c check) ID() string { return c.id }

// Description implements validate.Check
func (c check) Description() string { return c.description }

// Severity implements validate.Check
func (c check) Severity() validate.Severity { return c.severity }

func (c check) issue(r *sigma.RuleHandle) validate.Issue {
	return validate.NewIssue(c.id, c, r)
}
