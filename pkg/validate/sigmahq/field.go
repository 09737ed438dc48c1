package sigmahq

import (
	"strings"

	sigma "github.com/markuskont/go-sigma-rule-lint"
	"github.com/markuskont/go-sigma-rule-lint/pkg/catalog"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate"
)

// SpaceFieldname reports field names with a space instead of an underscore
type SpaceFieldname struct{ check }

// NewSpaceFieldname creates the check
func NewSpaceFieldname() *SpaceFieldname {
	return &SpaceFieldname{check{
		id:          IDSpaceFieldname,
		description: "Rule uses a field name with a space instead of an underscore.",
		severity:    validate.SeverityHigh,
	}}
}

// CheckItem implements validate.ItemCheck
func (c SpaceFieldname) CheckItem(r *sigma.RuleHandle, d *sigma.DetectionItem) []validate.Issue {
	if d == nil || !strings.Contains(d.Field, " ") {
		return nil
	}
	i := c.issue(r)
	i.Field = d.Field
	return []validate.Issue{i}
}

// fieldLookup resolves rule logsource to catalog field set
// both field name checks share it, so they agree on which rules are applicable
type fieldLookup struct {
	catalog *catalog.Catalog
}

func (f fieldLookup) fields(r *sigma.RuleHandle) (catalog.FieldSet, bool) {
	if r == nil {
		return catalog.FieldSet{}, false
	}
	return f.catalog.Fields(catalog.KeyOf(r.Logsource))
}

// Applicable implements validate.ItemPrecondition
func (f fieldLookup) Applicable(r *sigma.RuleHandle) bool {
	_, ok := f.fields(r)
	return ok
}

// FieldnameCast reports field names that are known for logsource, but written with wrong case
type FieldnameCast struct {
	check
	fieldLookup
}

// NewFieldnameCast creates the check, catalog is required
func NewFieldnameCast(cat *catalog.Catalog) (*FieldnameCast, error) {
	if cat == nil {
		return nil, validate.ErrMissingCatalog{ID: IDFieldnameCast}
	}
	return &FieldnameCast{
		check: check{
			id:          IDFieldnameCast,
			description: "A field name has a cast error.",
			severity:    validate.SeverityHigh,
		},
		fieldLookup: fieldLookup{catalog: cat},
	}, nil
}

// CheckItem implements validate.ItemCheck
func (c FieldnameCast) CheckItem(r *sigma.RuleHandle, d *sigma.DetectionItem) []validate.Issue {
	if d == nil || d.Keyword() {
		return nil
	}
	fs, ok := c.fields(r)
	if !ok {
		return nil
	}
	if fs.HasFold(d.Field) && !fs.Has(d.Field) {
		i := c.issue(r)
		i.Field = d.Field
		return []validate.Issue{i}
	}
	return nil
}

// InvalidFieldname reports field names that do not exist in logsource
type InvalidFieldname struct {
	check
	fieldLookup
}

// NewInvalidFieldname creates the check, catalog is required
func NewInvalidFieldname(cat *catalog.Catalog) (*InvalidFieldname, error) {
	if cat == nil {
		return nil, validate.ErrMissingCatalog{ID: IDInvalidFieldname}
	}
	return &InvalidFieldname{
		check: check{
			id:          IDInvalidFieldname,
			description: "A field name does not exist in the logsource.",
			severity:    validate.SeverityHigh,
		},
		fieldLookup: fieldLookup{catalog: cat},
	}, nil
}

// CheckItem implements validate.ItemCheck
func (c InvalidFieldname) CheckItem(r *sigma.RuleHandle, d *sigma.DetectionItem) []validate.Issue {
	if d == nil || d.Keyword() {
		return nil
	}
	fs, ok := c.fields(r)
	if !ok {
		return nil
	}
	if !fs.HasFold(d.Field) {
		i := c.issue(r)
		i.Field = d.Field
		return []validate.Issue{i}
	}
	return nil
}

// InvalidAllModifier reports all modifier used with a single value
type InvalidAllModifier struct{ check }

// NewInvalidAllModifier creates the check
func NewInvalidAllModifier() *InvalidAllModifier {
	return &InvalidAllModifier{check{
		id:          IDInvalidAllModifier,
		description: "All modifier without a list of values.",
		severity:    validate.SeverityHigh,
	}}
}

// CheckItem implements validate.ItemCheck
func (c InvalidAllModifier) CheckItem(r *sigma.RuleHandle, d *sigma.DetectionItem) []validate.Issue {
	if d == nil || !d.Modifiers.Has(sigma.ModAll) || len(d.Value) >= 2 {
		return nil
	}
	i := c.issue(r)
	i.Field = d.Field
	return []validate.Issue{i}
}

// FieldDuplicateValue reports the first repeated value in a value list
type FieldDuplicateValue struct{ check }

// NewFieldDuplicateValue creates the check
func NewFieldDuplicateValue() *FieldDuplicateValue {
	return &FieldDuplicateValue{check{
		id:          IDFieldDuplicateValue,
		description: "Field list value has a duplicate item.",
		severity:    validate.SeverityHigh,
	}}
}

// CheckItem implements validate.ItemCheck
func (c FieldDuplicateValue) CheckItem(r *sigma.RuleHandle, d *sigma.DetectionItem) []validate.Issue {
	if d == nil || len(d.Value) < 2 {
		return nil
	}
	dup, ok := firstDuplicate(d.Value, d.Modifiers.CaseSensitive())
	if !ok {
		return nil
	}
	i := c.issue(r)
	i.Field = d.Field
	i.Value = dup.String()
	return []validate.Issue{i}
}

// firstDuplicate returns the first value that was already seen
// case sensitive comparison also distinguishes value kinds
func firstDuplicate(values []sigma.Value, caseSensitive bool) (sigma.Value, bool) {
	if caseSensitive {
		seen := make([]sigma.Value, 0, len(values))
		for _, v := range values {
			for _, s := range seen {
				if v.Same(s) {
					return v, true
				}
			}
			seen = append(seen, v)
		}
		return sigma.Value{}, false
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(v.Canonical())
		if _, ok := seen[key]; ok {
			return v, true
		}
		seen[key] = struct{}{}
	}
	return sigma.Value{}, false
}

// FieldUser reports user fields matched against a localized account name
type FieldUser struct{ check }

// NewFieldUser creates the check
func NewFieldUser() *FieldUser {
	return &FieldUser{check{
		id:          IDFieldUser,
		description: "User field has a localized name.",
		severity:    validate.SeverityHigh,
	}}
}

// localized fragments of NT AUTHORITY
var userLocalized = []string{"AUTORI", "AUTHORI"}

// CheckItem implements validate.ItemCheck
func (c FieldUser) CheckItem(r *sigma.RuleHandle, d *sigma.DetectionItem) []validate.Issue {
	if d == nil || d.Keyword() || len(d.Value) != 1 {
		return nil
	}
	if !strings.Contains(strings.ToLower(d.Field), "user") {
		return nil
	}
	user := d.Value[0].String()
	for _, frag := range userLocalized {
		if strings.Contains(user, frag) {
			i := c.issue(r)
			i.Field = d.Field
			i.User = user
			return []validate.Issue{i}
		}
	}
	return nil
}
