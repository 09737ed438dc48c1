package sigmahq

import (
	"fmt"
	"strings"

	"github.com/markuskont/go-sigma-rule-lint/pkg/catalog"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate"
)

// ErrRegister is a bulk error for checks that could not be registered
// Checks that were built successfully are registered regardless
type ErrRegister struct {
	Failed []string
	Errs   []error
}

func (e ErrRegister) Error() string {
	return fmt.Sprintf("failed to register %d checks: %s", len(e.Failed), strings.Join(e.Failed, ", "))
}

type builder struct {
	id    string
	build func(*catalog.Catalog) (validate.Check, error)
}

func plain(id string, c validate.Check) builder {
	return builder{id: id, build: func(*catalog.Catalog) (validate.Check, error) { return c, nil }}
}

// builders lists every check in declaration order
// field level checks first, then rule metadata
func builders() []builder {
	return []builder{
		plain(IDSpaceFieldname, NewSpaceFieldname()),
		{id: IDFieldnameCast, build: func(c *catalog.Catalog) (validate.Check, error) { return NewFieldnameCast(c) }},
		{id: IDInvalidFieldname, build: func(c *catalog.Catalog) (validate.Check, error) { return NewInvalidFieldname(c) }},
		plain(IDInvalidAllModifier, NewInvalidAllModifier()),
		plain(IDFieldDuplicateValue, NewFieldDuplicateValue()),
		plain(IDFieldUser, NewFieldUser()),
		plain(IDStatusExistence, NewStatusExistence()),
		plain(IDStatus, NewStatus()),
		plain(IDDateExistence, NewDateExistence()),
		plain(IDDescriptionExistence, NewDescriptionExistence()),
		plain(IDDescriptionLength, NewDescriptionLength()),
		plain(IDLevelExistence, NewLevelExistence()),
		plain(IDFalsepositivesCapital, NewFalsepositivesCapital()),
		{id: IDFalsepositivesBannedWord, build: func(c *catalog.Catalog) (validate.Check, error) { return NewFalsepositivesBannedWord(c) }},
		{id: IDFalsepositivesTypoWord, build: func(c *catalog.Catalog) (validate.Check, error) { return NewFalsepositivesTypoWord(c) }},
		{id: IDLinkInDescription, build: func(c *catalog.Catalog) (validate.Check, error) { return NewLinkInDescription(c) }},
		plain(IDUnknownField, NewUnknownField()),
	}
}

// IDs returns every check id of the set in declaration order
func IDs() []string {
	b := builders()
	out := make([]string, len(b))
	for i, v := range b {
		out[i] = v.id
	}
	return out
}

// Register adds full SigmaHQ check set to registry
func Register(reg *validate.Registry, cat *catalog.Catalog) error {
	errs := ErrRegister{}
	for _, b := range builders() {
		c, err := b.build(cat)
		if err == nil {
			err = reg.Register(b.id, c)
		}
		if err != nil {
			errs.Failed = append(errs.Failed, b.id)
			errs.Errs = append(errs.Errs, err)
		}
	}
	if len(errs.Failed) > 0 {
		return errs
	}
	return nil
}
