package sigma

import (
	"fmt"
	"sort"
	"strings"
)

// DetectionItem is a single leaf of a search
// Selection map key with its values, or a keyword list when Field is empty
type DetectionItem struct {
	Field     string
	Modifiers Modifiers
	Value     []Value
}

// Keyword reports whether item matches free text rather than a named field
func (d DetectionItem) Keyword() bool { return d.Field == "" }

// Key rebuilds selection key as written in rule
func (d DetectionItem) Key() string {
	if len(d.Modifiers) == 0 {
		return d.Field
	}
	return d.Field + "|" + d.Modifiers.String()
}

// Walk implements Branch
func (d *DetectionItem) Walk(fn func(*DetectionItem)) { fn(d) }

// Search is a named search identifier from detection map, referenced by condition
type Search struct {
	Name string
	Root Branch
}

// Walk implements Branch
func (s *Search) Walk(fn func(*DetectionItem)) {
	if s.Root != nil {
		s.Root.Walk(fn)
	}
}

// Items returns detection items of the search in rule order
func (s *Search) Items() []*DetectionItem {
	out := make([]*DetectionItem, 0)
	s.Walk(func(d *DetectionItem) { out = append(out, d) })
	return out
}

type identType int

func (i identType) String() string {
	switch i {
	case identKeyword:
		return "KEYWORD"
	case identSelection:
		return "SELECTION"
	case identMixed:
		return "MIXED"
	default:
		return "UNK"
	}
}

const (
	identErr identType = iota
	identSelection
	identKeyword
	identMixed
)

func checkIdentType(data interface{}) identType {
	switch v := data.(type) {
	case map[string]interface{}, map[interface{}]interface{}:
		return identSelection
	case []interface{}:
		var maps, scalars int
		for _, item := range v {
			switch item.(type) {
			case map[string]interface{}, map[interface{}]interface{}:
				maps++
			case []interface{}:
				return identErr
			default:
				scalars++
			}
		}
		switch {
		case maps == 0:
			return identKeyword
		case scalars == 0:
			return identSelection
		default:
			return identMixed
		}
	case nil:
		return identErr
	default:
		return identKeyword
	}
}

func newSearch(name string, data interface{}) (*Search, error) {
	b, err := newSearchBranch(name, data)
	if err != nil {
		return nil, err
	}
	return &Search{Name: name, Root: b}, nil
}

func newSearchBranch(name string, data interface{}) (Branch, error) {
	switch checkIdentType(data) {
	case identKeyword:
		return newKeyword(data)
	case identSelection:
		return newSelectionBranch(name, data)
	case identMixed:
		// every list element is an alternative
		items := data.([]interface{})
		or := make(NodeSimpleOr, 0, len(items))
		for _, item := range items {
			b, err := newSearchBranch(name, item)
			if err != nil {
				return nil, err
			}
			or = append(or, b)
		}
		return or.Reduce(), nil
	default:
		return nil, ErrInvalidSelectionConstruct{
			Key:  name,
			Msg:  "Search should be a map, a list of maps or a list of scalars.",
			Expr: data,
		}
	}
}

func newKeyword(expr interface{}) (*DetectionItem, error) {
	var raw []interface{}
	switch v := expr.(type) {
	case []interface{}:
		raw = v
	default:
		raw = []interface{}{v}
	}
	if len(raw) == 0 {
		return nil, ErrInvalidKeywordConstruct{Msg: "Empty keyword list.", Expr: expr}
	}
	values, err := newValueList(raw)
	if err != nil {
		return nil, ErrInvalidKeywordConstruct{Msg: err.Error(), Expr: expr}
	}
	return &DetectionItem{Value: values}, nil
}

func newSelectionBranch(name string, expr interface{}) (Branch, error) {
	switch v := expr.(type) {
	case []interface{}:
		selections := make(NodeSimpleOr, 0, len(v))
		for _, item := range v {
			b, err := newSelectionBranch(name, item)
			if err != nil {
				return nil, err
			}
			selections = append(selections, b)
		}
		if len(selections) == 0 {
			return nil, ErrInvalidSelectionConstruct{Key: name, Msg: "Empty selection list.", Expr: expr}
		}
		return selections.Reduce(), nil
	case map[interface{}]interface{}:
		return newSelectionFromMap(name, cleanUpInterfaceMap(v))
	case map[string]interface{}:
		return newSelectionFromMap(name, v)
	default:
		return nil, ErrInvalidSelectionConstruct{Key: name, Msg: "Unsupported selection container.", Expr: expr}
	}
}

// newSelectionFromMap builds a conjunction of map entries
// keys are sorted, yaml map order is not preserved by decoder
func newSelectionFromMap(name string, expr map[string]interface{}) (Branch, error) {
	if len(expr) == 0 {
		return nil, ErrInvalidSelectionConstruct{Key: name, Msg: "Empty selection map.", Expr: expr}
	}
	keys := make([]string, 0, len(expr))
	for k := range expr {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	and := make(NodeSimpleAnd, 0, len(keys))
	for _, key := range keys {
		item, err := newDetectionItem(key, expr[key])
		if err != nil {
			return nil, err
		}
		and = append(and, item)
	}
	return and.Reduce(), nil
}

func newDetectionItem(key string, pattern interface{}) (*DetectionItem, error) {
	bits := strings.Split(key, "|")
	item := &DetectionItem{Field: bits[0]}
	if len(bits) > 1 {
		item.Modifiers = make(Modifiers, 0, len(bits)-1)
		for _, raw := range bits[1:] {
			mod, ok := ParseModifier(raw)
			if !ok {
				return nil, ErrUnknownModifier{Key: key, Modifier: raw}
			}
			item.Modifiers = append(item.Modifiers, mod)
		}
	}
	var raw []interface{}
	switch v := pattern.(type) {
	case []interface{}:
		raw = v
	default:
		raw = []interface{}{v}
	}
	values, err := newValueList(raw)
	if err != nil {
		return nil, ErrInvalidSelectionConstruct{Key: key, Msg: err.Error(), Expr: pattern}
	}
	item.Value = values
	return item, nil
}

func newValueList(raw []interface{}) ([]Value, error) {
	out := make([]Value, 0, len(raw))
	for i, v := range raw {
		val, ok := NewValue(v)
		if !ok {
			return nil, fmt.Errorf("value %d has unsupported type %s", i, typeName(v))
		}
		out = append(out, val)
	}
	return out, nil
}

// Yaml can have non-string keys, so go-yaml unmarshals to map[interface{}]interface{}
func cleanUpInterfaceMap(rx map[interface{}]interface{}) map[string]interface{} {
	tx := make(map[string]interface{})
	for k, v := range rx {
		tx[fmt.Sprintf("%v", k)] = v
	}
	return tx
}
