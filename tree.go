package sigma

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Tree represents the parsed detection block of a sigma rule
type Tree struct {
	// Condition is the logical expression over searches
	// multiple condition expressions are joined by logical disjunction
	Condition Branch
	// Detections holds every named search, sorted by name
	Detections []*Search

	Rule *RuleHandle
}

// DetectionItems returns every detection item of the rule exactly once
// Searches are visited in name order, items inside a search in rule order
// Condition is not consulted, so searches referenced multiple times or not at all are included once
func (t *Tree) DetectionItems() []*DetectionItem {
	if t == nil {
		return nil
	}
	out := make([]*DetectionItem, 0)
	for _, s := range t.Detections {
		s.Walk(func(d *DetectionItem) { out = append(out, d) })
	}
	return out
}

// Search looks up a named search
func (t *Tree) Search(name string) (*Search, bool) {
	if t == nil {
		return nil, false
	}
	i := sort.Search(len(t.Detections), func(i int) bool { return t.Detections[i].Name >= name })
	if i < len(t.Detections) && t.Detections[i].Name == name {
		return t.Detections[i], true
	}
	return nil, false
}

// NewTree parses rule handle into an abstract syntax tree
func NewTree(r RuleHandle) (*Tree, error) {
	if r.Detection == nil {
		return nil, ErrMissingDetection{}
	}
	raw := r.Detection.Extract()
	if len(raw) == 0 {
		return nil, ErrEmptyDetection{}
	}
	conditions, err := r.Detection.Conditions()
	if err != nil {
		return nil, err
	}

	idx, err := newSearchIndex(raw)
	if err != nil {
		return nil, err
	}

	branches := make(NodeSimpleOr, 0, len(conditions))
	for _, expr := range conditions {
		p := &parser{
			lex:       lex(expr),
			condition: expr,
			searches:  idx,
		}
		if err := p.run(); err != nil {
			return nil, err
		}
		branches = append(branches, p.result)
	}
	return &Tree{
		Condition:  branches.Reduce(),
		Detections: idx.sorted(),
		Rule:       &r,
	}, nil
}

type searchIndex struct {
	byName map[string]*Search
	names  []string
}

func newSearchIndex(raw map[string]interface{}) (searchIndex, error) {
	idx := searchIndex{
		byName: make(map[string]*Search, len(raw)),
		names:  make([]string, 0, len(raw)),
	}
	for name := range raw {
		idx.names = append(idx.names, name)
	}
	sort.Strings(idx.names)
	for _, name := range idx.names {
		s, err := newSearch(name, raw[name])
		if err != nil {
			return idx, err
		}
		idx.byName[name] = s
	}
	return idx, nil
}

func (idx searchIndex) sorted() []*Search {
	out := make([]*Search, len(idx.names))
	for i, name := range idx.names {
		out[i] = idx.byName[name]
	}
	return out
}

// them refers to every search, except ones prefixed with underscore
func (idx searchIndex) them() []Branch {
	out := make([]Branch, 0, len(idx.names))
	for _, name := range idx.names {
		if !strings.HasPrefix(name, "_") {
			out = append(out, idx.byName[name])
		}
	}
	return out
}

func (idx searchIndex) glob(item Item) ([]Branch, error) {
	g := item.Glob()
	if g == nil {
		return nil, fmt.Errorf("failed to compile wildcard identifier '%s'", item)
	}
	out := idx.match(*g)
	if len(out) == 0 {
		return nil, ErrMissingConditionItem{Key: item.Val}
	}
	return out, nil
}

func (idx searchIndex) match(g glob.Glob) []Branch {
	out := make([]Branch, 0)
	for _, name := range idx.names {
		if g.Match(name) {
			out = append(out, idx.byName[name])
		}
	}
	return out
}

// newBranch builds a binary tree from token list
// sequence validation should be done before invoking newBranch
func newBranch(idx searchIndex, t []Item, depth int) (Branch, error) {
	rx := genItems(t)

	and := make(NodeSimpleAnd, 0)
	or := make(NodeSimpleOr, 0)
	var negated bool
	var wildcard Token

	// quantified sets, 1 of is a disjunction and all of is a conjunction
	quantify := func(rules []Branch) error {
		var b Branch
		switch wildcard {
		case TokStAll:
			b = NodeSimpleAnd(rules).Reduce()
		case TokStOne:
			b = NodeSimpleOr(rules).Reduce()
		default:
			return fmt.Errorf("invalid wildcard ident, missing 1 of/ all of prefix")
		}
		and = append(and, newNodeNotIfNegated(b, negated))
		negated = false
		wildcard = TokBegin
		return nil
	}

	for item := range rx {
		switch item.T {
		case TokIdentifier:
			s, ok := idx.byName[item.Val]
			if !ok {
				return nil, ErrMissingConditionItem{Key: item.Val}
			}
			and = append(and, newNodeNotIfNegated(s, negated))
			negated = false
		case TokKeywordAnd:
			// no need to do anything special here
		case TokKeywordOr:
			// fill OR gate with collected AND nodes
			// reduce will strip AND logic if only one token has been collected
			or = append(or, and.Reduce())
			and = make(NodeSimpleAnd, 0)
		case TokKeywordNot:
			negated = true
		case TokSepLpar:
			// recursively create new branch and append to existing list
			// then skip to next token after grouping
			b, err := newBranch(idx, extractGroup(rx), depth+1)
			if err != nil {
				return nil, err
			}
			and = append(and, newNodeNotIfNegated(b, negated))
			negated = false
		case TokIdentifierAll:
			rules := idx.them()
			if len(rules) == 0 {
				return nil, ErrMissingConditionItem{Key: item.Val}
			}
			if err := quantify(rules); err != nil {
				return nil, err
			}
		case TokIdentifierWithWildcard:
			rules, err := idx.glob(item)
			if err != nil {
				return nil, err
			}
			if err := quantify(rules); err != nil {
				return nil, err
			}
		case TokStAll:
			wildcard = TokStAll
		case TokStOne:
			wildcard = TokStOne
		case TokSepRpar:
			return nil, fmt.Errorf("parser error, should not see %s", TokSepRpar)
		default:
			return nil, ErrUnsupportedToken{
				Msg: fmt.Sprintf("%s | %s", item.T, item.T.Literal()),
			}
		}
	}
	if len(and) == 0 {
		return nil, fmt.Errorf("parser error, empty expression at depth %d", depth)
	}
	or = append(or, and.Reduce())

	return or.Reduce(), nil
}

func extractGroup(rx <-chan Item) []Item {
	// fn is called when newBranch hits TokSepLpar
	// it will be consumed, so balance is already 1
	balance := 1
	group := make([]Item, 0)
	for item := range rx {
		if balance > 0 {
			group = append(group, item)
		}
		switch item.T {
		case TokSepLpar:
			balance++
		case TokSepRpar:
			balance--
			if balance == 0 {
				return group[:len(group)-1]
			}
		default:
		}
	}
	return group
}
