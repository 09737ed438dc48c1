package sigma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var treeRule = `
title: tree
detection:
  selection:
    Image|endswith: '\cmd.exe'
    CommandLine|contains|all:
      - whoami
      - /priv
  filter_1:
    User: SYSTEM
  filter_2:
    - ParentImage: a.exe
    - ParentImage: b.exe
  _helper:
    Image: z.exe
  condition: selection and not 1 of filter_*
`

func newTestTree(t *testing.T, raw string) *Tree {
	t.Helper()
	r, err := NewRuleFromYAML([]byte(raw))
	require.NoError(t, err)
	tree, err := NewTree(*r)
	require.NoError(t, err)
	return tree
}

func TestTreeCondition(t *testing.T) {
	tree := newTestTree(t, treeRule)
	require.NotNil(t, tree.Rule)
	assert.Equal(t, "tree", tree.Rule.Title)

	and, ok := tree.Condition.(*NodeAnd)
	require.True(t, ok, "got %T", tree.Condition)

	sel, ok := and.L.(*Search)
	require.True(t, ok)
	assert.Equal(t, "selection", sel.Name)

	not, ok := and.R.(*NodeNot)
	require.True(t, ok)
	or, ok := not.B.(*NodeOr)
	require.True(t, ok)
	assert.Equal(t, "filter_1", or.L.(*Search).Name)
	assert.Equal(t, "filter_2", or.R.(*Search).Name)
}

func TestTreeDetectionItems(t *testing.T) {
	tree := newTestTree(t, treeRule)

	names := make([]string, 0)
	for _, s := range tree.Detections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"_helper", "filter_1", "filter_2", "selection"}, names)

	items := tree.DetectionItems()
	keys := make([]string, 0)
	for _, d := range items {
		keys = append(keys, d.Key())
	}
	assert.Equal(t, []string{
		"Image",
		"User",
		"ParentImage",
		"ParentImage",
		"CommandLine|contains|all",
		"Image|endswith",
	}, keys)

	cmd := items[4]
	assert.Equal(t, "CommandLine", cmd.Field)
	assert.Equal(t, Modifiers{ModContains, ModAll}, cmd.Modifiers)
	require.Len(t, cmd.Value, 2)
	assert.Equal(t, "whoami", cmd.Value[0].String())
	assert.Equal(t, "/priv", cmd.Value[1].String())

	img := items[5]
	assert.Equal(t, `\cmd.exe`, img.Value[0].String())

	s, ok := tree.Search("filter_2")
	require.True(t, ok)
	assert.Len(t, s.Items(), 2)
	_, ok = tree.Search("filter_3")
	assert.False(t, ok)

	var nilTree *Tree
	assert.Nil(t, nilTree.DetectionItems())
}

func TestTreeThem(t *testing.T) {
	tree := newTestTree(t, `
detection:
  selection:
    Image: a.exe
  filter:
    User: SYSTEM
  _private:
    Image: z.exe
  condition: all of them
`)
	and, ok := tree.Condition.(*NodeAnd)
	require.True(t, ok, "got %T", tree.Condition)
	assert.Equal(t, "filter", and.L.(*Search).Name)
	assert.Equal(t, "selection", and.R.(*Search).Name)

	var count int
	tree.Condition.Walk(func(*DetectionItem) { count++ })
	assert.Equal(t, 2, count, "underscore searches are not part of them")
	assert.Len(t, tree.DetectionItems(), 3)
}

func TestTreeConditionList(t *testing.T) {
	tree := newTestTree(t, `
detection:
  selection:
    Image: a.exe
  filter:
    User: SYSTEM
  condition:
    - selection
    - filter and selection
`)
	or, ok := tree.Condition.(*NodeOr)
	require.True(t, ok, "got %T", tree.Condition)
	assert.IsType(t, &Search{}, or.L)
	assert.IsType(t, &NodeAnd{}, or.R)
}

func TestTreeKeywords(t *testing.T) {
	tree := newTestTree(t, `
detection:
  keywords:
    - mimikatz
    - 4624
  mixed:
    - sekurlsa
    - Image: cmd.exe
  single: lsass
  condition: keywords or mixed or single
`)
	items := tree.DetectionItems()
	require.Len(t, items, 4)

	assert.True(t, items[0].Keyword())
	require.Len(t, items[0].Value, 2)
	assert.Equal(t, ValueNumber, items[0].Value[1].Kind)

	assert.True(t, items[1].Keyword())
	assert.Equal(t, "Image", items[2].Field)
	assert.True(t, items[3].Keyword())
	assert.Equal(t, "lsass", items[3].Value[0].String())
}

func TestTreeDeepNesting(t *testing.T) {
	tree := newTestTree(t, `
detection:
  a:
    A: 1
  b:
    B: 2
  c:
    C: 3
  d:
    D: 4
  condition: ((a and (b or not c)) or not (d and a)) and not ((c))
`)
	var count int
	tree.Condition.Walk(func(*DetectionItem) { count++ })
	assert.Equal(t, 6, count, "condition walk follows references")
	assert.Len(t, tree.DetectionItems(), 4, "every leaf once")
}

func TestTreeErrors(t *testing.T) {
	for _, c := range []struct {
		name string
		rule string
		err  error
	}{
		{
			name: "missing detection",
			rule: "title: x",
			err:  ErrMissingDetection{},
		},
		{
			name: "empty detection",
			rule: "detection:\n  condition: selection",
			err:  ErrEmptyDetection{},
		},
		{
			name: "missing condition",
			rule: "detection:\n  selection:\n    Image: a",
			err:  ErrMissingCondition{},
		},
		{
			name: "condition wrong type",
			rule: "detection:\n  selection:\n    Image: a\n  condition: {a: b}",
			err:  ErrMissingCondition{},
		},
		{
			name: "missing item",
			rule: "detection:\n  selection:\n    Image: a\n  condition: selection and other",
			err:  ErrMissingConditionItem{Key: "other"},
		},
		{
			name: "wildcard without match",
			rule: "detection:\n  selection:\n    Image: a\n  condition: 1 of filter*",
			err:  ErrMissingConditionItem{Key: "filter*"},
		},
		{
			name: "unknown modifier",
			rule: "detection:\n  selection:\n    Image|bogus: a\n  condition: selection",
			err:  ErrUnknownModifier{Key: "Image|bogus", Modifier: "bogus"},
		},
		{
			name: "aggregation",
			rule: "detection:\n  selection:\n    Image: a\n  condition: selection | count() > 5",
			err:  ErrUnsupportedToken{},
		},
		{
			name: "aggregation keyword",
			rule: "detection:\n  selection:\n    Image: a\n  condition: selection and count",
			err:  ErrUnsupportedToken{},
		},
		{
			name: "invalid sequence",
			rule: "detection:\n  selection:\n    Image: a\n  condition: selection selection",
			err:  ErrInvalidTokenSeq{},
		},
		{
			name: "empty condition",
			rule: "detection:\n  selection:\n    Image: a\n  condition: ''",
			err:  ErrInvalidTokenSeq{},
		},
		{
			name: "unclosed group",
			rule: "detection:\n  selection:\n    Image: a\n  condition: (selection",
			err:  ErrIncompleteTokenSeq{},
		},
		{
			name: "unopened group",
			rule: "detection:\n  selection:\n    Image: a\n  condition: selection)",
			err:  ErrInvalidTokenSeq{},
		},
		{
			name: "nested map value",
			rule: "detection:\n  selection:\n    Image:\n      a: b\n  condition: selection",
			err:  ErrInvalidSelectionConstruct{},
		},
		{
			name: "null search",
			rule: "detection:\n  selection:\n  condition: selection",
			err:  ErrInvalidSelectionConstruct{},
		},
		{
			name: "nested list",
			rule: "detection:\n  selection:\n    - [a, b]\n  condition: selection",
			err:  ErrInvalidSelectionConstruct{},
		},
		{
			name: "empty map",
			rule: "detection:\n  selection: {}\n  condition: selection",
			err:  ErrInvalidSelectionConstruct{},
		},
		{
			name: "empty list",
			rule: "detection:\n  keywords: []\n  condition: keywords",
			err:  ErrInvalidKeywordConstruct{},
		},
	} {
		r, err := NewRuleFromYAML([]byte(c.rule))
		require.NoError(t, err, c.name)
		_, err = NewTree(*r)
		require.Error(t, err, c.name)
		assert.IsType(t, c.err, err, c.name)
		switch want := c.err.(type) {
		case ErrMissingConditionItem, ErrUnknownModifier:
			assert.Equal(t, want, err, c.name)
		}
	}
}

func TestTreeWildcardWithoutQuantifier(t *testing.T) {
	r, err := NewRuleFromYAML([]byte("detection:\n  selection:\n    Image: a\n  condition: sel*"))
	require.NoError(t, err)
	_, err = NewTree(*r)
	assert.Error(t, err)
}
