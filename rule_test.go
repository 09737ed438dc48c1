package sigma

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullRule = `
title: Whoami Execution
id: 502b42de-4306-40b4-9596-6f590c81f073
status: Experimental
description: Detects the execution of whoami
references:
  - https://example.com
author: someone
date: 2021/08/01
logsource:
  category: process_creation
  product: windows
detection:
  selection:
    Image|endswith: '\whoami.exe'
  condition: selection
falsepositives:
  - Admin activity
level: HIGH
tags:
  - attack.discovery
custom_one: 1
custom_two:
  nested: true
`

func TestRuleFromYAML(t *testing.T) {
	r, err := NewRuleFromYAML([]byte(fullRule))
	require.NoError(t, err)

	assert.Equal(t, "Whoami Execution", r.Title)
	assert.Equal(t, StatusExperimental, r.Status)
	assert.Equal(t, LevelHigh, r.Level)
	require.NotNil(t, r.Description)
	assert.Equal(t, "Detects the execution of whoami", *r.Description)
	assert.Equal(t, "2021/08/01", r.Date)
	assert.Equal(t, Logsource{Category: "process_creation", Product: "windows"}, r.Logsource)
	assert.Equal(t, Tags{"attack.discovery"}, r.Tags)
	assert.Equal(t, []string{"custom_one", "custom_two"}, r.CustomAttributeNames())
	assert.False(t, r.Multipart)

	conds, err := r.Detection.Conditions()
	require.NoError(t, err)
	assert.Equal(t, []string{"selection"}, conds)
	assert.Len(t, r.Detection.Extract(), 1)
}

func TestRuleEnums(t *testing.T) {
	r, err := NewRuleFromYAML([]byte("title: x"))
	require.NoError(t, err)
	assert.Equal(t, StatusNone, r.Status)
	assert.Equal(t, LevelNone, r.Level)
	assert.Nil(t, r.Description)
	assert.Empty(t, r.CustomAttributeNames())

	_, err = NewRuleFromYAML([]byte("status: finished"))
	assert.Equal(t, ErrInvalidStatus{Value: "finished"}, err)

	_, err = NewRuleFromYAML([]byte("level: severe"))
	assert.Equal(t, ErrInvalidLevel{Value: "severe"}, err)

	for raw, want := range map[string]Status{
		"stable":      StatusStable,
		"TEST":        StatusTest,
		"deprecated":  StatusDeprecated,
		"Unsupported": StatusUnsupported,
	} {
		r, err := NewRuleFromYAML([]byte("status: " + raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, r.Status, raw)
	}

	text, err := LevelCritical.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "critical", string(text))
	assert.Equal(t, "", StatusNone.String())
}

func TestMultipart(t *testing.T) {
	assert.True(t, isMultipart([]byte("title: a\n---\ntitle: b\n")))
	assert.False(t, isMultipart([]byte("---\ntitle: a\n")))
	assert.False(t, isMultipart([]byte("title: a---b\n")))
}

func TestConditionList(t *testing.T) {
	d := Detection{"condition": []interface{}{"a", "b or c"}}
	conds, err := d.Conditions()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b or c"}, conds)

	for _, bad := range []Detection{
		{},
		{"condition": []interface{}{}},
		{"condition": []interface{}{"a", 1}},
		{"condition": 1},
	} {
		_, err := bad.Conditions()
		assert.Equal(t, ErrMissingCondition{}, err)
	}
}

func TestModifiers(t *testing.T) {
	for raw, want := range map[string]Modifier{
		"contains":     ModContains,
		"StartsWith":   ModStartswith,
		"base64offset": ModBase64Offset,
		"re":           ModRegex,
		"ignorecase":   ModRegexIgnoreCase,
		"i":            ModRegexIgnoreCase,
		"cidr":         ModCIDR,
		"windash":      ModWindash,
	} {
		m, ok := ParseModifier(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, m, raw)
	}
	_, ok := ParseModifier("unknown")
	assert.False(t, ok)
	_, ok = ParseModifier("")
	assert.False(t, ok)

	mods := Modifiers{ModContains, ModAll}
	assert.Equal(t, "contains|all", mods.String())
	assert.True(t, mods.Has(ModAll))
	assert.False(t, mods.CaseSensitive())
	assert.True(t, Modifiers{ModRegex, ModRegexMultiline}.CaseSensitive())
	assert.True(t, Modifiers{ModCased}.CaseSensitive())
	assert.True(t, Modifiers{ModBase64Offset, ModContains}.CaseSensitive())
	assert.False(t, Modifiers{ModWide, ModBase64Offset}.HasAny(ModRegex, ModCased))
	assert.Equal(t, "unknown", Modifier(-1).String())
}

func writeRules(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

var rulesetFiles = map[string]string{
	"windows/good.yml": fullRule,
	"windows/agg.yaml": `
detection:
  selection:
    Image: a
  condition: selection | count() by User > 5
`,
	"broken.yml": "title: [unclosed\n",
	"multi.yml":  "title: a\ndetection:\n  s:\n    A: b\n  condition: s\n---\ntitle: b\n",
	"linux/badtree.yml": `
detection:
  selection:
    Image: a
`,
	"README.md": "not a rule",
}

func TestRuleFileList(t *testing.T) {
	dir := writeRules(t, rulesetFiles)
	files, err := NewRuleFileList([]string{dir})
	require.NoError(t, err)
	assert.Len(t, files, 5)

	_, err = NewRuleList(nil, true)
	assert.Error(t, err)

	rules, err := NewRuleList(files, true)
	require.Error(t, err)
	bulk, ok := err.(ErrBulkParseYaml)
	require.True(t, ok)
	assert.Len(t, bulk.Errs, 1)
	assert.Len(t, rules, 4)
	for _, r := range rules {
		assert.NotEmpty(t, r.Path)
	}

	_, err = NewRuleList(files, false)
	assert.IsType(t, &ErrParseYaml{}, err)
}

func TestRuleset(t *testing.T) {
	dir := writeRules(t, rulesetFiles)
	rs, err := NewRuleset(Config{Directory: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, 5, rs.Total)
	assert.Equal(t, 1, rs.Ok)
	assert.Equal(t, 2, rs.Failed)
	assert.Equal(t, 2, rs.Unsupported)
	assert.Len(t, rs.Rules, 1)
	assert.Len(t, rs.Errs, 3)
	assert.Equal(t, []string{dir}, rs.Root())
	assert.Equal(t, "Whoami Execution", rs.Rules[0].Rule.Title)

	_, err = NewRuleset(Config{Directory: []string{dir}, FailOnRuleParse: true})
	assert.IsType(t, ErrParseTree{}, err)

	_, err = NewRuleset(Config{Directory: []string{dir}, FailOnYamlParse: true})
	assert.Error(t, err)
}

func TestRulesetConfig(t *testing.T) {
	_, err := NewRuleset(Config{})
	assert.Error(t, err)

	dir := t.TempDir()
	_, err = NewRuleset(Config{Directory: []string{filepath.Join(dir, "missing")}})
	assert.Error(t, err)

	file := filepath.Join(dir, "file.yml")
	require.NoError(t, os.WriteFile(file, []byte(fullRule), 0o644))
	_, err = NewRuleset(Config{Directory: []string{file}})
	assert.Error(t, err)

	_, err = NewRuleset(Config{Directory: []string{t.TempDir()}})
	assert.Error(t, err, "directory without rules")
}
