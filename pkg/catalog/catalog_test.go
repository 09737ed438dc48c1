package catalog

import (
	"os"
	"path/filepath"
	"testing"

	sigma "github.com/markuskont/go-sigma-rule-lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalogYAML = `
banned_words: [None, " pentest "]
typo_words: [unkown, Ligitimate]
link_markers: ["HTTP://"]
logsources:
  - category: process_creation
    product: windows
    fields: [CommandLine, Image]
  - category: process_creation
    product: windows
    fields: [ParentImage]
  - product: windows
    service: security
    fields: [EventID]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	fs, ok := c.Fields(Logsource{Category: "process_creation", Product: "windows"})
	require.True(t, ok)
	assert.Equal(t, 3, fs.Len(), "repeated entries should be merged")
	assert.True(t, fs.Has("CommandLine"))
	assert.False(t, fs.Has("commandline"))
	assert.True(t, fs.HasFold("commandline"))
	assert.True(t, fs.HasFold("PARENTIMAGE"))
	assert.False(t, fs.HasFold("User"))

	assert.Len(t, c.Logsources(), 2)
	assert.Equal(t, []string{"http://"}, c.LinkMarkers())
}

func TestFieldsExactKey(t *testing.T) {
	c, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	for _, key := range []Logsource{
		{Category: "process_creation"},
		{Category: "process_creation", Product: "windows", Service: "sysmon"},
		{Product: "windows"},
		{Category: "Process_Creation", Product: "windows"},
	} {
		_, ok := c.Fields(key)
		assert.False(t, ok, key.String())
	}

	_, ok := c.Fields(KeyOf(sigma.Logsource{
		Product:    "windows",
		Service:    "security",
		Definition: "ignored for lookups",
	}))
	assert.True(t, ok)
}

func TestWords(t *testing.T) {
	c, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	assert.True(t, c.IsBanned("none"))
	assert.True(t, c.IsBanned("None"))
	assert.True(t, c.IsBanned(" PENTEST"))
	assert.False(t, c.IsBanned("nothing"))
	assert.False(t, c.IsBanned(""))

	assert.True(t, c.TypoMatch("unkown"))
	assert.True(t, c.TypoMatch("Ligitimate"))
	assert.True(t, c.TypoMatch("unk"), "partial word is a substring of typo entry")
	assert.False(t, c.TypoMatch("unknown"))
	assert.False(t, c.TypoMatch(" "))
}

func TestInvalidEntry(t *testing.T) {
	for name, tables := range map[string]Tables{
		"no key": {Logsources: []Entry{
			{Fields: []string{"Image"}},
		}},
		"no fields": {Logsources: []Entry{
			{Logsource: Logsource{Product: "windows"}},
		}},
		"empty field": {Logsources: []Entry{
			{Logsource: Logsource{Product: "windows"}, Fields: []string{"Image", ""}},
		}},
	} {
		_, err := New(tables)
		require.Error(t, err, name)
		_, ok := err.(ErrInvalidEntry)
		assert.True(t, ok, name)
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("banned: [none]\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.IsBanned("none"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, again)

	fs, ok := c.Fields(Logsource{Category: "process_creation", Product: "windows"})
	require.True(t, ok)
	assert.True(t, fs.Has("CommandLine"))
	assert.True(t, c.IsBanned("none"))
	assert.NotEmpty(t, c.LinkMarkers())
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	_, ok := c.Fields(Logsource{Product: "windows"})
	assert.False(t, ok)
	assert.False(t, c.IsBanned("none"))
	assert.False(t, c.TypoMatch("unkown"))
	assert.Nil(t, c.LinkMarkers())
}
