// Package catalog holds reference tables that parametrize rule checks
// Field conventions per logsource, banned and misspelled false positive words, link markers
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	sigma "github.com/markuskont/go-sigma-rule-lint"
	"gopkg.in/yaml.v2"
)

// Logsource is a catalog lookup key
// Two keys are the same only if all three members are equal
type Logsource struct {
	Category string `yaml:"category" json:"category"`
	Product  string `yaml:"product" json:"product"`
	Service  string `yaml:"service" json:"service"`
}

// KeyOf converts rule logsource into catalog key, definition is not part of the key
func KeyOf(l sigma.Logsource) Logsource {
	return Logsource{Category: l.Category, Product: l.Product, Service: l.Service}
}

func (l Logsource) String() string {
	return fmt.Sprintf("category=%s product=%s service=%s", l.Category, l.Product, l.Service)
}

func (l Logsource) empty() bool {
	return l.Category == "" && l.Product == "" && l.Service == ""
}

// FieldSet holds valid field names of a logsource
type FieldSet struct {
	exact   map[string]struct{}
	unicast map[string]struct{}
}

func newFieldSet(fields []string) FieldSet {
	fs := FieldSet{
		exact:   make(map[string]struct{}, len(fields)),
		unicast: make(map[string]struct{}, len(fields)),
	}
	for _, f := range fields {
		fs.exact[f] = struct{}{}
		fs.unicast[strings.ToLower(f)] = struct{}{}
	}
	return fs
}

// Has checks for field name with exact case
func (f FieldSet) Has(field string) bool {
	_, ok := f.exact[field]
	return ok
}

// HasFold checks for field name ignoring case
func (f FieldSet) HasFold(field string) bool {
	_, ok := f.unicast[strings.ToLower(field)]
	return ok
}

// Len returns number of distinct exact case names
func (f FieldSet) Len() int { return len(f.exact) }

// Entry is a single logsource definition in catalog file
type Entry struct {
	Logsource `yaml:",inline"`
	Fields    []string `yaml:"fields" json:"fields"`
}

// Tables is the raw catalog content, as written in catalog file
type Tables struct {
	BannedWords []string `yaml:"banned_words" json:"banned_words"`
	TypoWords   []string `yaml:"typo_words" json:"typo_words"`
	LinkMarkers []string `yaml:"link_markers" json:"link_markers"`
	Logsources  []Entry  `yaml:"logsources" json:"logsources"`
}

// Catalog is read-only after construction and safe for concurrent use
type Catalog struct {
	fields map[Logsource]FieldSet
	banned map[string]struct{}
	typos  []string
	links  []string
}

// New builds a catalog from in-memory tables
// Repeated logsource entries are merged, words are lowercased
func New(t Tables) (*Catalog, error) {
	c := &Catalog{
		fields: make(map[Logsource]FieldSet, len(t.Logsources)),
		banned: make(map[string]struct{}, len(t.BannedWords)),
		typos:  lowerList(t.TypoWords),
		links:  lowerList(t.LinkMarkers),
	}
	for _, w := range t.BannedWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			c.banned[w] = struct{}{}
		}
	}
	merged := make(map[Logsource][]string)
	for i, e := range t.Logsources {
		if e.Logsource.empty() {
			return nil, ErrInvalidEntry{Index: i, Logsource: e.Logsource, Msg: "missing category, product and service"}
		}
		if len(e.Fields) == 0 {
			return nil, ErrInvalidEntry{Index: i, Logsource: e.Logsource, Msg: "no fields defined"}
		}
		for _, f := range e.Fields {
			if f == "" {
				return nil, ErrInvalidEntry{Index: i, Logsource: e.Logsource, Msg: "empty field name"}
			}
		}
		merged[e.Logsource] = append(merged[e.Logsource], e.Fields...)
	}
	for k, v := range merged {
		c.fields[k] = newFieldSet(v)
	}
	return c, nil
}

// Parse decodes catalog yaml
func Parse(data []byte) (*Catalog, error) {
	var t Tables
	if err := yaml.UnmarshalStrict(data, &t); err != nil {
		return nil, err
	}
	return New(t)
}

// Load reads catalog yaml from file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Fields resolves logsource into field set
// Only exact key equality is considered, second return is false for unknown logsource
func (c *Catalog) Fields(key Logsource) (FieldSet, bool) {
	if c == nil {
		return FieldSet{}, false
	}
	fs, ok := c.fields[key]
	return fs, ok
}

// Logsources returns known keys in stable order
func (c *Catalog) Logsources() []Logsource {
	out := make([]Logsource, 0, len(c.fields))
	for k := range c.fields {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// IsBanned checks if word, after trimming and lowercasing, is on banned list
func (c *Catalog) IsBanned(word string) bool {
	if c == nil {
		return false
	}
	_, ok := c.banned[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// TypoMatch checks if word, after trimming and lowercasing, is contained in any known misspelling
// Empty word never matches
func (c *Catalog) TypoMatch(word string) bool {
	if c == nil {
		return false
	}
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	for _, typo := range c.typos {
		if strings.Contains(typo, w) {
			return true
		}
	}
	return false
}

// LinkMarkers returns lowercase markers that denote a hyperlink
func (c *Catalog) LinkMarkers() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.links...)
}

func lowerList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
