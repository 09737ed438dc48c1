package sigma

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// RuleHandle is a meta object containing all fields from raw yaml, but is enhanced to also
// hold debugging info from the tool, such as source file path, etc
type RuleHandle struct {
	Rule

	Path      string `json:"path"`
	Multipart bool   `json:"multipart"`
}

// Rule defines raw rule conforming to sigma rule specification
// https://github.com/SigmaHQ/sigma-specification
// Top-level keys that are not part of the specification end up in CustomAttributes
type Rule struct {
	Title       string        `yaml:"title" json:"title"`
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name,omitempty"`
	Taxonomy    string        `yaml:"taxonomy" json:"taxonomy,omitempty"`
	Related     []RelatedRule `yaml:"related" json:"related,omitempty"`
	Status      Status        `yaml:"status" json:"status"`
	Description *string       `yaml:"description" json:"description"`
	License     string        `yaml:"license" json:"license,omitempty"`
	Author      string        `yaml:"author" json:"author"`
	References  []string      `yaml:"references" json:"references"`
	// Date and Modified are kept as written, empty means absent
	Date           string   `yaml:"date" json:"date"`
	Modified       string   `yaml:"modified" json:"modified,omitempty"`
	Fields         []string `yaml:"fields" json:"fields,omitempty"`
	Falsepositives []string `yaml:"falsepositives" json:"falsepositives"`
	Level          Level    `yaml:"level" json:"level"`
	Scope          []string `yaml:"scope" json:"scope,omitempty"`

	Logsource `yaml:"logsource" json:"logsource"`
	Detection `yaml:"detection" json:"detection"`
	Tags      `yaml:"tags" json:"tags"`

	CustomAttributes map[string]interface{} `yaml:",inline" json:"custom_attributes,omitempty"`
}

// CustomAttributeNames returns sorted names of unrecognized top-level rule keys
func (r Rule) CustomAttributeNames() []string {
	if len(r.CustomAttributes) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.CustomAttributes))
	for k := range r.CustomAttributes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RelatedRule links a rule to another rule by id
type RelatedRule struct {
	ID   string `yaml:"id" json:"id"`
	Type string `yaml:"type" json:"type"`
}

// Status is the maturity of a rule
type Status int

const (
	// StatusNone means status was not set
	StatusNone Status = iota
	StatusStable
	StatusTest
	StatusExperimental
	StatusDeprecated
	StatusUnsupported
)

var statusNames = map[string]Status{
	"stable":       StatusStable,
	"test":         StatusTest,
	"experimental": StatusExperimental,
	"deprecated":   StatusDeprecated,
	"unsupported":  StatusUnsupported,
}

func (s Status) String() string {
	switch s {
	case StatusStable:
		return "stable"
	case StatusTest:
		return "test"
	case StatusExperimental:
		return "experimental"
	case StatusDeprecated:
		return "deprecated"
	case StatusUnsupported:
		return "unsupported"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalYAML implements yaml.Unmarshaler
func (s *Status) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw == "" {
		*s = StatusNone
		return nil
	}
	val, ok := statusNames[strings.ToLower(raw)]
	if !ok {
		return ErrInvalidStatus{Value: raw}
	}
	*s = val
	return nil
}

// Level is the severity of the detection itself, as declared by rule author
type Level int

const (
	// LevelNone means level was not set
	LevelNone Level = iota
	LevelInformational
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = map[string]Level{
	"informational": LevelInformational,
	"low":           LevelLow,
	"medium":        LevelMedium,
	"high":          LevelHigh,
	"critical":      LevelCritical,
}

func (l Level) String() string {
	switch l {
	case LevelInformational:
		return "informational"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalYAML implements yaml.Unmarshaler
func (l *Level) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw == "" {
		*l = LevelNone
		return nil
	}
	val, ok := levelNames[strings.ToLower(raw)]
	if !ok {
		return ErrInvalidLevel{Value: raw}
	}
	*l = val
	return nil
}

// NewRuleFromYAML parses a single rule document
func NewRuleFromYAML(data []byte) (*RuleHandle, error) {
	var r Rule
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &RuleHandle{Rule: r, Multipart: isMultipart(data)}, nil
}

// NewRuleList reads a list of sigma rule paths and parses them to rule objects
func NewRuleList(files []string, skip bool) ([]RuleHandle, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("missing rule file list")
	}
	errs := make([]ErrParseYaml, 0)
	rules := make([]RuleHandle, 0)
loop:
	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var r Rule
		if err := yaml.Unmarshal(data, &r); err != nil {
			if skip {
				errs = append(errs, ErrParseYaml{
					Path:  path,
					Count: i,
					Err:   err,
				})
				continue loop
			}
			return nil, &ErrParseYaml{Err: err, Path: path}
		}
		rules = append(rules, RuleHandle{
			Path:      path,
			Rule:      r,
			Multipart: isMultipart(data),
		})
	}
	return rules, func() error {
		if len(errs) > 0 {
			return ErrBulkParseYaml{Errs: errs}
		}
		return nil
	}()
}

func isMultipart(data []byte) bool {
	return !bytes.HasPrefix(data, []byte("---")) && bytes.Contains(data, []byte("\n---"))
}

// Logsource represents the logsource field in sigma rule
// It defines relevant event streams and is used for looking up field conventions
type Logsource struct {
	Product    string `yaml:"product" json:"product"`
	Category   string `yaml:"category" json:"category"`
	Service    string `yaml:"service" json:"service"`
	Definition string `yaml:"definition" json:"definition,omitempty"`
}

// Detection represents the detection field in sigma rule
// contains condition expression and identifier fields for building AST
type Detection map[string]interface{}

// Extract returns search identifiers without condition
func (d Detection) Extract() map[string]interface{} {
	tx := make(map[string]interface{})
	for k, v := range d {
		if k != "condition" {
			tx[k] = v
		}
	}
	return tx
}

// Conditions returns condition expressions, sigma allows both a single string and a list
func (d Detection) Conditions() ([]string, error) {
	switch v := d["condition"].(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, ErrMissingCondition{}
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, ErrMissingCondition{}
		}
		return out, nil
	default:
		return nil, ErrMissingCondition{}
	}
}

// Tags contains a metadata list for tying rules together with other threat intel sources
// For example, for attaching MITRE ATT&CK tactics or techniques to the rule
type Tags []string

// NewRuleFileList finds all yaml files from defined root directories
// Subtree is scanned recursively
// No file validation, other than suffix matching
func NewRuleFileList(dirs []string) ([]string, error) {
	out := make([]string, 0)
	for _, dir := range dirs {
		if err := filepath.Walk(dir, func(
			path string,
			info os.FileInfo,
			err error,
		) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && (strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml")) {
				out = append(out, path)
			}
			return nil
		}); err != nil {
			return out, err
		}
	}
	return out, nil
}
