package sigma

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
)

// Config is used as argument to creating a new ruleset
type Config struct {
	// root directory for recursive rule search
	// rules must be readable files with "yml" or "yaml" suffix
	// leading ~ is expanded to user home directory
	Directory []string
	// by default, a rule parse fail will simply increment Ruleset.Failed counter when failing to
	// parse yaml or rule AST
	// this parameter will cause an early error return instead
	FailOnRuleParse, FailOnYamlParse bool
}

func (c *Config) validate() error {
	if len(c.Directory) == 0 {
		return fmt.Errorf("missing root directory for sigma rules")
	}
	for i, dir := range c.Directory {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return err
		}
		info, err := os.Stat(expanded)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist", dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		c.Directory[i] = expanded
	}
	return nil
}

// Ruleset is a collection of parsed rules
type Ruleset struct {
	Rules []*Tree
	root  []string

	// Errs holds ErrParseYaml and ErrParseTree values for every rule that was skipped
	Errs []error

	Total, Ok, Failed, Unsupported int
}

// NewRuleset instanciates a Ruleset object
func NewRuleset(c Config) (*Ruleset, error) {
	dirs := append([]string(nil), c.Directory...)
	c.Directory = dirs
	if err := c.validate(); err != nil {
		return nil, err
	}
	files, err := NewRuleFileList(c.Directory)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no rule files found in %v", c.Directory)
	}
	var fail, unsupp int
	errs := make([]error, 0)
	rules, err := NewRuleList(files, !c.FailOnYamlParse)
	if err != nil {
		switch e := err.(type) {
		case ErrBulkParseYaml:
			fail += len(e.Errs)
			for _, pe := range e.Errs {
				errs = append(errs, pe)
			}
		default:
			return nil, err
		}
	}
	set := make([]*Tree, 0)
loop:
	for _, raw := range rules {
		if raw.Multipart {
			unsupp++
			continue loop
		}
		tree, err := NewTree(raw)
		if err != nil {
			if c.FailOnRuleParse {
				return nil, ErrParseTree{Path: raw.Path, Err: err}
			}
			switch err.(type) {
			case ErrUnsupportedToken, *ErrUnsupportedToken:
				unsupp++
			default:
				fail++
			}
			errs = append(errs, ErrParseTree{Path: raw.Path, Err: err})
			continue loop
		}
		set = append(set, tree)
	}
	return &Ruleset{
		root:        c.Directory,
		Rules:       set,
		Errs:        errs,
		Failed:      fail,
		Ok:          len(set),
		Unsupported: unsupp,
		Total:       len(files),
	}, nil
}

// Root returns expanded rule directories
func (r Ruleset) Root() []string { return r.root }
