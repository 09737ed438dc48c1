/*
Copyright © 2020 Markus Kont alias013@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/markuskont/go-dispatch"
	sigma "github.com/markuskont/go-sigma-rule-lint"
	"github.com/markuskont/go-sigma-rule-lint/pkg/catalog"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate/sigmahq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check a ruleset against rule conventions",
	Long: `Recursively parses a sigma ruleset and runs convention checks on every supported rule.
	For example:

	sigma-lint lint --rules-dir ~/sigma/rules --exclude 'sigmahq_falsepositives_*' --format json
	`,
	Run: lint,
}

type reportFormat int

const (
	formatText reportFormat = iota
	formatJSON
)

func parseFormat(in string) (reportFormat, error) {
	switch in {
	case "", "text":
		return formatText, nil
	case "json":
		return formatJSON, nil
	default:
		return formatText, fmt.Errorf("unknown output format %s", in)
	}
}

// ruleReport is a single line of json output
type ruleReport struct {
	Path   string          `json:"path"`
	Title  string          `json:"title"`
	ID     string          `json:"id"`
	Issues validate.Issues `json:"issues"`
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// selectChecks builds the registry and resolves include and exclude patterns against it
func selectChecks(cat *catalog.Catalog, include, exclude []string) ([]validate.Check, error) {
	reg := validate.NewRegistry()
	if err := sigmahq.Register(reg, cat); err != nil {
		switch e := err.(type) {
		case sigmahq.ErrRegister:
			logrus.WithField("checks", e.Failed).Warn("some checks are disabled")
		default:
			return nil, err
		}
	}
	return reg.Select(include, exclude)
}

// validateRules fans rules out to a worker pool, one task per rule
// results keep ruleset order
func validateRules(v *validate.Validator, rules []*sigma.Tree, workers int) ([]validate.Result, error) {
	results := make([]validate.Result, len(rules))
	if len(rules) == 0 {
		return results, nil
	}
	if workers < 1 {
		workers = 1
	}
	err := dispatch.Run(dispatch.Config{
		Async:   false,
		Workers: workers,
		FeederFunc: func(tasks chan<- dispatch.Task, stop <-chan struct{}) {
			var wg sync.WaitGroup
		loop:
			for i := range rules {
				i := i
				wg.Add(1)
				select {
				case <-stop:
					wg.Done()
					break loop
				case tasks <- func(id, count int, ctx context.Context) error {
					defer wg.Done()
					results[i] = validate.Result{Tree: rules[i], Issues: v.Validate(rules[i])}
					logrus.WithFields(logrus.Fields{
						"worker": id,
						"file":   rules[i].Rule.Path,
						"issues": len(results[i].Issues),
					}).Trace("rule validated")
					return nil
				}:
				}
			}
			wg.Wait()
		},
		ErrFunc: func(err error) bool {
			logrus.Error(err)
			return true
		},
	})
	return results, err
}

// writeReport prints issues at or above min severity and returns how many were written
func writeReport(w io.Writer, format reportFormat, results []validate.Result, min validate.Severity) (int, error) {
	var total int
	for _, res := range results {
		issues := res.Issues.Filter(min)
		if len(issues) == 0 {
			continue
		}
		issues.Sort()
		total += len(issues)

		var path, title, id string
		if res.Tree != nil && res.Tree.Rule != nil {
			path, title, id = res.Tree.Rule.Path, res.Tree.Rule.Title, res.Tree.Rule.ID
		}
		switch format {
		case formatJSON:
			out, err := json.Marshal(ruleReport{Path: path, Title: title, ID: id, Issues: issues})
			if err != nil {
				return total, err
			}
			if _, err := fmt.Fprintln(w, string(out)); err != nil {
				return total, err
			}
		default:
			if _, err := fmt.Fprintf(w, "%s (%s)\n", path, title); err != nil {
				return total, err
			}
			for _, issue := range issues {
				if _, err := fmt.Fprintf(w, "\t%s\n", issue); err != nil {
					return total, err
				}
			}
		}
	}
	return total, nil
}

func lint(cmd *cobra.Command, args []string) {
	format, err := parseFormat(viper.GetString("lint.format"))
	if err != nil {
		logrus.Fatal(err)
	}
	min, err := validate.ParseSeverity(viper.GetString("lint.min-severity"))
	if err != nil {
		logrus.Fatal(err)
	}
	cat, err := loadCatalog(viper.GetString("lint.catalog"))
	if err != nil {
		logrus.Fatal(err)
	}
	checks, err := selectChecks(cat,
		viper.GetStringSlice("lint.validators"),
		viper.GetStringSlice("lint.exclude"),
	)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.Debugf("Running %d checks", len(checks))

	ruleset := loadRuleset()
	results, err := validateRules(
		validate.NewValidator(checks...),
		ruleset.Rules,
		viper.GetInt("lint.workers"),
	)
	if err != nil {
		logrus.Fatal(err)
	}

	count, err := writeReport(os.Stdout, format, results, min)
	if err != nil {
		logrus.Fatal(err)
	}

	var all validate.Issues
	for _, res := range results {
		all = append(all, res.Issues.Filter(min)...)
	}
	fields := logrus.Fields{"issues": count}
	for sev, n := range all.Count() {
		fields[sev.String()] = n
	}
	logrus.WithFields(fields).Info("lint done")

	if count > 0 && viper.GetBool("lint.fail-on-issues") {
		os.Exit(2)
	}
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.PersistentFlags().StringSlice("validators", []string{},
		`Check ids or glob patterns to run. All checks are run when empty.`)
	viper.BindPFlag("lint.validators",
		lintCmd.PersistentFlags().Lookup("validators"))

	lintCmd.PersistentFlags().StringSlice("exclude", []string{},
		`Check ids or glob patterns to skip.`)
	viper.BindPFlag("lint.exclude",
		lintCmd.PersistentFlags().Lookup("exclude"))

	lintCmd.PersistentFlags().String("min-severity", "low",
		`Lowest reported severity. One of low, medium, high, critical.`)
	viper.BindPFlag("lint.min-severity",
		lintCmd.PersistentFlags().Lookup("min-severity"))

	lintCmd.PersistentFlags().Int("workers", 4,
		`Number of workers for rule validation.`)
	viper.BindPFlag("lint.workers",
		lintCmd.PersistentFlags().Lookup("workers"))

	lintCmd.PersistentFlags().String("format", "text",
		`Output format. Either text or json.`)
	viper.BindPFlag("lint.format",
		lintCmd.PersistentFlags().Lookup("format"))

	lintCmd.PersistentFlags().Bool("fail-on-issues", false,
		`Exit with code 2 when any issue is reported.`)
	viper.BindPFlag("lint.fail-on-issues",
		lintCmd.PersistentFlags().Lookup("fail-on-issues"))
}
