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
	sigma "github.com/markuskont/go-sigma-rule-lint"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a ruleset for testing",
	Long:  `Recursively parses a sigma ruleset from filesystem and provides detailed feedback to the user about rule support.`,
	Run:   parse,
}

// loadRuleset parses rules.dir and logs every skipped rule
func loadRuleset() *sigma.Ruleset {
	ruleset, err := sigma.NewRuleset(sigma.Config{
		Directory: viper.GetStringSlice("rules.dir"),
	})
	if err != nil {
		logrus.Fatal(err)
	}
	for _, err := range ruleset.Errs {
		switch e := err.(type) {
		case sigma.ErrParseTree:
			switch e.Err.(type) {
			case sigma.ErrUnsupportedToken:
				logrus.WithField("file", e.Path).Warn(e.Err)
			default:
				logrus.WithField("file", e.Path).Error(e.Err)
			}
		case sigma.ErrParseYaml:
			logrus.WithField("file", e.Path).Error(e.Err)
		default:
			logrus.Error(err)
		}
	}
	logrus.WithFields(logrus.Fields{
		"total":       ruleset.Total,
		"ok":          ruleset.Ok,
		"fail":        ruleset.Failed,
		"unsupported": ruleset.Unsupported,
	}).Info("ruleset parsed")
	return ruleset
}

func parse(cmd *cobra.Command, args []string) {
	ruleset := loadRuleset()
	var items, keywords int
	for _, tree := range ruleset.Rules {
		count := 0
		for _, item := range tree.DetectionItems() {
			count++
			if item.Keyword() {
				keywords++
			}
		}
		items += count
		logrus.WithFields(logrus.Fields{
			"file":     tree.Rule.Path,
			"searches": len(tree.Detections),
			"items":    count,
		}).Trace("ok")
	}
	logrus.Infof("OK: %d; FAIL: %d; UNSUPPORTED: %d", ruleset.Ok, ruleset.Failed, ruleset.Unsupported)
	logrus.Infof("ITEMS: %d; KEYWORDS: %d", items, keywords)
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
