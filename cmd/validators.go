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
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/markuskont/go-sigma-rule-lint/pkg/validate"
	"github.com/markuskont/go-sigma-rule-lint/pkg/validate/sigmahq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// validatorsCmd represents the validators command
var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List available checks",
	Run:   validators,
}

func listChecks(w io.Writer, reg *validate.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, id := range reg.IDs() {
		c, _ := reg.Get(id)
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", id, c.Severity(), c.Description()); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func validators(cmd *cobra.Command, args []string) {
	cat, err := loadCatalog(viper.GetString("lint.catalog"))
	if err != nil {
		logrus.Fatal(err)
	}
	reg := validate.NewRegistry()
	if err := sigmahq.Register(reg, cat); err != nil {
		logrus.Fatal(err)
	}
	if err := listChecks(os.Stdout, reg); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	rootCmd.AddCommand(validatorsCmd)
}
