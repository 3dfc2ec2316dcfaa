// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/validate"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/warehouse"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <filing-id>",
	Short: "Re-run the validation check suite against an already-loaded filing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		filingID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatal().Err(err).Str("filingID", args[0]).Msg("filing ID must be an integer")
		}

		wh, err := warehouse.Connect(ctx, viper.GetString("db.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to warehouse")
		}
		defer wh.Close()

		facts, normalized, err := wh.FactsForFiling(ctx, filingID)
		if err != nil {
			log.Fatal().Err(err).Int64("filingID", filingID).Msg("could not load facts for filing")
		}

		calcRels, err := wh.CalcRelsForFiling(ctx, filingID)
		if err != nil {
			log.Fatal().Err(err).Int64("filingID", filingID).Msg("could not load calc relationships for filing")
		}

		periods, err := wh.PeriodsForFiling(ctx, filingID)
		if err != nil {
			log.Fatal().Err(err).Int64("filingID", filingID).Msg("could not load time periods for filing")
		}

		report, err := validate.Run(filingID, facts, normalized, calcRels, periods)
		if err != nil {
			log.Warn().Err(err).Msg("validation reported failures")
		}

		if err := wh.SaveReport(ctx, report); err != nil {
			log.Fatal().Err(err).Msg("could not save validation report")
		}

		printReport(report)
	},
}

// printReport renders a report's checks as a table, the same way the
// teacher's CLI favored tablewriter over ad-hoc printf columns for anything
// resembling a grid of results.
func printReport(report *domain.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Check", "Passed", "Severity", "Detail"})

	for _, c := range report.Checks {
		passed := "yes"
		if !c.Passed {
			passed = "no"
		}
		table.Append([]string{c.Name, passed, string(c.Severity), c.Detail})
	}

	table.Render()
	fmt.Printf("\nOverall score: %.1f%%\n", report.Score*100)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
