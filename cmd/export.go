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

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/warehouse"
)

var (
	exportOut    string
	exportFormat string
)

// exportRow is the flattened shape exportCmd writes, one row per primary
// fact -- enough for a downstream consumer to rebuild a statement without
// touching the warehouse schema directly. Carries both json and parquet
// tags, the way the teacher's ZacksRecord served both a publish step and a
// parquet archive step from the same struct.
type exportRow struct {
	ConceptQName    string   `json:"concept" parquet:"name=concept, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	NormalizedLabel string   `json:"normalized_label" parquet:"name=normalized_label, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ContextID       string   `json:"context_id" parquet:"name=context_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ValueNumeric    *float64 `json:"value_numeric,omitempty" parquet:"name=value_numeric, type=DOUBLE, repetitiontype=OPTIONAL"`
	ValueText       *string  `json:"value_text,omitempty" parquet:"name=value_text, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Unit            string   `json:"unit,omitempty" parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	IsCalculated    bool     `json:"is_calculated" parquet:"name=is_calculated, type=BOOLEAN"`
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <filing-id>",
	Short: "Export a loaded filing's deduplicated facts as JSON or parquet",
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

		rows := make([]exportRow, 0, len(facts))
		for _, f := range facts {
			if !f.IsPrimary {
				continue
			}
			rows = append(rows, exportRow{
				ConceptQName:    f.ConceptQName,
				NormalizedLabel: normalized[f.ConceptQName],
				ContextID:       f.ContextID,
				ValueNumeric:    f.ValueNumeric,
				ValueText:       f.ValueText,
				Unit:            f.Unit,
				IsCalculated:    f.IsCalculated,
			})
		}

		switch exportFormat {
		case "parquet":
			if exportOut == "" {
				log.Fatal().Msg("parquet export requires --out")
			}
			if err := exportParquet(rows, exportOut); err != nil {
				log.Fatal().Err(err).Str("file", exportOut).Msg("could not write parquet export")
			}
		default:
			if err := exportJSON(rows, exportOut); err != nil {
				log.Fatal().Err(err).Msg("could not write json export")
			}
		}

		log.Info().Str("format", exportFormat).Int("facts", len(rows)).Msg("exported filing")
	},
}

func exportJSON(rows []exportRow, out string) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export rows: %w", err)
	}

	if out == "" || out == "-" {
		os.Stdout.Write(data)
		os.Stdout.Write([]byte("\n"))
		return nil
	}
	return os.WriteFile(out, data, 0o644)
}

func exportParquet(rows []exportRow, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(exportRow), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.PageSize = 8 * 1024
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			return fmt.Errorf("write parquet row for %s: %w", r.ConceptQName, err)
		}
	}
	return pw.WriteStop()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout for json)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json or parquet")
}
