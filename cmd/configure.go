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
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Nordic-OG-Raven/FinSight-sub000/db"
)

// fileConfig is what configureCmd writes to $HOME/.finsight.toml. Field
// names mirror the viper keys the rest of the commands read (db.url,
// cache.dir, fetch.useragent).
type fileConfig struct {
	DB struct {
		URL string `toml:"url"`
	} `toml:"db"`
	Cache struct {
		Dir string `toml:"dir"`
	} `toml:"cache"`
	Fetch struct {
		UserAgent string `toml:"useragent"`
	} `toml:"fetch"`
}

// configureCmd represents the configure command
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Gather database and fetcher configuration and set up the warehouse schema",
	Run: func(cmd *cobra.Command, args []string) {
		var cfg fileConfig
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}
		cfg.Cache.Dir = filepath.Join(home, ".finsight", "cache")

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL warehouse (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&cfg.DB.URL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),

				huh.NewInput().
					Title("SEC EDGAR requires a descriptive User-Agent on every request (e.g. \"Your Name you@example.com\")").
					Value(&cfg.Fetch.UserAgent),

				huh.NewInput().
					Title("Where should fetched filings and parsed taxonomy indexes be cached?").
					Value(&cfg.Cache.Dir),
			),
		)

		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("error gathering configuration")
		}

		log.Info().Msg("creating warehouse schema")
		dbURL := strings.Replace(cfg.DB.URL, "postgres://", "pgx5://", 1)
		if err := db.Migrate(dbURL); err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}
		log.Info().Msg("warehouse schema created")

		if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("CacheDir", cfg.Cache.Dir).Msg("could not create cache directory")
		}

		configFN := filepath.Join(home, ".finsight.toml")
		configData, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		if err := os.WriteFile(configFN, configData, 0o644); err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Str("ConfigFile", configFN).Msg("finsight is configured")
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
