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
package domain

import "time"

// FilingType enumerates the filing kinds the fetcher and parser accept.
type FilingType string

const (
	Filing10K FilingType = "10-K"
	Filing20F FilingType = "20-F"
	Filing10Q FilingType = "10-Q"
)

// Taxonomy returns the taxonomy name a filing of this type is expected to
// cite, given the filer's accounting standard: a 20-F filing, or any filing
// by a filer whose AccStandard is IFRS, cites ifrs-full; every other filing
// cites us-gaap.
func (ft FilingType) Taxonomy(std AccountingStandard) string {
	if ft == Filing20F || std == IFRS {
		return "ifrs-full"
	}
	return "us-gaap"
}

// Filing is a dim_filings row, one per (company, filing_type, fiscal_year_end).
type Filing struct {
	ID                 int64      `db:"id"`
	CompanyID          int64      `db:"company_id"`
	Ticker             string     `db:"ticker"`
	FilingType         FilingType `db:"filing_type"`
	FiscalYearEnd      time.Time  `db:"fiscal_year_end"`
	FilingDate         time.Time  `db:"filing_date"`
	AccessionNumber    string     `db:"accession_number"`
	SourceURL          string     `db:"source_url"`
	ExtractionTime     time.Time  `db:"extraction_time"`
	ValidationScore    float64    `db:"validation_score"`
	CompletenessScore  float64    `db:"completeness_score"`
}

// RunSummary reports the outcome of a single run_pipeline invocation, in the
// spirit of the teacher's data.RunSummary used to signal provider import
// completion back to the orchestrator.
type RunSummary struct {
	Ticker          string
	Year            int
	FilingType      FilingType
	FilingID        int64
	StartTime       time.Time
	EndTime         time.Time
	NumFacts        int
	NumWarnings     int
	ValidationScore float64
	Err             error
}
