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

// Severity is the outcome class of a single validation check.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// CheckResult is one row of the C8 report: a single named check, possibly
// with several per-violation breakdowns.
type CheckResult struct {
	Name       string       `db:"check_name"`
	Passed     bool         `db:"passed"`
	Severity   Severity     `db:"severity"`
	Expected   *float64     `db:"expected"`
	Actual     *float64     `db:"actual"`
	Difference *float64     `db:"difference"`
	Detail     string       `db:"detail"`
	Violations []Violation  `db:"-"`
}

// Violation is a single failing instance backing a CheckResult, e.g. one
// company/fiscal-year pair that failed the balance-sheet equation.
type Violation struct {
	Company    string
	FiscalYear int
	Concept    string
	Expected   float64
	Actual     float64
	Difference float64
	Severity   Severity
	Detail     string
}

// Report is the structured output of C8's validate(db) entry point.
type Report struct {
	FilingID  int64
	Checks    []CheckResult
	Score     float64 // weighted pass rate
}

// CheckWeight assigns the weight each named check contributes to the
// report's overall score. Checks not listed default to 1.
var CheckWeight = map[string]float64{
	"balance_sheet_equation":          3,
	"universal_metrics_completeness":  3,
	"normalization_conflicts":         2,
	"user_facing_duplicates":          2,
	"calculation_relationship_audit":  2,
}
