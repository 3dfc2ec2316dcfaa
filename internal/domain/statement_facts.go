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

// StatementFact is one line of a denormalised per-statement fact table
// (fact_income_statement, fact_balance_sheet, fact_cash_flow,
// fact_comprehensive_income, fact_equity_statement). C6 builds these from a
// filing's primary facts and main-item statement placements so a statement
// can be rendered with one table scan instead of re-joining fact,
// dim_concepts and statement_item on every read.
type StatementFact struct {
	FilingID        int64            `db:"filing_id"`
	CompanyID       int64            `db:"company_id"`
	PeriodID        int64            `db:"period_id"`
	DimensionID     *int64           `db:"dimension_id"`
	ConceptQName    string           `db:"concept"`
	NormalizedLabel string           `db:"normalized_label"`
	DisplayOrder    int              `db:"display_order"`
	IsHeader        bool             `db:"is_header"`
	Side            BalanceSheetSide `db:"side"`
	ValueNumeric    *float64         `db:"value_numeric"`
}
