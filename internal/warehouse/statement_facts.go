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
package warehouse

import (
	"context"
	"fmt"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// statementFactTables maps a statement type to the denormalised fact table
// C6 populates for it. Statement types with no dedicated table (notes,
// other) are silently skipped by SaveStatementFacts.
var statementFactTables = map[domain.StatementType]string{
	domain.StatementIncome:              "fact_income_statement",
	domain.StatementBalanceSheet:        "fact_balance_sheet",
	domain.StatementCashFlow:            "fact_cash_flow",
	domain.StatementComprehensiveIncome: "fact_comprehensive_income",
	domain.StatementEquity:              "fact_equity_statement",
}

// SaveStatementFacts writes rows into the denormalised fact table for
// stmt. The table name comes from the fixed statementFactTables map rather
// than caller input, so building the INSERT with fmt.Sprintf carries no
// injection risk.
func (w *Warehouse) SaveStatementFacts(ctx context.Context, stmt domain.StatementType, rows []domain.StatementFact) error {
	table, ok := statementFactTables[stmt]
	if !ok || len(rows) == 0 {
		return nil
	}

	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save %s facts: %w", table, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	query := fmt.Sprintf(`
		INSERT INTO %s (filing_id, company_id, period_id, dimension_id, concept, normalized_label, display_order, is_header, side, value_numeric)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT ON CONSTRAINT %s_business_key DO UPDATE SET
			value_numeric = EXCLUDED.value_numeric,
			display_order = EXCLUDED.display_order,
			normalized_label = EXCLUDED.normalized_label`, table, table)

	for _, r := range rows {
		if _, err := tx.Exec(ctx, query,
			r.FilingID, r.CompanyID, r.PeriodID, r.DimensionID, r.ConceptQName, r.NormalizedLabel,
			r.DisplayOrder, r.IsHeader, r.Side, r.ValueNumeric); err != nil {
			return fmt.Errorf("save %s facts: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save %s facts: %w", table, err)
	}
	return nil
}
