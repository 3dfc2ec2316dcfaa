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
package validate

import (
	"math"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// CheckGrossProfitMargin verifies gross_profit = revenue - cost_of_revenue
// where all three are reported in the same context.
func CheckGrossProfitMargin(facts []*domain.Fact, normalized map[string]string, contexts []string) domain.CheckResult {
	result := domain.CheckResult{Name: "gross_profit_margin", Severity: domain.SeverityWarning}
	passed := true

	for _, ctxID := range contexts {
		row := indexByLabel(facts, ctxID, normalized)
		revenue, ok1 := row.value("revenue")
		cost, ok2 := row.value("cost_of_revenue")
		gross, ok3 := row.value("gross_profit")
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		diff := math.Abs(gross - (revenue - cost))
		if diff > tolerance {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept:    "gross_profit",
				Expected:   revenue - cost,
				Actual:     gross,
				Difference: diff,
				Severity:   domain.SeverityWarning,
				Detail:     "gross profit != revenue - cost of revenue in context " + ctxID,
			})
		}
	}

	result.Passed = passed
	return result
}

// CheckOperatingIncomeIdentity verifies operating_income against both
// common reporting shapes: revenue - operating_expenses, or
// gross_profit - operating_expenses when cost_of_revenue is broken out
// separately from SG&A/R&D.
func CheckOperatingIncomeIdentity(facts []*domain.Fact, normalized map[string]string, contexts []string) domain.CheckResult {
	result := domain.CheckResult{Name: "operating_income_identity", Severity: domain.SeverityWarning}
	passed := true

	for _, ctxID := range contexts {
		row := indexByLabel(facts, ctxID, normalized)
		opIncome, ok := row.value("operating_income")
		if !ok {
			continue
		}

		if gross, ok1 := row.value("gross_profit"); ok1 {
			if opex, ok2 := row.value("operating_expenses"); ok2 {
				diff := math.Abs(opIncome - (gross - opex))
				if diff > tolerance {
					passed = false
					result.Violations = append(result.Violations, domain.Violation{
						Concept: "operating_income", Expected: gross - opex, Actual: opIncome,
						Difference: diff, Severity: domain.SeverityWarning,
						Detail: "operating income != gross profit - operating expenses in context " + ctxID,
					})
				}
				continue
			}
		}

		if revenue, ok1 := row.value("revenue"); ok1 {
			if opex, ok2 := row.value("operating_expenses"); ok2 {
				diff := math.Abs(opIncome - (revenue - opex))
				if diff > tolerance {
					passed = false
					result.Violations = append(result.Violations, domain.Violation{
						Concept: "operating_income", Expected: revenue - opex, Actual: opIncome,
						Difference: diff, Severity: domain.SeverityWarning,
						Detail: "operating income != revenue - operating expenses in context " + ctxID,
					})
				}
			}
		}
	}

	result.Passed = passed
	return result
}

// totalCash sums cash_and_equivalents and restricted_cash (when reported
// separately) at an instant context, since the balance-sheet "ending total
// cash" a cash-flow statement reconciles against includes restricted cash by
// convention (ASU 2016-18).
func totalCash(facts []*domain.Fact, ctxID string, normalized map[string]string) (float64, bool) {
	row := indexByLabel(facts, ctxID, normalized)
	cash, ok := row.value("cash_and_equivalents")
	if !ok {
		return 0, false
	}
	restricted, _ := row.value("restricted_cash")
	return cash + restricted, true
}

// CheckCashFlowReconciliation verifies operating + investing + financing
// cash flows for a fiscal year sum to the actual change in total cash
// (ending total cash at the year's closing instant minus beginning total
// cash at its opening instant), rather than trusting a separately reported
// change_in_cash fact, which some filers omit, round independently, or tag
// inconsistently with the balance-sheet cash lines.
func CheckCashFlowReconciliation(facts []*domain.Fact, normalized map[string]string, years []FiscalYearContexts) domain.CheckResult {
	result := domain.CheckResult{Name: "cash_flow_reconciliation", Severity: domain.SeverityWarning}
	passed := true

	for _, y := range years {
		row := indexByLabel(facts, y.DurationCtx, normalized)
		op, ok1 := row.value("operating_cash_flow")
		inv, ok2 := row.value("investing_cash_flow")
		fin, ok3 := row.value("financing_cash_flow")
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		endCash, ok4 := totalCash(facts, y.EndCtx, normalized)
		beginCash, ok5 := totalCash(facts, y.BeginCtx, normalized)
		if !ok4 || !ok5 {
			continue
		}

		change := endCash - beginCash
		diff := math.Abs(change - (op + inv + fin))
		if diff > tolerance {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept: "change_in_cash", Expected: op + inv + fin, Actual: change,
				Difference: diff, Severity: domain.SeverityWarning,
				Detail: "operating+investing+financing cash flows do not sum to ending-minus-beginning total cash between " + y.BeginCtx + " and " + y.EndCtx,
			})
		}
	}

	result.Passed = passed
	return result
}

// retainedEarningsAdjustmentLabels are the optional, less-common rollforward
// terms beyond net income and dividends (treasury stock retirements,
// reclassifications out of AOCI, pension remeasurements, FX translation,
// and catch-all equity adjustments). When every one of them is present for a
// fiscal year, the rollforward has no unmodeled terms left to absorb a
// mismatch, so a large discrepancy is trusted as a genuine data problem
// rather than an incomplete formula.
var retainedEarningsAdjustmentLabels = []string{
	"treasury_stock_retirement",
	"reclassifications_from_aoci",
	"pension_adjustments_to_re",
	"fx_translation_to_re",
	"other_equity_adjustments",
}

// materialDiffRatio is the fraction of the expected rollforward value a
// mismatch must exceed, with full adjustment data present, to be treated as
// an error rather than a warning.
const materialDiffRatio = 0.10

// CheckRetainedEarningsRollforward verifies ending = beginning + net_income
// - dividends + known adjustments for each fiscal year's adjoining
// beginning/ending instants. When NetIncomeLoss is reported only as
// dimension-member breakdowns (e.g. parent vs. noncontrolling interest) with
// no standalone consolidated fact, the consolidated figure is derived as the
// sum of those members rather than skipping the year entirely. A mismatch is
// only escalated to an error when every known adjustment term is present
// (so there's no unmodeled term left to blame) and the discrepancy exceeds
// materialDiffRatio of the expected value; otherwise it is reported as a
// warning.
func CheckRetainedEarningsRollforward(facts []*domain.Fact, normalized map[string]string, years []FiscalYearContexts) domain.CheckResult {
	result := domain.CheckResult{Name: "retained_earnings_rollforward", Severity: domain.SeverityWarning}
	passed := true
	worstSeverity := domain.SeverityWarning

	for _, y := range years {
		if y.BeginCtx == "" || y.EndCtx == "" {
			continue
		}
		endRow := indexByLabel(facts, y.EndCtx, normalized)
		beginRow := indexByLabel(facts, y.BeginCtx, normalized)

		ending, ok1 := endRow.value("retained_earnings")
		beginning, ok2 := beginRow.value("retained_earnings")
		if !ok1 || !ok2 {
			continue
		}

		netIncome, ok3 := consolidatedValue(facts, y.EndCtx, "net_income", normalized)
		if !ok3 {
			netIncome, ok3 = sumByLabel(facts, y.EndCtx, "net_income", normalized)
		}
		if !ok3 {
			continue
		}
		dividends, _ := endRow.value("dividends_declared")

		var adjustments float64
		present := 0
		for _, label := range retainedEarningsAdjustmentLabels {
			if v, ok := endRow.value(label); ok {
				adjustments += v
				present++
			}
		}
		fullAdjustmentData := present == len(retainedEarningsAdjustmentLabels)

		expected := beginning + netIncome - dividends + adjustments
		diff := math.Abs(ending - expected)
		if diff <= tolerance {
			continue
		}

		passed = false
		severity := domain.SeverityWarning
		if fullAdjustmentData && expected != 0 && diff/math.Abs(expected) > materialDiffRatio {
			severity = domain.SeverityError
			worstSeverity = domain.SeverityError
		}
		result.Violations = append(result.Violations, domain.Violation{
			Concept: "retained_earnings", Expected: expected, Actual: ending,
			Difference: diff, Severity: severity,
			Detail: "retained earnings rollforward mismatch between " + y.BeginCtx + " and " + y.EndCtx,
		})
	}

	result.Passed = passed
	result.Severity = worstSeverity
	return result
}
