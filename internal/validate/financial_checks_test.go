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
	"testing"
	"time"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

func instant(t time.Time) *domain.TimePeriod {
	return &domain.TimePeriod{Instant: &t}
}

func duration(start, end time.Time, fy int) *domain.TimePeriod {
	return &domain.TimePeriod{Start: &start, End: &end, FiscalYear: fy}
}

func TestBuildFiscalYearContextsMatchesAdjacentInstants(t *testing.T) {
	begin := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	periods := map[string]*domain.TimePeriod{
		"I-BEGIN": instant(begin),
		"I-END":   instant(end),
		"D-FY23":  duration(begin, end, 2023),
	}

	years := BuildFiscalYearContexts(periods)
	if len(years) != 1 {
		t.Fatalf("expected 1 fiscal year context, got %d", len(years))
	}
	y := years[0]
	if y.BeginCtx != "I-BEGIN" || y.EndCtx != "I-END" || y.DurationCtx != "D-FY23" {
		t.Errorf("unexpected context mapping: %+v", y)
	}
}

func TestBuildFiscalYearContextsSkipsUnmatchedDuration(t *testing.T) {
	begin := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	periods := map[string]*domain.TimePeriod{
		"I-END":  instant(end),
		"D-FY23": duration(begin, end, 2023),
	}

	years := BuildFiscalYearContexts(periods)
	if len(years) != 0 {
		t.Errorf("expected no fiscal year context without a matching beginning instant, got %d", len(years))
	}
}

func TestCheckCashFlowReconciliationUsesBalanceSheetDelta(t *testing.T) {
	normalized := map[string]string{
		"us-gaap:NetCashProvidedByUsedInOperatingActivities": "operating_cash_flow",
		"us-gaap:NetCashProvidedByUsedInInvestingActivities": "investing_cash_flow",
		"us-gaap:NetCashProvidedByUsedInFinancingActivities": "financing_cash_flow",
		"us-gaap:CashAndCashEquivalentsAtCarryingValue":      "cash_and_equivalents",
	}
	years := []FiscalYearContexts{{FiscalYear: 2023, DurationCtx: "D", BeginCtx: "B", EndCtx: "E"}}

	facts := []*domain.Fact{
		fact("us-gaap:NetCashProvidedByUsedInOperatingActivities", "D", 100),
		fact("us-gaap:NetCashProvidedByUsedInInvestingActivities", "D", -40),
		fact("us-gaap:NetCashProvidedByUsedInFinancingActivities", "D", -10),
		fact("us-gaap:CashAndCashEquivalentsAtCarryingValue", "B", 200),
		fact("us-gaap:CashAndCashEquivalentsAtCarryingValue", "E", 250),
	}

	result := CheckCashFlowReconciliation(facts, normalized, years)
	if !result.Passed {
		t.Errorf("expected reconciliation to pass (100-40-10=50, 250-200=50), violations: %+v", result.Violations)
	}

	facts[4] = fact("us-gaap:CashAndCashEquivalentsAtCarryingValue", "E", 999)
	result = CheckCashFlowReconciliation(facts, normalized, years)
	if result.Passed {
		t.Error("expected reconciliation to fail when ending cash disagrees with the cash flow sum")
	}
}

func TestCheckRetainedEarningsRollforwardDerivesFromDimensionalNetIncome(t *testing.T) {
	normalized := map[string]string{
		"us-gaap:RetainedEarningsAccumulatedDeficit": "retained_earnings",
		"us-gaap:NetIncomeLoss":                      "net_income",
		"us-gaap:DividendsCommonStockCash":           "dividends_declared",
	}
	years := []FiscalYearContexts{{FiscalYear: 2023, DurationCtx: "D", BeginCtx: "B", EndCtx: "E"}}

	parentShare := float64(60)
	nciShare := float64(40)
	dimID := int64(1)
	facts := []*domain.Fact{
		fact("us-gaap:RetainedEarningsAccumulatedDeficit", "B", 1000),
		fact("us-gaap:RetainedEarningsAccumulatedDeficit", "E", 1090),
		fact("us-gaap:DividendsCommonStockCash", "E", 10),
		{ConceptQName: "us-gaap:NetIncomeLoss", ContextID: "E", ValueNumeric: &parentShare, IsPrimary: true, DimensionID: &dimID},
		{ConceptQName: "us-gaap:NetIncomeLoss", ContextID: "E", ValueNumeric: &nciShare, IsPrimary: true, DimensionID: &dimID},
	}

	result := CheckRetainedEarningsRollforward(facts, normalized, years)
	if !result.Passed {
		t.Errorf("expected rollforward to pass using summed dimensional net income (1000+100-10=1090), violations: %+v", result.Violations)
	}
}

func TestCheckRetainedEarningsRollforwardSeverityEscalatesWithFullAdjustmentData(t *testing.T) {
	normalized := map[string]string{
		"us-gaap:RetainedEarningsAccumulatedDeficit":  "retained_earnings",
		"us-gaap:NetIncomeLoss":                       "net_income",
		"us-gaap:DividendsCommonStockCash":            "dividends_declared",
		"us-gaap:TreasuryStockRetiredCostMethodAmount": "treasury_stock_retirement",
		"custom:ReclassFromAOCI":                       "reclassifications_from_aoci",
		"custom:PensionAdj":                            "pension_adjustments_to_re",
		"custom:FXAdj":                                 "fx_translation_to_re",
		"custom:OtherAdj":                              "other_equity_adjustments",
	}
	years := []FiscalYearContexts{{FiscalYear: 2023, DurationCtx: "D", BeginCtx: "B", EndCtx: "E"}}

	facts := []*domain.Fact{
		fact("us-gaap:RetainedEarningsAccumulatedDeficit", "B", 1000),
		fact("us-gaap:RetainedEarningsAccumulatedDeficit", "E", 5000),
		fact("us-gaap:NetIncomeLoss", "E", 100),
		fact("us-gaap:DividendsCommonStockCash", "E", 10),
		fact("us-gaap:TreasuryStockRetiredCostMethodAmount", "E", 1),
		fact("custom:ReclassFromAOCI", "E", 1),
		fact("custom:PensionAdj", "E", 1),
		fact("custom:FXAdj", "E", 1),
		fact("custom:OtherAdj", "E", 1),
	}

	result := CheckRetainedEarningsRollforward(facts, normalized, years)
	if result.Passed {
		t.Fatal("expected a large unexplained gap to fail")
	}
	if result.Severity != domain.SeverityError {
		t.Errorf("expected error severity with full adjustment data and >10%% diff, got %v", result.Severity)
	}
}
