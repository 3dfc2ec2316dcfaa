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

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

func fact(qname, ctx string, value float64) *domain.Fact {
	v := value
	return &domain.Fact{ConceptQName: qname, ContextID: ctx, ValueNumeric: &v, IsPrimary: true, Unit: "USD"}
}

func TestCheckBalanceSheetEquationPassesAndFails(t *testing.T) {
	normalized := map[string]string{
		"us-gaap:Assets": "total_assets", "us-gaap:Liabilities": "total_liabilities", "us-gaap:StockholdersEquity": "total_equity",
	}

	good := []*domain.Fact{
		fact("us-gaap:Assets", "C1", 100),
		fact("us-gaap:Liabilities", "C1", 60),
		fact("us-gaap:StockholdersEquity", "C1", 40),
	}
	result := CheckBalanceSheetEquation(good, normalized, []string{"C1"})
	if !result.Passed {
		t.Errorf("expected balanced equation to pass, violations: %+v", result.Violations)
	}

	bad := []*domain.Fact{
		fact("us-gaap:Assets", "C1", 100),
		fact("us-gaap:Liabilities", "C1", 60),
		fact("us-gaap:StockholdersEquity", "C1", 30),
	}
	result = CheckBalanceSheetEquation(bad, normalized, []string{"C1"})
	if result.Passed {
		t.Error("expected unbalanced equation to fail")
	}
	if len(result.Violations) != 1 {
		t.Errorf("expected 1 violation, got %d", len(result.Violations))
	}
}

func TestCheckUniversalMetricsCompletenessFlagsMissing(t *testing.T) {
	normalized := map[string]string{"us-gaap:Assets": "total_assets"}
	facts := []*domain.Fact{fact("us-gaap:Assets", "C1", 100)}

	result := CheckUniversalMetricsCompleteness(facts, normalized, []string{"total_assets", "revenue"})
	if result.Passed {
		t.Error("expected incomplete metric set to fail")
	}
	if len(result.Violations) != 1 || result.Violations[0].Concept != "revenue" {
		t.Errorf("expected missing revenue violation, got %+v", result.Violations)
	}
}

func TestCheckNormalizationConflictsDetectsDisagreement(t *testing.T) {
	normalized := map[string]string{
		"us-gaap:Revenues":     "revenue",
		"us-gaap:SalesRevenueNet": "revenue",
	}
	facts := []*domain.Fact{
		fact("us-gaap:Revenues", "C1", 100),
		fact("us-gaap:SalesRevenueNet", "C1", 150),
	}
	result := CheckNormalizationConflicts(facts, normalized)
	if result.Passed {
		t.Error("expected conflicting values under same normalized label to fail")
	}
}

func TestCheckUserFacingDuplicatesFlagsMultiplePrimary(t *testing.T) {
	f1 := fact("us-gaap:Assets", "C1", 100)
	f2 := fact("us-gaap:Assets", "C1", 100)
	result := CheckUserFacingDuplicates([]*domain.Fact{f1, f2})
	if result.Passed {
		t.Error("expected duplicate primary facts to fail")
	}
}

func TestRunComputesWeightedScore(t *testing.T) {
	normalized := map[string]string{
		"us-gaap:Assets": "total_assets", "us-gaap:Liabilities": "total_liabilities", "us-gaap:StockholdersEquity": "total_equity",
		"us-gaap:Revenues": "revenue", "us-gaap:NetIncomeLoss": "net_income",
		"us-gaap:NetCashProvidedByUsedInOperatingActivities": "operating_cash_flow",
	}
	facts := []*domain.Fact{
		fact("us-gaap:Assets", "C1", 100),
		fact("us-gaap:Liabilities", "C1", 60),
		fact("us-gaap:StockholdersEquity", "C1", 40),
		fact("us-gaap:Revenues", "C1", 500),
		fact("us-gaap:NetIncomeLoss", "C1", 50),
		fact("us-gaap:NetCashProvidedByUsedInOperatingActivities", "C1", 80),
	}

	report, err := Run(1, facts, normalized, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Score <= 0 || report.Score > 1 {
		t.Errorf("expected score in (0,1], got %v", report.Score)
	}
}
