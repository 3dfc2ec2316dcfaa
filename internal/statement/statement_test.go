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
package statement

import (
	"testing"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/taxonomy"
)

func TestClassifyRole(t *testing.T) {
	cases := map[string]domain.StatementType{
		"http://abc.com/role/CONSOLIDATEDBALANCESHEETS":            domain.StatementBalanceSheet,
		"http://abc.com/role/CONSOLIDATEDSTATEMENTSOFOPERATIONS":   domain.StatementIncome,
		"http://abc.com/role/CONSOLIDATEDSTATEMENTSOFCASHFLOWS":    domain.StatementCashFlow,
		"http://abc.com/role/ComprehensiveIncome":                  domain.StatementComprehensiveIncome,
		"http://abc.com/role/StockholdersEquity":                   domain.StatementEquity,
		"http://abc.com/role/SomeDisclosureNote":                   domain.StatementNotes,
	}
	for role, want := range cases {
		if got := ClassifyRole(role); got != want {
			t.Errorf("ClassifyRole(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestAdjustOCISign(t *testing.T) {
	if got := AdjustOCISign("us-gaap:ReclassificationAdjustment", 100); got != -100 {
		t.Errorf("expected sign reversal, got %v", got)
	}
	if got := AdjustOCISign("us-gaap:ForeignCurrencyTranslation", 100); got != 100 {
		t.Errorf("expected no sign change, got %v", got)
	}
}

func TestBalanceSheetSideOf(t *testing.T) {
	if BalanceSheetSideOf("us-gaap:Assets") != domain.SideAssets {
		t.Error("expected Assets on asset side")
	}
	if BalanceSheetSideOf("us-gaap:Liabilities") != domain.SideLiabilitiesEquity {
		t.Error("expected Liabilities on liabilities_equity side")
	}
	if BalanceSheetSideOf("us-gaap:StockholdersEquity") != domain.SideLiabilitiesEquity {
		t.Error("expected StockholdersEquity on liabilities_equity side")
	}
}

func TestAdjustEPSOrderPushesEPSToEnd(t *testing.T) {
	items := []Item{
		{ConceptQName: "us-gaap:EarningsPerShareBasic", PresOrder: 1},
		{ConceptQName: "us-gaap:NetIncomeLoss", PresOrder: 5},
		{ConceptQName: "us-gaap:Revenues", PresOrder: 2},
	}
	adjustEPSOrder(items)

	for _, it := range items {
		if it.ConceptQName == "us-gaap:EarningsPerShareBasic" {
			if it.PresOrder <= 5 {
				t.Errorf("expected EPS order pushed past max existing order, got %v", it.PresOrder)
			}
		}
	}
}

func TestInferHierarchyLevel(t *testing.T) {
	cases := map[string]domain.HierarchyLevel{
		"us-gaap:TotalLiabilitiesAndStockholdersEquity": domain.LevelStatementTotal,
		"us-gaap:TotalAssets":                            domain.LevelStatementTotal,
		"us-gaap:AssetsCurrent":                          domain.LevelSectionTotal,
		"us-gaap:AssetsNoncurrent":                       domain.LevelSectionTotal,
		"us-gaap:LiabilitiesNoncurrent":                  domain.LevelSectionTotal,
		"us-gaap:AccruedLiabilitiesCurrent":               domain.LevelSectionTotal,
		"us-gaap:OtherAssetsNoncurrent":                   domain.LevelSectionTotal,
		"us-gaap:TradeAccountsPayable":                     domain.LevelSubtotal,
		"us-gaap:EmployeeRelatedLiabilitiesCurrent":        domain.LevelSectionTotal,
		"us-gaap:PrepaidExpenses":                          domain.LevelDetail,
		"us-gaap:NetIncomeLoss":                            domain.LevelDetail,
	}
	for qname, want := range cases {
		if got := InferHierarchyLevel(qname); got != want {
			t.Errorf("InferHierarchyLevel(%q) = %v, want %v", qname, got, want)
		}
	}
}

func TestArcsByRoleGroupsByRoleURI(t *testing.T) {
	concepts := map[string]*taxonomy.ConceptMeta{
		"us-gaap:Assets": {Href: "us-gaap:Assets"},
		"us-gaap:Cash":   {Href: "us-gaap:Cash"},
	}
	idx, err := taxonomy.Build("us-gaap-2023", concepts, map[string][]byte{
		"pre": []byte(`<?xml version="1.0"?>
<linkbase>
  <presentationLink xlink:role="http://abc.com/role/BalanceSheet">
    <loc xlink:label="assets" xlink:href="us-gaap:Assets"/>
    <loc xlink:label="cash" xlink:href="us-gaap:Cash"/>
    <presentationArc xlink:from="assets" xlink:to="cash" order="1"/>
  </presentationLink>
</linkbase>`),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	byRole := ArcsByRole(idx)
	arcs, ok := byRole["http://abc.com/role/BalanceSheet"]
	if !ok || len(arcs) != 1 {
		t.Fatalf("expected one arc under BalanceSheet role, got %v", byRole)
	}
	if arcs[0].ParentHref != "us-gaap:Assets" || arcs[0].ChildHref != "us-gaap:Cash" {
		t.Errorf("unexpected arc %+v", arcs[0])
	}
}
