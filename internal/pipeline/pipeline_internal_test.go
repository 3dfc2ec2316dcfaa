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
package pipeline

import (
	"testing"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/taxonomy"
)

func buildCalcTestIndex(t *testing.T) *taxonomy.Index {
	t.Helper()
	concepts := map[string]*taxonomy.ConceptMeta{
		"us-gaap:Assets":        {Href: "us-gaap:Assets"},
		"us-gaap:AssetsCurrent": {Href: "us-gaap:AssetsCurrent"},
	}
	idx, err := taxonomy.Build("us-gaap-2023", concepts, map[string][]byte{
		"cal": []byte(`<?xml version="1.0"?>
<linkbase>
  <calculationLink>
    <loc xlink:label="p" xlink:href="us-gaap:Assets"/>
    <loc xlink:label="c" xlink:href="us-gaap:AssetsCurrent"/>
    <calculationArc xlink:from="p" xlink:to="c" weight="-1" order="1"/>
  </calculationLink>
</linkbase>`),
	})
	if err != nil {
		t.Fatalf("unexpected error building index: %v", err)
	}
	return idx
}

func TestCalcRelsForInvertsChildToParentArcs(t *testing.T) {
	idx := buildCalcTestIndex(t)
	value := 100.0
	facts := []*domain.Fact{
		{ConceptQName: "us-gaap:AssetsCurrent", ContextID: "C1", ValueNumeric: &value, IsPrimary: true},
	}

	rels := calcRelsFor(facts, idx)
	if len(rels) != 1 {
		t.Fatalf("expected 1 calc relationship, got %d", len(rels))
	}
	rel := rels[0]
	if rel.ParentQName != "us-gaap:Assets" || rel.ChildQName != "us-gaap:AssetsCurrent" {
		t.Errorf("unexpected relationship %+v", rel)
	}
	if rel.Weight != domain.WeightNegative {
		t.Errorf("expected negative weight from a -1 calc arc, got %v", rel.Weight)
	}
}

func TestCalcRelsForDedupesRepeatedConcepts(t *testing.T) {
	idx := buildCalcTestIndex(t)
	v1, v2 := 100.0, 50.0
	facts := []*domain.Fact{
		{ConceptQName: "us-gaap:AssetsCurrent", ContextID: "C1", ValueNumeric: &v1, IsPrimary: true},
		{ConceptQName: "us-gaap:AssetsCurrent", ContextID: "C2", ValueNumeric: &v2, IsPrimary: true},
	}

	rels := calcRelsFor(facts, idx)
	if len(rels) != 1 {
		t.Errorf("expected the repeated concept to yield one relationship, got %d", len(rels))
	}
}

func TestBuildPresRelsClassifiesStatementFromRole(t *testing.T) {
	arcsByRole := map[string][]taxonomy.PresArc{
		"http://abc.com/role/CONSOLIDATEDBALANCESHEETS": {
			{ParentHref: "us-gaap:Assets", ChildHref: "us-gaap:Cash", Order: 1},
		},
	}

	rels := buildPresRels(arcsByRole)
	if len(rels) != 1 {
		t.Fatalf("expected 1 presentation relationship, got %d", len(rels))
	}
	if rels[0].StatementType != domain.StatementBalanceSheet {
		t.Errorf("expected balance sheet statement type, got %v", rels[0].StatementType)
	}
}

func TestPreferredLabelOfPrefersArcRoleOverStandardLabel(t *testing.T) {
	meta := &taxonomy.ConceptMeta{
		Href: "us-gaap:Assets",
		Labels: []taxonomy.LabelArc{
			{Role: "http://www.xbrl.org/2003/role/label", Text: "Assets"},
			{Role: "http://www.xbrl.org/2003/role/totalLabel", Text: "Total assets"},
		},
		PresParents: []taxonomy.PresArc{
			{ParentHref: "us-gaap:AssetsAbstract", ChildHref: "us-gaap:Assets", PreferredLabel: "http://www.xbrl.org/2003/role/totalLabel"},
		},
	}

	if got := preferredLabelOf(meta); got != "Total assets" {
		t.Errorf("expected preferred label to follow the arc's preferredLabel role, got %q", got)
	}
}

func TestPreferredLabelOfFallsBackToStandardLabel(t *testing.T) {
	meta := &taxonomy.ConceptMeta{
		Href: "us-gaap:Cash",
		Labels: []taxonomy.LabelArc{
			{Role: "http://www.xbrl.org/2003/role/label", Text: "Cash"},
		},
	}

	if got := preferredLabelOf(meta); got != "Cash" {
		t.Errorf("expected fallback to standard label, got %q", got)
	}
}

func TestCalcWeightOfSignsWeight(t *testing.T) {
	if calcWeightOf(1) != domain.WeightPositive {
		t.Error("expected positive weight for 1")
	}
	if calcWeightOf(-1) != domain.WeightNegative {
		t.Error("expected negative weight for -1")
	}
}
