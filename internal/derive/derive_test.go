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
package derive

import (
	"testing"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/taxonomy"
)

func buildTestIndex(t *testing.T) *taxonomy.Index {
	t.Helper()
	concepts := map[string]*taxonomy.ConceptMeta{
		"us-gaap:Assets":            {Href: "us-gaap:Assets"},
		"us-gaap:AssetsCurrent":     {Href: "us-gaap:AssetsCurrent"},
		"us-gaap:AssetsNoncurrent":  {Href: "us-gaap:AssetsNoncurrent"},
	}
	idx, err := taxonomy.Build("us-gaap-2023", concepts, map[string][]byte{
		"cal": []byte(`<?xml version="1.0"?>
<linkbase>
  <calculationLink>
    <loc xlink:label="p" xlink:href="us-gaap:Assets"/>
    <loc xlink:label="c1" xlink:href="us-gaap:AssetsCurrent"/>
    <loc xlink:label="c2" xlink:href="us-gaap:AssetsNoncurrent"/>
    <calculationArc xlink:from="p" xlink:to="c1" weight="1" order="1"/>
    <calculationArc xlink:from="p" xlink:to="c2" weight="1" order="2"/>
  </calculationLink>
</linkbase>`),
	})
	if err != nil {
		t.Fatalf("unexpected error building index: %v", err)
	}
	return idx
}

func TestDeriveTotalsSumsCompleteChildren(t *testing.T) {
	idx := buildTestIndex(t)
	current, noncurrent := 100.0, 50.0
	facts := []*domain.Fact{
		{ConceptQName: "us-gaap:AssetsCurrent", ContextID: "FY2023", ValueNumeric: &current, IsPrimary: true},
		{ConceptQName: "us-gaap:AssetsNoncurrent", ContextID: "FY2023", ValueNumeric: &noncurrent, IsPrimary: true},
	}

	derived, audit := DeriveTotals(idx, facts)

	if len(derived) != 1 {
		t.Fatalf("expected 1 derived fact, got %d", len(derived))
	}
	if *derived[0].ValueNumeric != 150 {
		t.Errorf("expected derived total 150, got %v", *derived[0].ValueNumeric)
	}
	if !derived[0].IsCalculated {
		t.Error("expected IsCalculated to be true")
	}

	var found bool
	for _, a := range audit {
		if a.Derived && a.ParentQName == "us-gaap:Assets" {
			found = true
		}
	}
	if !found {
		t.Error("expected an audit entry marking Assets as derived")
	}
}

func TestDeriveTotalsSkipsExplicitTotal(t *testing.T) {
	idx := buildTestIndex(t)
	assets, current, noncurrent := 999.0, 100.0, 50.0
	facts := []*domain.Fact{
		{ConceptQName: "us-gaap:Assets", ContextID: "FY2023", ValueNumeric: &assets, IsPrimary: true},
		{ConceptQName: "us-gaap:AssetsCurrent", ContextID: "FY2023", ValueNumeric: &current, IsPrimary: true},
		{ConceptQName: "us-gaap:AssetsNoncurrent", ContextID: "FY2023", ValueNumeric: &noncurrent, IsPrimary: true},
	}

	derived, _ := DeriveTotals(idx, facts)
	if len(derived) != 0 {
		t.Errorf("expected no derived facts when explicit total present, got %d", len(derived))
	}
}

func TestDeriveTotalsSkipsIncompleteChildren(t *testing.T) {
	idx := buildTestIndex(t)
	current := 100.0
	facts := []*domain.Fact{
		{ConceptQName: "us-gaap:AssetsCurrent", ContextID: "FY2023", ValueNumeric: &current, IsPrimary: true},
	}

	derived, audit := DeriveTotals(idx, facts)
	if len(derived) != 0 {
		t.Errorf("expected no derived facts with incomplete children, got %d", len(derived))
	}
	var incomplete bool
	for _, a := range audit {
		if !a.Derived {
			incomplete = true
		}
	}
	if !incomplete {
		t.Error("expected an audit entry noting incomplete children")
	}
}
