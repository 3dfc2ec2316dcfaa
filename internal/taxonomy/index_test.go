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
package taxonomy

import (
	"sort"
	"testing"
)

const testLabelLinkbase = `<?xml version="1.0"?>
<linkbase>
  <labelLink>
    <loc xlink:label="loc_assets" xlink:href="us-gaap:Assets"/>
    <loc xlink:label="loc_cash" xlink:href="us-gaap:CashAndCashEquivalents"/>
    <label xlink:label="label_assets" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en-US">Assets</label>
    <label xlink:label="label_cash" xlink:role="http://www.xbrl.org/2003/role/label" xml:lang="en-US">Cash and Cash Equivalents</label>
    <labelArc xlink:from="loc_assets" xlink:to="label_assets"/>
    <labelArc xlink:from="loc_cash" xlink:to="label_cash"/>
  </labelLink>
</linkbase>`

const testReferenceLinkbase = `<?xml version="1.0"?>
<linkbase>
  <referenceLink>
    <loc xlink:label="loc_assets" xlink:href="us-gaap:Assets"/>
    <loc xlink:label="loc_assets_alt" xlink:href="us-gaap:AssetsTotal"/>
    <reference xlink:label="ref1">
      <Publisher>FASB</Publisher>
      <Name>Concepts Statement</Name>
      <Number>6</Number>
      <Paragraph>25</Paragraph>
    </reference>
    <referenceArc xlink:from="loc_assets" xlink:to="ref1"/>
    <referenceArc xlink:from="loc_assets_alt" xlink:to="ref1"/>
  </referenceLink>
</linkbase>`

func TestParseLabelLinkbase(t *testing.T) {
	labels, err := parseLabelLinkbase([]byte(testLabelLinkbase))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}

	byHref := map[string]string{}
	for _, l := range labels {
		byHref[l.ConceptHref] = l.Text
	}
	if byHref["us-gaap:Assets"] != "Assets" {
		t.Errorf("expected Assets label, got %q", byHref["us-gaap:Assets"])
	}
	if byHref["us-gaap:CashAndCashEquivalents"] != "Cash and Cash Equivalents" {
		t.Errorf("expected Cash label, got %q", byHref["us-gaap:CashAndCashEquivalents"])
	}
}

func TestParseReferenceLinkbase(t *testing.T) {
	refs, err := parseReferenceLinkbase([]byte(testReferenceLinkbase))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 reference arcs, got %d", len(refs))
	}
	for _, r := range refs {
		if r.Publisher != "FASB" || r.Number != "6" || r.Paragraph != "25" {
			t.Errorf("unexpected reference parts: %+v", r)
		}
	}
}

func TestBuildEquivalenceGroups(t *testing.T) {
	concepts := map[string]*ConceptMeta{
		"us-gaap:Assets":      {Href: "us-gaap:Assets", Name: "Assets"},
		"us-gaap:AssetsTotal": {Href: "us-gaap:AssetsTotal", Name: "AssetsTotal"},
	}

	idx, err := Build("us-gaap-2023", concepts, map[string][]byte{
		"ref": []byte(testReferenceLinkbase),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	equivs := idx.EquivalentsOf("us-gaap:Assets")
	sort.Strings(equivs)
	if len(equivs) != 1 || equivs[0] != "us-gaap:AssetsTotal" {
		t.Errorf("expected [us-gaap:AssetsTotal], got %v", equivs)
	}
}

func TestLabelFallbackGroups(t *testing.T) {
	concepts := map[string]*ConceptMeta{
		"us-gaap:Assets":    {Href: "us-gaap:Assets", Name: "Assets"},
		"custom:TotalAssets": {Href: "custom:TotalAssets", Name: "TotalAssets"},
	}

	idx, err := Build("mixed-2023", concepts, map[string][]byte{
		"lab": []byte(`<?xml version="1.0"?>
<linkbase>
  <labelLink>
    <loc xlink:label="l1" xlink:href="us-gaap:Assets"/>
    <loc xlink:label="l2" xlink:href="custom:TotalAssets"/>
    <label xlink:label="lb1" xlink:role="http://www.xbrl.org/2003/role/label">Assets</label>
    <label xlink:label="lb2" xlink:role="http://www.xbrl.org/2003/role/label">assets</label>
    <labelArc xlink:from="l1" xlink:to="lb1"/>
    <labelArc xlink:from="l2" xlink:to="lb2"/>
  </labelLink>
</linkbase>`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	equivs := idx.LabelEquivalentsOf("us-gaap:Assets")
	if len(equivs) != 1 || equivs[0] != "custom:TotalAssets" {
		t.Errorf("expected [custom:TotalAssets], got %v", equivs)
	}
}

func TestCacheStoreLoadRoundTrip(t *testing.T) {
	concepts := map[string]*ConceptMeta{
		"us-gaap:Assets": {Href: "us-gaap:Assets", Name: "Assets", BalanceType: "debit"},
	}
	idx, err := Build("us-gaap-2023", concepts, nil)
	if err != nil {
		t.Fatalf("unexpected error building index: %v", err)
	}

	cache := NewCache(t.TempDir())
	if err := cache.Store(idx); err != nil {
		t.Fatalf("unexpected error storing: %v", err)
	}

	got, ok := cache.Load("us-gaap-2023")
	if !ok {
		t.Fatal("expected cache hit after store")
	}
	meta, ok := got.Lookup("us-gaap:Assets")
	if !ok {
		t.Fatal("expected concept to round-trip")
	}
	if meta.BalanceType != "debit" {
		t.Errorf("expected debit balance type, got %q", meta.BalanceType)
	}
}
