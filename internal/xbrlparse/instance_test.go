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
package xbrlparse

import (
	"testing"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

const testInstance = `<?xml version="1.0"?>
<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:us-gaap="http://fasb.org/us-gaap/2023" xmlns:xbrli="http://www.xbrl.org/2003/instance">
  <xbrli:context id="FY2023">
    <xbrli:entity><xbrli:identifier>0000320193</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2023-09-30</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:context id="FY2023_Q4">
    <xbrli:entity><xbrli:identifier>0000320193</xbrli:identifier></xbrli:entity>
    <xbrli:period>
      <xbrli:startDate>2023-07-01</xbrli:startDate>
      <xbrli:endDate>2023-09-30</xbrli:endDate>
    </xbrli:period>
  </xbrli:context>
  <xbrli:unit id="usd"><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unit>
  <us-gaap:Assets contextRef="FY2023" unitRef="usd" decimals="-6">352755000000</us-gaap:Assets>
  <us-gaap:Revenues contextRef="FY2023_Q4" unitRef="usd" decimals="-6">89498000000</us-gaap:Revenues>
</xbrl>`

func TestParseInstanceContextsAndFacts(t *testing.T) {
	result, err := ParseInstance([]byte(testInstance))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Contexts) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(result.Contexts))
	}
	instantCtx, ok := result.Contexts["FY2023"]
	if !ok || instantCtx.Instant == nil {
		t.Fatalf("expected instant context FY2023, got %+v", instantCtx)
	}
	if instantCtx.Instant.Format("2006-01-02") != "2023-09-30" {
		t.Errorf("expected 2023-09-30, got %s", instantCtx.Instant.Format("2006-01-02"))
	}

	durCtx, ok := result.Contexts["FY2023_Q4"]
	if !ok || durCtx.Start == nil || durCtx.End == nil {
		t.Fatalf("expected duration context FY2023_Q4, got %+v", durCtx)
	}

	if len(result.Facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(result.Facts))
	}
	if result.Units["usd"].Measure != "iso4217:USD" {
		t.Errorf("expected unit measure iso4217:USD, got %q", result.Units["usd"].Measure)
	}
}

func TestParseFilingBuildsFactsWithFiscalYear(t *testing.T) {
	doc, err := ParseFiling([]byte(testInstance), "aapl-10k.xml", "us-gaap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(doc.Facts))
	}

	period, ok := doc.Periods["FY2023"]
	if !ok {
		t.Fatal("expected period for context FY2023")
	}
	if period.FiscalYear != 2023 {
		t.Errorf("expected fiscal year 2023, got %d", period.FiscalYear)
	}
}

func TestDedupeFactsMarksLowestOrderIndexPrimary(t *testing.T) {
	v := 100.0
	facts := []*domain.Fact{
		{ConceptQName: "us-gaap:Assets", ContextID: "FY2023", ValueNumeric: &v, OrderIndex: 5},
		{ConceptQName: "us-gaap:Assets", ContextID: "FY2023", ValueNumeric: &v, OrderIndex: 1},
	}
	dedupeFacts(facts)

	if facts[0].IsPrimary {
		t.Error("expected later order-index fact not primary")
	}
	if !facts[1].IsPrimary {
		t.Error("expected lowest order-index fact to be primary")
	}
}

func TestFiscalYearBoundary(t *testing.T) {
	// Period ending Jan 3 must attribute to the previous fiscal year.
	instance := `<?xml version="1.0"?>
<xbrl xmlns:us-gaap="http://fasb.org/us-gaap/2023" xmlns:xbrli="http://www.xbrl.org/2003/instance">
  <xbrli:context id="C1"><xbrli:entity><xbrli:identifier>x</xbrli:identifier></xbrli:entity>
  <xbrli:period><xbrli:instant>2024-01-03</xbrli:instant></xbrli:period></xbrli:context>
  <us-gaap:Assets contextRef="C1">1</us-gaap:Assets>
</xbrl>`
	doc, err := ParseFiling([]byte(instance), "lly-10k.xml", "us-gaap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	period := doc.Periods["C1"]
	if period.FiscalYear != 2023 {
		t.Errorf("expected fiscal year 2023 for period ending 2024-01-03, got %d", period.FiscalYear)
	}
}
