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

// Package validate implements C8: the suite of cross-checks run against a
// loaded filing to produce its quality report and score.
package validate

import (
	"math"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// tolerance is the rounding slack allowed before a reconciliation check is
// considered failed, since filers round component figures independently.
const tolerance = 1.0

// byLabel indexes facts by normalized label within one context, the shape
// every reconciliation check needs.
type byLabel map[string]*domain.Fact

func indexByLabel(facts []*domain.Fact, contextID string, normalized map[string]string) byLabel {
	out := make(byLabel)
	for _, f := range facts {
		if f.ContextID != contextID || !f.IsPrimary || f.ValueNumeric == nil {
			continue
		}
		label, ok := normalized[f.ConceptQName]
		if !ok {
			continue
		}
		out[label] = f
	}
	return out
}

func (b byLabel) value(label string) (float64, bool) {
	f, ok := b[label]
	if !ok || f.ValueNumeric == nil {
		return 0, false
	}
	return *f.ValueNumeric, true
}

// consolidatedValue looks up label within ctxID restricted to facts with no
// dimension (the whole-company figure), which CheckRetainedEarningsRollforward
// prefers over a dimensional breakdown member reporting under the same
// normalized label.
func consolidatedValue(facts []*domain.Fact, ctxID, label string, normalized map[string]string) (float64, bool) {
	for _, f := range facts {
		if f.ContextID != ctxID || !f.IsPrimary || f.ValueNumeric == nil || f.DimensionID != nil {
			continue
		}
		if normalized[f.ConceptQName] == label {
			return *f.ValueNumeric, true
		}
	}
	return 0, false
}

// sumByLabel sums every fact under ctxID resolving to label, regardless of
// dimension. Used as the fallback when a concept like NetIncomeLoss is only
// reported split across dimension members (e.g. parent vs. noncontrolling
// interest) with no standalone consolidated fact: the consolidated figure is
// the sum of its members.
func sumByLabel(facts []*domain.Fact, ctxID, label string, normalized map[string]string) (float64, bool) {
	var sum float64
	found := false
	for _, f := range facts {
		if f.ContextID != ctxID || !f.IsPrimary || f.ValueNumeric == nil {
			continue
		}
		if normalized[f.ConceptQName] == label {
			sum += *f.ValueNumeric
			found = true
		}
	}
	return sum, found
}

// FiscalYearContexts pairs a fiscal year's duration context (net income,
// cash flows, dividends) with the beginning/ending instant contexts adjacent
// to it (retained earnings, cash balances), so rollforward-style checks know
// which contexts describe the same fiscal year without re-deriving period
// adjacency themselves.
type FiscalYearContexts struct {
	FiscalYear  int
	DurationCtx string
	BeginCtx    string
	EndCtx      string
}

// BuildFiscalYearContexts matches every duration period in periods to the
// instant periods at its start and end date, producing one entry per
// reconcilable fiscal year. Periods lacking a matching instant on either
// side are skipped: a check can't reconcile what it can't locate.
func BuildFiscalYearContexts(periods map[string]*domain.TimePeriod) []FiscalYearContexts {
	instantsByDate := make(map[time.Time]string)
	for ctxID, p := range periods {
		if p.IsInstant() {
			instantsByDate[p.Instant.Truncate(24*time.Hour)] = ctxID
		}
	}

	var out []FiscalYearContexts
	for ctxID, p := range periods {
		if p.IsInstant() || p.Start == nil || p.End == nil {
			continue
		}
		beginCtx, hasBegin := instantsByDate[p.Start.Truncate(24*time.Hour)]
		endCtx, hasEnd := instantsByDate[p.End.Truncate(24*time.Hour)]
		if !hasBegin || !hasEnd {
			continue
		}
		out = append(out, FiscalYearContexts{
			FiscalYear:  p.FiscalYear,
			DurationCtx: ctxID,
			BeginCtx:    beginCtx,
			EndCtx:      endCtx,
		})
	}
	return out
}

// CheckBalanceSheetEquation verifies assets = liabilities + equity per
// instant context, weighted at 3 (the highest-confidence structural check).
func CheckBalanceSheetEquation(facts []*domain.Fact, normalized map[string]string, contexts []string) domain.CheckResult {
	result := domain.CheckResult{Name: "balance_sheet_equation", Severity: domain.SeverityError}
	passed := true

	for _, ctxID := range contexts {
		row := indexByLabel(facts, ctxID, normalized)
		assets, ok1 := row.value("total_assets")
		liab, ok2 := row.value("total_liabilities")
		equity, ok3 := row.value("total_equity")
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		diff := math.Abs(assets - (liab + equity))
		if diff > tolerance {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				FiscalYear: 0,
				Concept:    "total_assets",
				Expected:   liab + equity,
				Actual:     assets,
				Difference: diff,
				Severity:   domain.SeverityError,
				Detail:     "assets != liabilities + equity in context " + ctxID,
			})
		}
	}

	result.Passed = passed
	return result
}

// CheckUniversalMetricsCompleteness verifies every universal metric has at
// least one value across all contexts in the filing.
func CheckUniversalMetricsCompleteness(facts []*domain.Fact, normalized map[string]string, required []string) domain.CheckResult {
	result := domain.CheckResult{Name: "universal_metrics_completeness", Severity: domain.SeverityWarning}
	present := make(map[string]bool)
	for _, f := range facts {
		if !f.IsPrimary {
			continue
		}
		if label, ok := normalized[f.ConceptQName]; ok {
			present[label] = true
		}
	}

	passed := true
	for _, metric := range required {
		if !present[metric] {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept:  metric,
				Severity: domain.SeverityWarning,
				Detail:   "universal metric not reported",
			})
		}
	}
	result.Passed = passed
	return result
}

// CheckNormalizationConflicts flags when two distinct concept QNames
// resolve to the same normalized_label and report different values in the
// same context — a sign that the normalization mapping over-merged them.
func CheckNormalizationConflicts(facts []*domain.Fact, normalized map[string]string) domain.CheckResult {
	result := domain.CheckResult{Name: "normalization_conflicts", Severity: domain.SeverityError}
	type key struct{ ctx, label string }
	seen := make(map[key]*domain.Fact)
	passed := true

	for _, f := range facts {
		if !f.IsPrimary || f.ValueNumeric == nil {
			continue
		}
		label, ok := normalized[f.ConceptQName]
		if !ok {
			continue
		}
		k := key{f.ContextID, label}
		prior, exists := seen[k]
		if !exists {
			seen[k] = f
			continue
		}
		if prior.ConceptQName == f.ConceptQName {
			continue
		}
		if math.Abs(*prior.ValueNumeric-*f.ValueNumeric) > tolerance {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept:  label,
				Expected: *prior.ValueNumeric,
				Actual:   *f.ValueNumeric,
				Severity: domain.SeverityError,
				Detail:   prior.ConceptQName + " vs " + f.ConceptQName + " disagree under " + label,
			})
		}
	}

	result.Passed = passed
	return result
}

// CheckUserFacingDuplicates flags facts sharing (concept, context, rounded
// value) where more than one is still marked primary — a C3 dedup bug, not
// a filing defect, but one C8 should still surface.
func CheckUserFacingDuplicates(facts []*domain.Fact) domain.CheckResult {
	result := domain.CheckResult{Name: "user_facing_duplicates", Severity: domain.SeverityWarning}
	counts := make(map[domain.DedupeKey]int)
	for _, f := range facts {
		if !f.IsPrimary || f.ValueNumeric == nil {
			continue
		}
		key := domain.DedupeKey{ConceptQName: f.ConceptQName, ContextID: f.ContextID, RoundedValue: math.Round(*f.ValueNumeric*100) / 100}
		counts[key]++
	}

	passed := true
	for key, n := range counts {
		if n > 1 {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept:  key.ConceptQName,
				Severity: domain.SeverityWarning,
				Detail:   "more than one primary fact for the same concept/context/value",
			})
		}
	}
	result.Passed = passed
	return result
}

// CheckCalcRelationshipAudit verifies every calc_rel parent/child tie
// actually reconciles against the reported values, flagging arcs whose
// weighted sum doesn't match the parent within tolerance.
func CheckCalcRelationshipAudit(facts []*domain.Fact, rels []domain.CalcRel) domain.CheckResult {
	result := domain.CheckResult{Name: "calculation_relationship_audit", Severity: domain.SeverityWarning}

	byQNameContext := make(map[string]map[string]*domain.Fact)
	for _, f := range facts {
		if !f.IsPrimary || f.ValueNumeric == nil {
			continue
		}
		m, ok := byQNameContext[f.ConceptQName]
		if !ok {
			m = make(map[string]*domain.Fact)
			byQNameContext[f.ConceptQName] = m
		}
		m[f.ContextID] = f
	}

	type group struct {
		parent  string
		ctxID   string
		sum     float64
		hasAll  bool
	}
	groups := make(map[string]*group)

	for _, rel := range rels {
		children := byQNameContext[rel.ChildQName]
		for ctxID, cf := range children {
			key := rel.ParentQName + "|" + ctxID
			g, ok := groups[key]
			if !ok {
				g = &group{parent: rel.ParentQName, ctxID: ctxID, hasAll: true}
				groups[key] = g
			}
			g.sum += float64(rel.Weight) * *cf.ValueNumeric
		}
	}

	passed := true
	for _, g := range groups {
		parentFacts, ok := byQNameContext[g.parent]
		if !ok {
			continue
		}
		parentFact, ok := parentFacts[g.ctxID]
		if !ok || parentFact.ValueNumeric == nil {
			continue
		}
		diff := math.Abs(*parentFact.ValueNumeric - g.sum)
		if diff > tolerance {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept:    g.parent,
				Expected:   g.sum,
				Actual:     *parentFact.ValueNumeric,
				Difference: diff,
				Severity:   domain.SeverityWarning,
				Detail:     "calc children do not sum to parent in context " + g.ctxID,
			})
		}
	}

	result.Passed = passed
	return result
}

// CheckUnitConsistency flags a normalized label reported under more than
// one distinct unit across the filing, which would make cross-context
// arithmetic silently wrong (e.g. mixing USD and USD-in-thousands).
func CheckUnitConsistency(facts []*domain.Fact, normalized map[string]string) domain.CheckResult {
	result := domain.CheckResult{Name: "unit_consistency", Severity: domain.SeverityWarning}
	units := make(map[string]map[string]bool)

	for _, f := range facts {
		if !f.IsPrimary || f.Unit == "" {
			continue
		}
		label, ok := normalized[f.ConceptQName]
		if !ok {
			continue
		}
		set, ok := units[label]
		if !ok {
			set = make(map[string]bool)
			units[label] = set
		}
		set[f.Unit] = true
	}

	passed := true
	for label, set := range units {
		if len(set) > 1 {
			passed = false
			result.Violations = append(result.Violations, domain.Violation{
				Concept:  label,
				Severity: domain.SeverityWarning,
				Detail:   "reported under more than one unit in this filing",
			})
		}
	}
	result.Passed = passed
	return result
}

// UniversalMetrics is the minimum metric set §6.4's completeness check
// requires across every filing, regardless of accounting standard.
var UniversalMetrics = []string{
	"total_assets", "total_liabilities", "total_equity",
	"revenue", "net_income", "operating_cash_flow",
}

// Run executes the full check suite and assembles the weighted-score Report.
// periods is the filing's context-id -> TimePeriod map, used to build the
// fiscal-year-to-adjacent-instant pairing the rollforward-style checks need;
// a nil or empty map simply yields no FiscalYearContexts and those checks
// pass trivially with nothing to reconcile.
func Run(filingID int64, facts []*domain.Fact, normalized map[string]string, calcRels []domain.CalcRel, periods map[string]*domain.TimePeriod) (*domain.Report, error) {
	var merr *multierror.Error

	contexts := distinctContexts(facts)
	years := BuildFiscalYearContexts(periods)

	checks := []domain.CheckResult{
		CheckBalanceSheetEquation(facts, normalized, contexts),
		CheckUniversalMetricsCompleteness(facts, normalized, UniversalMetrics),
		CheckNormalizationConflicts(facts, normalized),
		CheckUserFacingDuplicates(facts),
		CheckCalcRelationshipAudit(facts, calcRels),
		CheckUnitConsistency(facts, normalized),
		CheckGrossProfitMargin(facts, normalized, contexts),
		CheckOperatingIncomeIdentity(facts, normalized, contexts),
		CheckCashFlowReconciliation(facts, normalized, years),
		CheckRetainedEarningsRollforward(facts, normalized, years),
	}

	for _, c := range checks {
		if !c.Passed && c.Severity == domain.SeverityError {
			merr = multierror.Append(merr, domain.ErrValidationFailed)
		}
	}

	report := &domain.Report{FilingID: filingID, Checks: checks, Score: score(checks)}
	return report, merr.ErrorOrNil()
}

func score(checks []domain.CheckResult) float64 {
	var totalWeight, earned float64
	for _, c := range checks {
		w, ok := domain.CheckWeight[c.Name]
		if !ok {
			w = 1
		}
		totalWeight += w
		if c.Passed {
			earned += w
		}
	}
	if totalWeight == 0 {
		return 1
	}
	return earned / totalWeight
}

func distinctContexts(facts []*domain.Fact) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range facts {
		if !seen[f.ContextID] {
			seen[f.ContextID] = true
			out = append(out, f.ContextID)
		}
	}
	return out
}
