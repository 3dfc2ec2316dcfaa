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

// Package normalize implements C4: resolving each reported concept to a
// normalized_label shared across companies and taxonomies, so C6/C7/C8 can
// compare "Revenues" across a US-GAAP filer and "Revenue" across an IFRS
// filer without per-taxonomy special casing.
package normalize

import (
	"crypto/md5" //nolint:gosec // business-key hash, not a security boundary
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/taxonomy"
)

// Resolution records how a concept's normalized_label was decided, for the
// audit trail C8's normalization_conflicts check reads back.
type Resolution struct {
	NormalizedLabel string
	Source          string // explicit_mapping | reference_equivalence | calc_child | label_fallback | generated
}

// explicitMappings is the curated allow-list of concept QName -> universal
// metric name. Entries here win over every inferred signal; this is where
// INTENTIONAL_MERGES (two genuinely different concepts that should report
// under one normalized_label) are recorded.
//
// RevenueFromContractWithCustomerExcludingAssessedTax is deliberately absent:
// some filers tag it as their sole top-line revenue concept (no "Revenues"
// total alongside it), but others use it as a calc-linkbase child of
// "Revenues" next to a collaborative-arrangement component. The first case
// falls through to the label fallback; the second is handled by
// fromCalcParent below, which must never collapse it back onto "revenue".
var explicitMappings = map[string]string{
	"us-gaap:Assets":                             "total_assets",
	"us-gaap:Liabilities":                        "total_liabilities",
	"us-gaap:StockholdersEquity":                 "total_equity",
	"us-gaap:Revenues":                           "revenue",
	"us-gaap:SalesRevenueNet":                    "revenue",
	"us-gaap:NetIncomeLoss":                      "net_income",
	"us-gaap:ProfitLoss":                         "net_income",
	"us-gaap:CostOfRevenue":                      "cost_of_revenue",
	"us-gaap:CostOfGoodsAndServicesSold":         "cost_of_revenue",
	"us-gaap:GrossProfit":                        "gross_profit",
	"us-gaap:OperatingIncomeLoss":                "operating_income",
	"us-gaap:OperatingExpenses":                  "operating_expenses",
	"us-gaap:CostsAndExpenses":                   "operating_expenses",
	"us-gaap:CashAndCashEquivalentsAtCarryingValue":                    "cash_and_equivalents",
	"us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents": "cash_and_equivalents",
	"us-gaap:RestrictedCashAndCashEquivalentsAtCarryingValue":          "restricted_cash",
	"us-gaap:CashAndCashEquivalentsPeriodIncreaseDecrease":             "change_in_cash",
	"us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalentsPeriodIncreaseDecreaseIncludingExchangeRateEffect": "change_in_cash",
	"us-gaap:NetCashProvidedByUsedInOperatingActivities": "operating_cash_flow",
	"us-gaap:NetCashProvidedByUsedInInvestingActivities": "investing_cash_flow",
	"us-gaap:NetCashProvidedByUsedInFinancingActivities": "financing_cash_flow",
	"us-gaap:RetainedEarningsAccumulatedDeficit":         "retained_earnings",
	"us-gaap:DividendsCommonStockCash":                   "dividends_declared",
	"us-gaap:Dividends":                                  "dividends_declared",
	"us-gaap:TreasuryStockRetiredCostMethodAmount":       "treasury_stock_retirement",
	"us-gaap:TreasuryStockRetiredParValueMethodAmount":   "treasury_stock_retirement",
	"us-gaap:OtherComprehensiveIncomeReclassificationAdjustmentFromAOCIForSaleOfSecuritiesNetOfTax": "reclassifications_from_aoci",
	"us-gaap:DefinedBenefitPlanAmortizationOfGainsLossesNetOfTax":                                   "pension_adjustments_to_re",
	"us-gaap:CumulativeEffectOfNewAccountingPrincipleInPeriodOfAdoption":                             "other_equity_adjustments",
	"ifrs-full:Assets":      "total_assets",
	"ifrs-full:Liabilities": "total_liabilities",
	"ifrs-full:Equity":      "total_equity",
	"ifrs-full:Revenue":     "revenue",
	"ifrs-full:ProfitLoss":  "net_income",
}

// calcComponentLabels gives a readable, stable label to calc-linkbase child
// concepts that are well-known revenue/expense components rather than
// throwaway extension names, so the forced component-specific label
// fromCalcParent produces reads the way an analyst would expect (e.g. the
// PFE-style "revenue = revenue_from_contracts + revenue_from_collaborative_arrangements"
// split) instead of a raw snake-cased qname.
var calcComponentLabels = map[string]string{
	"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax":                          "revenue_from_contracts",
	"us-gaap:RevenueFromCollaborativeArrangementExcludingRevenueFromContractWithCustomer":   "revenue_from_collaborative_arrangements",
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// standardTaxonomies lists namespaces whose concepts are shared across every
// filer using them, so a bare snake-cased local name is safe to use as-is
// once it falls all the way through to generate(): any genuine collision
// there would mean two official standard concepts share a local name, which
// doesn't happen in practice. Extension/custom taxonomies get no such
// guarantee -- two unrelated filers' "CustomMetric" extensions are exactly
// the case generate()'s hash suffix exists to keep apart.
var standardTaxonomies = map[string]bool{
	"us-gaap":   true,
	"ifrs-full": true,
	"dei":       true,
	"srt":       true,
}

// maxGeneratedLabelLength is the longest snake_case base label generate()
// will return bare for a standard taxonomy; anything longer gets an 8-hex
// hash suffix appended to the full, untruncated base (§4.4 step 5).
const maxGeneratedLabelLength = 40

// Resolve decides qname's normalized_label following the priority order:
// explicit mapping, reference-tuple equivalence to an already-resolved
// concept, calc-linkbase child-of-total detection, standard-label fallback
// grouping, then a generated snake_case name (hash-suffixed unless it is a
// short standard-taxonomy name, see generate) so two unrelated extension
// concepts never collide.
//
// resolved accumulates prior decisions within one filing's processing so
// equivalence/fallback groups converge on a single label instead of each
// member independently generating its own.
func Resolve(qname string, idx *taxonomy.Index, resolved map[string]string) Resolution {
	if label, ok := explicitMappings[qname]; ok {
		return Resolution{NormalizedLabel: label, Source: "explicit_mapping"}
	}

	if label, ok := fromEquivalence(qname, idx, resolved); ok {
		return Resolution{NormalizedLabel: label, Source: "reference_equivalence"}
	}

	if label, ok := fromCalcParent(qname, idx, resolved); ok {
		return Resolution{NormalizedLabel: label, Source: "calc_child"}
	}

	if label, ok := fromLabelFallback(qname, idx, resolved); ok {
		return Resolution{NormalizedLabel: label, Source: "label_fallback"}
	}

	return Resolution{NormalizedLabel: generate(qname), Source: "generated"}
}

func fromEquivalence(qname string, idx *taxonomy.Index, resolved map[string]string) (string, bool) {
	if idx == nil {
		return "", false
	}
	for _, href := range idx.EquivalentsOf(qname) {
		if label, ok := resolved[href]; ok {
			return label, true
		}
		if label, ok := explicitMappings[href]; ok {
			return label, true
		}
	}
	return "", false
}

// fromCalcParent forces a component-specific label onto a concept that has
// exactly one calc-linkbase parent whose normalized_label is already known
// (resolved earlier in this filing, or in explicitMappings), even when that
// would otherwise collide with the parent's own label (§4.4 step 3,
// invariant §3.2 #6). A concept with several calc parents, or whose parent
// has no label yet, is not handled here and falls through to the later rules.
// A calc child is, by definition, part of a total -- never the total itself
// -- so it must never inherit the parent's label: doing so is exactly the
// bug class this rule exists to prevent (two concepts silently reporting
// under the same normalized_label because one sums into the other).
func fromCalcParent(qname string, idx *taxonomy.Index, resolved map[string]string) (string, bool) {
	if idx == nil {
		return "", false
	}
	meta, ok := idx.Lookup(qname)
	if !ok || len(meta.CalcParents) != 1 {
		return "", false
	}
	parent := meta.CalcParents[0].ParentHref

	parentLabel, ok := resolved[parent]
	if !ok {
		parentLabel, ok = explicitMappings[parent]
		if !ok {
			return "", false
		}
	}

	component, ok := calcComponentLabels[qname]
	if !ok {
		_, local := splitQName(qname)
		component = snakeCase(local)
	}
	if component == parentLabel {
		// The child's own name snake-cases to the same text as the parent's
		// label (a taxonomy extension that merely renames the total); force
		// distinctness rather than silently merging them.
		component += "_component"
	}
	return component, true
}

func fromLabelFallback(qname string, idx *taxonomy.Index, resolved map[string]string) (string, bool) {
	if idx == nil {
		return "", false
	}
	for _, href := range idx.LabelEquivalentsOf(qname) {
		if label, ok := resolved[href]; ok {
			return label, true
		}
		if label, ok := explicitMappings[href]; ok {
			return label, true
		}
	}
	return "", false
}

// generate derives a snake_case name from the concept's local part. Standard
// taxonomy concepts that reach this far (an extremely rare fallback, since
// almost every real us-gaap/ifrs-full concept hits one of the rules above)
// are returned bare once short enough to read comfortably; everything else
// -- long labels, and every extension/custom-taxonomy concept regardless of
// length -- gets an 8-hex hash of the full qname appended, since two
// unrelated filers' extension taxonomies frequently reuse the same local
// name for unrelated concepts.
func generate(qname string) string {
	prefix, local := splitQName(qname)
	base := snakeCase(local)

	if standardTaxonomies[prefix] && len(base) <= maxGeneratedLabelLength {
		return base
	}

	sum := md5.Sum([]byte(qname)) //nolint:gosec
	suffix := hex.EncodeToString(sum[:])[:8]
	return base + "_" + suffix
}

// splitQName separates a "taxonomy:LocalName" concept identifier into its
// two parts; bare local names (no colon) return an empty prefix.
func splitQName(qname string) (prefix, local string) {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}

func snakeCase(local string) string {
	snake := camelBoundary.ReplaceAllString(local, "${1}_${2}")
	return strings.ToLower(snake)
}
