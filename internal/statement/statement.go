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

// Package statement implements C6: classifying concepts onto the primary
// financial statements, ordering them for display, and correcting the sign
// of other-comprehensive-income reclassification/tax items.
package statement

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/taxonomy"
)

// rolePatterns maps a regexp over a presentation role URI to the statement
// type it represents. EDGAR role URIs conventionally embed a readable
// description (e.g. ".../role/CONSOLIDATEDBALANCESHEETS"), so pattern
// matching on the URI tail is the standard way taxonomies self-describe
// their statement roles.
var rolePatterns = []struct {
	pattern *regexp.Regexp
	stmt    domain.StatementType
}{
	{regexp.MustCompile(`(?i)balance.?sheet`), domain.StatementBalanceSheet},
	{regexp.MustCompile(`(?i)comprehensive`), domain.StatementComprehensiveIncome},
	{regexp.MustCompile(`(?i)(income|operations|earnings)`), domain.StatementIncome},
	{regexp.MustCompile(`(?i)cash.?flow`), domain.StatementCashFlow},
	{regexp.MustCompile(`(?i)(stockholders|shareholders).?equity`), domain.StatementEquity},
}

// ClassifyRole returns the statement a presentation role URI belongs to,
// falling back to StatementNotes when no pattern matches.
func ClassifyRole(roleURI string) domain.StatementType {
	for _, rp := range rolePatterns {
		if rp.pattern.MatchString(roleURI) {
			return rp.stmt
		}
	}
	return domain.StatementNotes
}

// ociReversalPattern flags OCI reclassification-adjustment and tax-effect
// line items, whose sign must be reversed relative to the raw fact value so
// the statement reads as "amount added to/subtracted from OCI" rather than
// the raw XBRL sign convention for the adjustment.
var ociReversalPattern = regexp.MustCompile(`(?i)(reclassification|tax.?effect|taxeffect)`)

// AdjustOCISign returns value with its sign flipped when conceptName names a
// reclassification or tax-effect OCI item.
func AdjustOCISign(conceptName string, value float64) float64 {
	if ociReversalPattern.MatchString(conceptName) {
		return -value
	}
	return value
}

// BalanceSheetSideOf classifies a balance-sheet main item by its concept
// name into assets vs. liabilities-and-equity, used to check the accounting
// equation per side.
func BalanceSheetSideOf(conceptName string) domain.BalanceSheetSide {
	lower := strings.ToLower(conceptName)
	if strings.Contains(lower, "liabilit") || strings.Contains(lower, "equity") || strings.Contains(lower, "stockholders") {
		return domain.SideLiabilitiesEquity
	}
	return domain.SideAssets
}

// ArcsByRole groups every presentation arc cached in idx by its role URI, the
// shape BuildStatementItems expects. idx is built once per taxonomy and
// shared across filings, so this walk is cheap relative to the parse/load
// work surrounding it.
func ArcsByRole(idx *taxonomy.Index) map[string][]taxonomy.PresArc {
	byRole := make(map[string][]taxonomy.PresArc)
	idx.WalkConcepts(func(_ string, meta *taxonomy.ConceptMeta) {
		for _, arc := range meta.PresParents {
			byRole[arc.Role] = append(byRole[arc.Role], arc)
		}
	})
	return byRole
}

// hierarchyPrefixes are local-name prefixes conventionally used for
// subtotal-level line items (accrued/other/trade/employee breakdowns of a
// section total), checked case-insensitively against the concept's local name.
var hierarchyPrefixes = []string{"accrued", "other", "trade", "employee"}

// currentSuffixPattern flags current/noncurrent split line items, which sit
// one level below a section total (e.g. AssetsCurrent under Assets) but
// above the individual detail lines that sum into them.
var currentSuffixPattern = regexp.MustCompile(`(?i)(current|noncurrent)$`)

// statementKeywords are the words a concept's local name pairs with "total"
// to mark it as a whole-statement total rather than a section subtotal
// (TotalAssets, TotalLiabilitiesAndStockholdersEquity, TotalRevenues, ...).
var statementKeywords = []string{"asset", "liabilit", "equity", "revenue", "expense", "income", "cash"}

// InferHierarchyLevel assigns a concept its vertical position within a
// statement from its own local name, for filers whose extension taxonomy
// never states it explicitly: a name combining "total" with a statement
// keyword is a statement-wide total (level 4); a Current/Noncurrent split is
// a section total (level 3); a common subtotal prefix (Accrued/Other/Trade/
// Employee) is a subtotal (level 2); anything else is a detail line (level 1).
func InferHierarchyLevel(conceptQName string) domain.HierarchyLevel {
	_, local := splitQName(conceptQName)
	lower := strings.ToLower(local)

	if strings.Contains(lower, "total") {
		for _, kw := range statementKeywords {
			if strings.Contains(lower, kw) {
				return domain.LevelStatementTotal
			}
		}
	}

	if currentSuffixPattern.MatchString(local) {
		return domain.LevelSectionTotal
	}

	for _, prefix := range hierarchyPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return domain.LevelSubtotal
		}
	}

	return domain.LevelDetail
}

func splitQName(qname string) (prefix, local string) {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}

// Item is one concept placed on a statement, ready to become a
// domain.StatementItem once DisplayOrder is finalised.
type Item struct {
	ConceptQName  string
	StatementType domain.StatementType
	RoleURI       string
	PresOrder     float64
	IsHeader      bool
	IsMainItem    bool
}

// BuildStatementItems classifies and orders every concept appearing in a
// taxonomy's presentation linkbase arcs, role by role: items follow
// presentation arc order within their role, except that EPS lines are moved
// after every other line of their role. Abstract concepts are flagged as
// headers but keep their presentation position; no comprehensive-income
// block reordering is applied.
func BuildStatementItems(idx *taxonomy.Index, arcsByRole map[string][]taxonomy.PresArc) []Item {
	var items []Item

	for role, arcs := range arcsByRole {
		stmt := ClassifyRole(role)

		seen := map[string]bool{}
		ordered := make([]taxonomy.PresArc, len(arcs))
		copy(ordered, arcs)
		sortByOrder(ordered)

		for _, a := range ordered {
			if seen[a.ChildHref] {
				continue
			}
			seen[a.ChildHref] = true

			meta, _ := idx.Lookup(a.ChildHref)
			isAbstract := meta != nil && strings.Contains(strings.ToLower(meta.Name), "abstract")

			items = append(items, Item{
				ConceptQName:  a.ChildHref,
				StatementType: stmt,
				RoleURI:       role,
				PresOrder:     a.Order,
				IsHeader:      isAbstract,
				IsMainItem:    !isAbstract,
			})
		}
	}

	adjustEPSOrder(items)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RoleURI != items[j].RoleURI {
			return items[i].RoleURI < items[j].RoleURI
		}
		return items[i].PresOrder < items[j].PresOrder
	})
	return items
}

func sortByOrder(arcs []taxonomy.PresArc) {
	for i := 1; i < len(arcs); i++ {
		for j := i; j > 0 && arcs[j-1].Order > arcs[j].Order; j-- {
			arcs[j-1], arcs[j] = arcs[j], arcs[j-1]
		}
	}
}

// epsPattern identifies earnings-per-share line items, which taxonomies
// sometimes place earlier in presentation order than net income despite
// conventionally being displayed last on the income statement.
var epsPattern = regexp.MustCompile(`(?i)earningspershare|epsbasic|epsdiluted`)

// adjustEPSOrder pushes EPS line items to the end of their statement's
// display order, matching how income statements are conventionally laid
// out regardless of a taxonomy extension's raw presentation order.
func adjustEPSOrder(items []Item) {
	var maxOrder float64
	for _, it := range items {
		if it.PresOrder > maxOrder {
			maxOrder = it.PresOrder
		}
	}
	for i := range items {
		if epsPattern.MatchString(items[i].ConceptQName) {
			items[i].PresOrder = maxOrder + 1 + items[i].PresOrder/1000
		}
	}
}
