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

// Package derive implements C7: computing universal metric totals that a
// filing's calc linkbase ties together but never reports as an explicit
// fact, and recording them as is_calculated facts.
package derive

import (
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/taxonomy"
)

// AuditEntry records why a derived total was (or wasn't) produced, for the
// derived_totals warehouse table C8 reads when scoring completeness.
type AuditEntry struct {
	ParentQName string
	ContextID   string
	Derived     bool
	Reason      string
	Value       float64
}

// minCalcConfidence is the lowest calc-linkbase arc confidence DeriveTotals
// will sum through; a child whose arc to its parent is below this is ignored
// for that parent: it is neither required for completeness nor summed in.
const minCalcConfidence = 0.995

// DeriveTotals walks idx's calc-linkbase parents and, for every parent with
// no explicit primary fact in a given context, sums its weighted children's
// values (when all children have values in that context) and synthesises a
// derived fact. Idempotent: parents that already have an explicit total in
// facts are left untouched. Only consolidated facts (no dimensional members)
// are considered: a calc total is a whole-company figure, and summing
// dimensional breakdown members into it would double-count the consolidated
// children that roll up into those same dimension members.
func DeriveTotals(idx *taxonomy.Index, facts []*domain.Fact) ([]*domain.Fact, []AuditEntry) {
	byContextAndConcept := make(map[string]map[string]*domain.Fact)
	for _, f := range facts {
		if !f.IsPrimary || len(f.DimMembers) > 0 {
			continue
		}
		m, ok := byContextAndConcept[f.ContextID]
		if !ok {
			m = make(map[string]*domain.Fact)
			byContextAndConcept[f.ContextID] = m
		}
		m[f.ConceptQName] = f
	}

	parents := calcParentsOf(idx)

	var derived []*domain.Fact
	var audit []AuditEntry

	for parentHref, children := range parents {
		for ctxID, conceptFacts := range byContextAndConcept {
			if _, exists := conceptFacts[parentHref]; exists {
				continue // explicit total already present, do not override
			}

			sum, complete := sumChildren(children, conceptFacts)
			if !complete {
				audit = append(audit, AuditEntry{ParentQName: parentHref, ContextID: ctxID, Derived: false, Reason: "incomplete children"})
				continue
			}

			value := sum
			derived = append(derived, &domain.Fact{
				ConceptQName:     parentHref,
				ContextID:        ctxID,
				ValueNumeric:     &value,
				IsPrimary:        true,
				IsCalculated:     true,
				ExtractionMethod: domain.ExtractedDerived,
			})
			audit = append(audit, AuditEntry{ParentQName: parentHref, ContextID: ctxID, Derived: true, Value: sum})
		}
	}

	return derived, audit
}

type weightedChild struct {
	href       string
	weight     float64
	confidence float64
}

// calcParentsOf inverts the index's child->parent calc arcs into
// parent->weighted-children, since DeriveTotals needs to sum children per
// parent rather than look up a single parent per child. Arcs below
// minCalcConfidence are dropped entirely: a parent whose calc relationship
// to a child is unreliable should not treat that child as required for
// completeness, nor sum it in when present.
func calcParentsOf(idx *taxonomy.Index) map[string][]weightedChild {
	parents := make(map[string][]weightedChild)
	idx.WalkConcepts(func(href string, meta *taxonomy.ConceptMeta) {
		for _, arc := range meta.CalcParents {
			if arc.Confidence < minCalcConfidence {
				continue
			}
			parents[arc.ParentHref] = append(parents[arc.ParentHref], weightedChild{href: href, weight: arc.Weight, confidence: arc.Confidence})
		}
	})
	return parents
}

func sumChildren(children []weightedChild, factsByQName map[string]*domain.Fact) (float64, bool) {
	var sum float64
	for _, c := range children {
		if c.confidence < minCalcConfidence {
			return 0, false
		}
		f, ok := factsByQName[c.href]
		if !ok || f.ValueNumeric == nil {
			return 0, false
		}
		sum += c.weight * *f.ValueNumeric
	}
	return sum, len(children) > 0
}
