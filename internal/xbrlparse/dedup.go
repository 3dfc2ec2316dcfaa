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
	"math"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// dedupeFacts groups facts by (concept, context, rounded value) and marks
// exactly one member of each group IsPrimary, preferring the fact with the
// lowest OrderIndex (earliest document position) per §4.3. Duplicate values
// are kept, not discarded, so the audit trail of what the filing actually
// repeated stays intact; only the primary flag changes.
func dedupeFacts(facts []*domain.Fact) {
	groups := make(map[domain.DedupeKey][]*domain.Fact)

	for _, f := range facts {
		if !f.IsNumeric() {
			f.IsPrimary = true
			continue
		}
		key := domain.DedupeKey{
			ConceptQName: f.ConceptQName,
			ContextID:    f.ContextID,
			RoundedValue: roundTo(*f.ValueNumeric, 2),
		}
		groups[key] = append(groups[key], f)
	}

	for _, group := range groups {
		best := group[0]
		for _, f := range group[1:] {
			if f.OrderIndex < best.OrderIndex {
				best = f
			}
		}
		for _, f := range group {
			f.IsPrimary = f == best
		}
	}
}

func roundTo(v float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	return math.Round(v*mult) / mult
}
