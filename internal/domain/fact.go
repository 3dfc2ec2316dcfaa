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
package domain

import "github.com/rs/zerolog"

// ExtractionMethod records how a fact entered the warehouse.
type ExtractionMethod string

const (
	ExtractedXBRL       ExtractionMethod = "xbrl_instance"
	ExtractedInline     ExtractionMethod = "inline_xbrl"
	ExtractedLinkbaseFB ExtractionMethod = "linkbase_fallback"
	ExtractedDerived    ExtractionMethod = "derived"
)

// Fact is the central fact table row. Value is split into nullable numeric
// and text columns rather than a subclass hierarchy (§9 "Polymorphism of
// fact value"); downstream consumers key off ValueNumeric != nil.
type Fact struct {
	ID              int64             `db:"id"`
	FilingID        int64             `db:"filing_id"`
	CompanyID       int64             `db:"company_id"`
	ConceptID       int64             `db:"concept_id"`
	PeriodID        int64             `db:"period_id"`
	DimensionID     *int64            `db:"dimension_id"`
	ValueNumeric    *float64          `db:"value_numeric"`
	ValueText       *string           `db:"value_text"`
	Unit            string            `db:"unit"`
	Decimals        *int              `db:"decimals"`
	Scale           *int              `db:"scale"`
	ContextID       string            `db:"context_id"`
	XBRLFactID      string            `db:"xbrl_fact_id"`
	SourceLine      int               `db:"source_line"`
	OrderIndex      int               `db:"order_index"`
	IsPrimary       bool              `db:"is_primary"`
	IsCalculated    bool              `db:"is_calculated"`
	ExtractionMethod ExtractionMethod `db:"extraction_method"`

	// Populated transiently during C3/C4 before the concept/period/dimension
	// rows exist; the loader resolves these into the *ID fields above.
	ConceptQName  string            `db:"-"`
	Taxonomy      string            `db:"-"`
	DimMembers    []DimensionMember `db:"-"`
}

// IsNumeric reports whether this fact carries a numeric (vs. text-only) value.
func (f *Fact) IsNumeric() bool { return f.ValueNumeric != nil }

func (f *Fact) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Concept", f.ConceptQName).Int("OrderIndex", f.OrderIndex).Bool("IsPrimary", f.IsPrimary)
	if f.ValueNumeric != nil {
		e.Float64("Value", *f.ValueNumeric)
	}
}

// DedupeKey groups facts that are candidates for the "same reported value
// serialised twice" dedup rule in §4.3: (concept, context, rounded value).
type DedupeKey struct {
	ConceptQName string
	ContextID    string
	RoundedValue float64
}
