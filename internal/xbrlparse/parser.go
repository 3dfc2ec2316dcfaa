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
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// Document is the fully parsed, fact-level output of C3 for one filing:
// facts ready for C4 normalization, plus the periods they reference (the
// loader resolves periods to dim_time_periods rows).
type Document struct {
	Facts   []*domain.Fact
	Periods map[string]*domain.TimePeriod // contextID -> period
	Method  domain.ExtractionMethod
}

// ParseFiling parses a filing's primary instance document (or inline-XBRL
// XHTML, detected by content sniffing) into a Document. taxonomyName
// qualifies bare concept namespaces absent from the document itself.
func ParseFiling(instance []byte, instanceName string, taxonomyName string) (*Document, error) {
	method := domain.ExtractedXBRL
	var result *ParseResult
	var err error

	if looksLikeInline(instanceName, instance) {
		method = domain.ExtractedInline
		result, err = ParseInline(instance)
	} else {
		result, err = ParseInstance(instance)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseInvalidXBRL, err)
	}

	doc := &Document{Periods: make(map[string]*domain.TimePeriod), Method: method}

	var warnings *multierror.Error
	for i, raw := range result.Facts {
		ctx, ok := result.Contexts[raw.ContextRef]
		if !ok {
			warnings = multierror.Append(warnings, fmt.Errorf("%w: fact %s references unknown context %s",
				domain.ErrParseMalformed, raw.ConceptLocal, raw.ContextRef))
			continue
		}

		fact, err := buildFact(raw, ctx, result.Units, i, method)
		if err != nil {
			warnings = multierror.Append(warnings, fmt.Errorf("%w: %v", domain.ErrParseMalformed, err))
			continue
		}

		ns := raw.Namespace
		if ns == "" {
			ns = taxonomyName
		}
		fact.Taxonomy = ns
		fact.ConceptQName = ns + ":" + raw.ConceptLocal

		doc.Facts = append(doc.Facts, fact)
		if _, seen := doc.Periods[ctx.ID]; !seen {
			if p := ctx.Period(); p != nil {
				doc.Periods[ctx.ID] = p
			}
		}
	}

	dedupeFacts(doc.Facts)

	return doc, warnings.ErrorOrNil()
}

func buildFact(raw RawFact, ctx *Context, units map[string]*Unit, orderIndex int, method domain.ExtractionMethod) (*domain.Fact, error) {
	fact := &domain.Fact{
		ContextID:        ctx.ID,
		Decimals:         raw.Decimals,
		Scale:            raw.Scale,
		OrderIndex:       orderIndex,
		ExtractionMethod: method,
	}

	if raw.UnitRef != "" {
		if u, ok := units[raw.UnitRef]; ok {
			fact.Unit = u.Measure
		} else {
			fact.Unit = raw.UnitRef
		}
	}

	if len(ctx.Members) > 0 {
		dim, err := domain.NewXBRLDimension(ctx.Members)
		if err != nil {
			return nil, fmt.Errorf("concept %s: dimension tuple: %w", raw.ConceptLocal, err)
		}
		fact.DimMembers = dim.Members
	}

	text := strings.TrimSpace(raw.Value)
	if text == "" {
		return fact, nil
	}

	if v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64); err == nil {
		fact.ValueNumeric = &v
	} else {
		fact.ValueText = &text
	}

	return fact, nil
}

// looksLikeInline sniffs for inline-XBRL by filename extension or the
// presence of an ix: namespace declaration in the document head, since
// iXBRL ships as XHTML rather than a bare xbrl instance element.
func looksLikeInline(name string, body []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html") {
		return true
	}
	head := body
	if len(head) > 4096 {
		head = head[:4096]
	}
	return strings.Contains(string(head), "xmlns:ix=")
}
