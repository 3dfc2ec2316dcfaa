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
	"fmt"
	"strings"

	"github.com/alphadose/haxmap"
)

// ConceptMeta is everything the index knows about one concept href, drawn
// from the schema plus whatever linkbases were available for the taxonomy.
type ConceptMeta struct {
	Href            string
	Name            string
	BalanceType     string
	PeriodType      string
	Labels          []LabelArc
	References      []ReferenceArc
	CalcParents     []CalcArc // edges where this concept is the child
	PresParents     []PresArc
}

// Index is C2's concurrently-readable taxonomy model: built once from a
// taxonomy's schema and linkbases, then read by C3 (fact typing), C4
// (normalization), C6 (statement layout) and C7 (derived totals) without
// further locking. alphadose/haxmap gives lock-free reads under concurrent
// access from those consumers.
type Index struct {
	Taxonomy string

	concepts *haxmap.Map[string, *ConceptMeta]

	// equivalence groups members by identical reference tuple: concepts
	// citing the same (publisher, name, number, paragraph) are treated as
	// semantically interchangeable for normalization purposes.
	equivalence map[string][]string // reference key -> concept hrefs

	// labelFallback groups concepts sharing an identical normalized label
	// text, used when reference-based equivalence finds nothing.
	labelFallback map[string][]string // normalized label text -> concept hrefs
}

func newIndex(taxonomyName string) *Index {
	return &Index{
		Taxonomy:      taxonomyName,
		concepts:      haxmap.New[string, *ConceptMeta](),
		equivalence:   make(map[string][]string),
		labelFallback: make(map[string][]string),
	}
}

// Build assembles an Index from raw schema/linkbase bytes keyed by kind
// ("lab", "ref", "cal", "pre"), as downloaded by this package's Fetcher. The
// resulting Index (not the raw bytes) is what this package's Cache stores.
func Build(taxonomyName string, concepts map[string]*ConceptMeta, linkbases map[string][]byte) (*Index, error) {
	idx := newIndex(taxonomyName)

	for href, c := range concepts {
		idx.concepts.Set(href, c)
	}

	if body, ok := linkbases["lab"]; ok {
		labels, err := parseLabelLinkbase(body)
		if err != nil {
			return nil, fmt.Errorf("build index %s: %w", taxonomyName, err)
		}
		idx.attachLabels(labels)
	}
	if body, ok := linkbases["ref"]; ok {
		refs, err := parseReferenceLinkbase(body)
		if err != nil {
			return nil, fmt.Errorf("build index %s: %w", taxonomyName, err)
		}
		idx.attachReferences(refs)
	}
	if body, ok := linkbases["cal"]; ok {
		arcs, err := parseCalcLinkbase(body)
		if err != nil {
			return nil, fmt.Errorf("build index %s: %w", taxonomyName, err)
		}
		idx.attachCalc(arcs)
	}
	if body, ok := linkbases["pre"]; ok {
		arcs, err := parsePresentationLinkbase(body)
		if err != nil {
			return nil, fmt.Errorf("build index %s: %w", taxonomyName, err)
		}
		idx.attachPres(arcs)
	}

	idx.buildEquivalenceGroups()
	idx.buildLabelFallbackGroups()
	return idx, nil
}

func (idx *Index) attachLabels(labels []LabelArc) {
	for _, l := range labels {
		c, ok := idx.concepts.Get(l.ConceptHref)
		if !ok {
			continue
		}
		c.Labels = append(c.Labels, l)
	}
}

func (idx *Index) attachReferences(refs []ReferenceArc) {
	for _, r := range refs {
		c, ok := idx.concepts.Get(r.ConceptHref)
		if !ok {
			continue
		}
		c.References = append(c.References, r)
	}
}

func (idx *Index) attachCalc(arcs []CalcArc) {
	for _, a := range arcs {
		c, ok := idx.concepts.Get(a.ChildHref)
		if !ok {
			continue
		}
		c.CalcParents = append(c.CalcParents, a)
	}
}

func (idx *Index) attachPres(arcs []PresArc) {
	for _, a := range arcs {
		c, ok := idx.concepts.Get(a.ChildHref)
		if !ok {
			continue
		}
		c.PresParents = append(c.PresParents, a)
	}
}

func referenceKey(r ReferenceArc) string {
	return strings.Join([]string{r.Publisher, r.Name, r.Number, r.Paragraph}, "|")
}

func (idx *Index) buildEquivalenceGroups() {
	idx.concepts.ForEach(func(href string, c *ConceptMeta) bool {
		for _, r := range c.References {
			key := referenceKey(r)
			if key == "|||" {
				continue
			}
			idx.equivalence[key] = append(idx.equivalence[key], href)
		}
		return true
	})
}

func (idx *Index) buildLabelFallbackGroups() {
	idx.concepts.ForEach(func(href string, c *ConceptMeta) bool {
		for _, l := range c.Labels {
			if l.Role != "" && !strings.HasSuffix(l.Role, "label") {
				continue
			}
			norm := strings.ToLower(strings.TrimSpace(l.Text))
			if norm == "" {
				continue
			}
			idx.labelFallback[norm] = append(idx.labelFallback[norm], href)
		}
		return true
	})
}

// Lookup returns a concept's metadata by href, if present.
func (idx *Index) Lookup(href string) (*ConceptMeta, bool) {
	return idx.concepts.Get(href)
}

// EquivalentsOf returns every other concept href sharing a reference tuple
// with href (href itself excluded), or nil if href has no cited references.
func (idx *Index) EquivalentsOf(href string) []string {
	c, ok := idx.concepts.Get(href)
	if !ok {
		return nil
	}
	seen := map[string]bool{href: true}
	var out []string
	for _, r := range c.References {
		key := referenceKey(r)
		if key == "|||" {
			continue
		}
		for _, h := range idx.equivalence[key] {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

// LabelEquivalentsOf returns every other concept href sharing a standard-label
// text with href (href itself excluded), used as a lower-confidence fallback
// when EquivalentsOf finds nothing.
func (idx *Index) LabelEquivalentsOf(href string) []string {
	c, ok := idx.concepts.Get(href)
	if !ok {
		return nil
	}
	seen := map[string]bool{href: true}
	var out []string
	for _, l := range c.Labels {
		norm := strings.ToLower(strings.TrimSpace(l.Text))
		if norm == "" {
			continue
		}
		for _, h := range idx.labelFallback[norm] {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

// Len reports how many concepts the index knows about.
func (idx *Index) Len() int {
	return idx.concepts.Len()
}

// WalkConcepts calls fn for every concept in the index. Used by consumers
// (e.g. C7's calc-parent inversion) that need to iterate the whole set
// rather than look up one href at a time.
func (idx *Index) WalkConcepts(fn func(href string, meta *ConceptMeta)) {
	idx.concepts.ForEach(func(href string, meta *ConceptMeta) bool {
		fn(href, meta)
		return true
	})
}
