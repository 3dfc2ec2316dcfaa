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

// Package taxonomy implements C2: building and caching the concept index
// (labels, references, calculation and presentation linkbase edges) that C3,
// C4, C6 and C7 all read from concurrently.
package taxonomy

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LabelArc is a single label linkbase entry: a concept's locator resolves to
// one or more labels, distinguished by role (standard, terse, total, ...).
type LabelArc struct {
	ConceptHref string
	Role        string
	Lang        string
	Text        string
}

// ReferenceArc ties a concept to an authoritative reference tuple
// (publisher/name/number/paragraph). Two concepts sharing an identical
// reference tuple are treated as semantically equivalent (§ equivalence
// groups).
type ReferenceArc struct {
	ConceptHref string
	Publisher   string
	Name        string
	Number      string
	Paragraph   string
}

// CalcArc is one calculation-linkbase parent/child edge with its weight.
// Confidence reflects how reliable the edge is for deriving totals: a plain
// calculationArc from a single, unconflicting linkbase is fully confident
// (1.0); an arc that a later linkbase fragment marks prohibited (use="prohibited",
// the XBRL 2.1 mechanism for a filer overriding/retracting an inherited arc)
// is kept in the index but with reduced confidence so C7 does not sum through
// a relationship the filer itself withdrew.
type CalcArc struct {
	ParentHref string
	ChildHref  string
	Weight     float64
	Order      float64
	Confidence float64
}

// PresArc is one presentation-linkbase parent/child edge with display order.
type PresArc struct {
	ParentHref string
	ChildHref  string
	Order      float64
	Role       string
	PreferredLabel string
}

// locator maps an xlink:label used by arcs back to the xlink:href it names.
// Linkbases are XLink extended graphs: <loc xlink:label="x" xlink:href="..."/>
// followed by <*Arc xlink:from="x" xlink:to="y" .../>, so arcs must be
// resolved against the locator table collected in the same pass.
type locator struct {
	label string
	href  string
}

// parseLabelLinkbase walks a label linkbase with a token-by-token decoder,
// the same traversal shape as manual XBRL readers elsewhere in the pack:
// accumulate locators, then resolve label arcs and labelLink/label elements
// against them in a second, in-memory pass.
func parseLabelLinkbase(body []byte) ([]LabelArc, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))

	locs := map[string]string{} // xlink:label -> xlink:href
	labels := map[string]struct {
		role, lang, text string
	}{}
	arcs := []struct{ from, to string }{}

	var currentLabelKey string
	var inLabel bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode label linkbase: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch localName(t.Name.Local) {
			case "loc":
				label := attr(t, "label")
				href := attr(t, "href")
				if label != "" && href != "" {
					locs[label] = href
				}
			case "labelArc":
				from := attr(t, "from")
				to := attr(t, "to")
				if from != "" && to != "" {
					arcs = append(arcs, struct{ from, to string }{from, to})
				}
			case "label":
				currentLabelKey = attr(t, "label")
				inLabel = true
				labels[currentLabelKey] = struct{ role, lang, text string }{
					role: attr(t, "role"),
					lang: attr(t, "lang"),
				}
			}
		case xml.CharData:
			if inLabel {
				entry := labels[currentLabelKey]
				entry.text += string(t)
				labels[currentLabelKey] = entry
			}
		case xml.EndElement:
			if localName(t.Name.Local) == "label" {
				inLabel = false
			}
		}
	}

	var out []LabelArc
	for _, a := range arcs {
		href, ok := locs[a.from]
		if !ok {
			continue
		}
		lbl, ok := labels[a.to]
		if !ok {
			continue
		}
		out = append(out, LabelArc{
			ConceptHref: href,
			Role:        lbl.role,
			Lang:        lbl.lang,
			Text:        strings.TrimSpace(lbl.text),
		})
	}
	return out, nil
}

// parseReferenceLinkbase mirrors parseLabelLinkbase's shape for reference
// linkbases, whose reference parts (Publisher/Name/Number/Paragraph) are
// child elements rather than character data of a single element.
func parseReferenceLinkbase(body []byte) ([]ReferenceArc, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))

	locs := map[string]string{}
	type refParts struct{ publisher, name, number, paragraph string }
	refs := map[string]refParts{}
	arcs := []struct{ from, to string }{}

	var currentRefKey string
	var currentPart string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode reference linkbase: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch localName(t.Name.Local) {
			case "loc":
				label := attr(t, "label")
				href := attr(t, "href")
				if label != "" && href != "" {
					locs[label] = href
				}
			case "referenceArc":
				from := attr(t, "from")
				to := attr(t, "to")
				if from != "" && to != "" {
					arcs = append(arcs, struct{ from, to string }{from, to})
				}
			case "reference":
				currentRefKey = attr(t, "label")
				refs[currentRefKey] = refParts{}
			case "Publisher", "Name", "Number", "Paragraph":
				currentPart = localName(t.Name.Local)
			}
		case xml.CharData:
			if currentRefKey == "" || currentPart == "" {
				continue
			}
			r := refs[currentRefKey]
			switch currentPart {
			case "Publisher":
				r.publisher += string(t)
			case "Name":
				r.name += string(t)
			case "Number":
				r.number += string(t)
			case "Paragraph":
				r.paragraph += string(t)
			}
			refs[currentRefKey] = r
		case xml.EndElement:
			switch localName(t.Name.Local) {
			case "Publisher", "Name", "Number", "Paragraph":
				currentPart = ""
			case "reference":
				currentRefKey = ""
			}
		}
	}

	var out []ReferenceArc
	for _, a := range arcs {
		href, ok := locs[a.from]
		if !ok {
			continue
		}
		r, ok := refs[a.to]
		if !ok {
			continue
		}
		out = append(out, ReferenceArc{
			ConceptHref: href,
			Publisher:   strings.TrimSpace(r.publisher),
			Name:        strings.TrimSpace(r.name),
			Number:      strings.TrimSpace(r.number),
			Paragraph:   strings.TrimSpace(r.paragraph),
		})
	}
	return out, nil
}

// parseCalcLinkbase and parsePresentationLinkbase share the loc+arc resolution
// shape; calculationArc and presentationArc both carry xlink:from/xlink:to/order, differing
// only in whether a weight or a preferredLabel accompanies the edge.
func parseCalcLinkbase(body []byte) ([]CalcArc, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))
	locs := map[string]string{}
	var arcs []CalcArc

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode calculation linkbase: %w", err)
		}
		t, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch localName(t.Name.Local) {
		case "loc":
			label := attr(t, "label")
			href := attr(t, "href")
			if label != "" && href != "" {
				locs[label] = href
			}
		case "calculationArc":
			from, to := locs[attr(t, "from")], locs[attr(t, "to")]
			if from == "" || to == "" {
				continue
			}
			confidence := 1.0
			if attr(t, "use") == "prohibited" {
				confidence = 0
			}
			arcs = append(arcs, CalcArc{
				ParentHref: from,
				ChildHref:  to,
				Weight:     parseFloatOr(attr(t, "weight"), 1),
				Order:      parseFloatOr(attr(t, "order"), 0),
				Confidence: confidence,
			})
		}
	}
	return arcs, nil
}

func parsePresentationLinkbase(body []byte) ([]PresArc, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))
	locs := map[string]string{}
	var arcs []PresArc
	var role string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode presentation linkbase: %w", err)
		}
		t, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch localName(t.Name.Local) {
		case "presentationLink":
			role = attr(t, "role")
		case "loc":
			label := attr(t, "label")
			href := attr(t, "href")
			if label != "" && href != "" {
				locs[label] = href
			}
		case "presentationArc":
			from, to := locs[attr(t, "from")], locs[attr(t, "to")]
			if from == "" || to == "" {
				continue
			}
			arcs = append(arcs, PresArc{
				ParentHref:     from,
				ChildHref:      to,
				Order:          parseFloatOr(attr(t, "order"), 0),
				Role:           role,
				PreferredLabel: attr(t, "preferredLabel"),
			})
		}
	}
	return arcs, nil
}

func attr(t xml.StartElement, localAttrName string) string {
	for _, a := range t.Attr {
		if localName(a.Name.Local) == localAttrName {
			return a.Value
		}
	}
	return ""
}

// localName strips a namespace prefix some encoders leave attached to
// Name.Local (e.g. "xlink:href" decoded as a single local name on loosely
// namespaced documents).
func localName(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func parseFloatOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
