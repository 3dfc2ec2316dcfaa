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
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// RawFact is a fact as read directly off the wire, before concept/period/
// dimension resolution. ConceptLocal/Namespace identify the tag; Decimals
// distinguishes "0" (present) from absent (nil), same as the instance
// document's own convention.
type RawFact struct {
	ConceptLocal string
	Namespace    string
	ContextRef   string
	UnitRef      string
	Decimals     *int
	Scale        *int
	Value        string
	SourceLine   int
}

// ParseResult is everything extracted from one instance document, still in
// wire form: contexts and units keyed by id, and facts in document order.
type ParseResult struct {
	Contexts map[string]*Context
	Units    map[string]*Unit
	Facts    []RawFact
}

// xbrlNamespaces lists the tag namespace prefixes ParseInstance treats as
// structural rather than as reportable facts.
var xbrlNamespaces = map[string]bool{
	"xbrli":  true,
	"xbrl":   true,
	"link":   true,
	"xlink":  true,
	"xsi":    true,
	"iso4217": true,
}

// ParseInstance walks an XBRL instance document token by token, the same
// traversal style as the pack's one manual XBRL reader
// (other_examples RxDataLab xbrl.go): accumulate contexts and units as they
// are seen, then treat every other namespaced element carrying a
// contextRef attribute as a reportable fact.
func ParseInstance(body []byte) (*ParseResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	result := &ParseResult{
		Contexts: make(map[string]*Context),
		Units:    make(map[string]*Unit),
	}

	var warnings *multierror.Error

	var cur *Context
	var curUnit *Unit
	var curMeasureText string
	var segmentDepth int
	var inPeriod, inEntity bool
	var periodInstant, periodStart, periodEnd string
	prefixes := make(map[string]string) // namespace URI -> declared prefix

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xbrl instance: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					prefixes[a.Value] = a.Name.Local
				}
			}
			ns, local := splitName(t.Name)
			if p, ok := prefixes[ns]; ok {
				ns = p
			}

			switch {
			case local == "context":
				cur = &Context{ID: attrVal(t, "id")}
			case local == "period" && cur != nil:
				inPeriod = true
			case local == "instant" && inPeriod:
				if v, err := readCharData(dec, t.Name); err == nil {
					periodInstant = v
				}
			case local == "startDate" && inPeriod:
				if v, err := readCharData(dec, t.Name); err == nil {
					periodStart = v
				}
			case local == "endDate" && inPeriod:
				if v, err := readCharData(dec, t.Name); err == nil {
					periodEnd = v
				}
			case local == "entity" && cur != nil:
				inEntity = true
			case local == "identifier" && inEntity:
				if v, err := readCharData(dec, t.Name); err == nil && cur != nil {
					cur.Entity = strings.TrimSpace(v)
				}
			case (local == "segment" || local == "scenario") && cur != nil:
				segmentDepth++
			case local == "explicitMember" && cur != nil && segmentDepth > 0:
				cur.Members = append(cur.Members, domain.DimensionMember{
					Axis:   attrVal(t, "dimension"),
					Member: "", // filled from CharData below
				})
			case local == "unit":
				curUnit = &Unit{ID: attrVal(t, "id")}
			case local == "measure":
				curMeasureText = ""
			case xbrlNamespaces[ns]:
				// structural element with no dedicated handling above
			default:
				ctxRef := attrVal(t, "contextRef")
				if ctxRef == "" {
					continue
				}
				raw := RawFact{
					ConceptLocal: local,
					Namespace:    ns,
					ContextRef:   ctxRef,
					UnitRef:      attrVal(t, "unitRef"),
				}
				if d := attrVal(t, "decimals"); d != "" {
					if v, err := strconv.Atoi(d); err == nil {
						raw.Decimals = &v
					}
				}
				if s := attrVal(t, "scale"); s != "" {
					if v, err := strconv.Atoi(s); err == nil {
						raw.Scale = &v
					}
				}
				val, err := readCharData(dec, t.Name)
				if err != nil {
					warnings = multierror.Append(warnings, fmt.Errorf("fact %s: %w", local, err))
					continue
				}
				raw.Value = strings.TrimSpace(val)
				result.Facts = append(result.Facts, raw)
			}

		case xml.CharData:
			text := string(t)
			switch {
			case inPeriod:
				// instant/startDate/endDate text is already consumed by
				// readCharData at their own start-element cases above.
			case curUnit != nil:
				curMeasureText += text
			case cur != nil && segmentDepth > 0 && len(cur.Members) > 0:
				cur.Members[len(cur.Members)-1].Member += strings.TrimSpace(text)
			}

		case xml.EndElement:
			_, local := splitName(t.Name)
			switch local {
			case "period":
				inPeriod = false
				assignPeriod(cur, periodInstant, periodStart, periodEnd)
				periodInstant, periodStart, periodEnd = "", "", ""
			case "entity":
				inEntity = false
			case "segment", "scenario":
				if segmentDepth > 0 {
					segmentDepth--
				}
			case "context":
				if cur != nil {
					result.Contexts[cur.ID] = cur
					cur = nil
				}
			case "unit":
				if curUnit != nil {
					curUnit.Measure = strings.TrimSpace(curMeasureText)
					result.Units[curUnit.ID] = curUnit
					curUnit = nil
				}
			}
		}
	}

	return result, warnings.ErrorOrNil()
}

// assignPeriod parses the instant/startDate/endDate strings collected while
// walking a <period> element and attaches them to its owning context.
func assignPeriod(cur *Context, instant, start, end string) {
	if cur == nil {
		return
	}
	if instant != "" {
		if t, err := parseDate(instant); err == nil {
			cur.Instant = &t
		}
	}
	if start != "" && end != "" {
		if s, err := parseDate(start); err == nil {
			if e, err := parseDate(end); err == nil {
				cur.Start = &s
				cur.End = &e
			}
		}
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func splitName(n xml.Name) (ns, local string) {
	if i := strings.LastIndex(n.Local, ":"); i >= 0 {
		return n.Local[:i], n.Local[i+1:]
	}
	return n.Space, n.Local
}

func attrVal(t xml.StartElement, localAttrName string) string {
	for _, a := range t.Attr {
		name := a.Name.Local
		if i := strings.LastIndex(name, ":"); i >= 0 {
			name = name[i+1:]
		}
		if name == localAttrName {
			return a.Value
		}
	}
	return ""
}

// readCharData consumes CharData tokens up to the matching end element for
// name, concatenating text content. Used for leaf fact elements whose value
// is their only content.
func readCharData(dec *xml.Decoder, name xml.Name) (string, error) {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if t.Name == name {
				depth++
			}
		case xml.EndElement:
			if t.Name == name {
				if depth == 0 {
					return sb.String(), nil
				}
				depth--
			}
		}
	}
}
