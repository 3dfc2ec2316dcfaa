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

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// ParseInline extracts facts tagged inline in an iXBRL (XHTML) document:
// ix:nonFraction for numeric facts and ix:nonNumeric for text facts. The
// <ix:header> carries its own <xbrli:context>/<xbrli:unit> elements, which
// are structurally identical to a plain instance document's, so the same
// token stream is scanned for those elements, with the same element cases
// and helpers (assignPeriod, readCharData) ParseInstance uses, in addition
// to the ix:* fact tags.
func ParseInline(body []byte) (*ParseResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	result := &ParseResult{
		Contexts: make(map[string]*Context),
		Units:    make(map[string]*Unit),
	}

	var cur *Context
	var curUnit *Unit
	var curMeasureText string
	var segmentDepth int
	var inPeriod, inEntity bool
	var periodInstant, periodStart, periodEnd string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode inline xbrl: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			ns, local := splitName(t.Name)

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
			case (local == "segment" || local == "scenario") && cur != nil:
				segmentDepth++
			case local == "explicitMember" && cur != nil && segmentDepth > 0:
				cur.Members = append(cur.Members, domain.DimensionMember{
					Axis: attrVal(t, "dimension"),
				})
			case local == "unit":
				curUnit = &Unit{ID: attrVal(t, "id")}
			case local == "measure":
				if v, err := readCharData(dec, t.Name); err == nil {
					curMeasureText = v
				}
			case (ns == "ix" || strings.HasSuffix(ns, "/inlineXBRL")) && (local == "nonFraction" || local == "nonNumeric"):
				ctxRef := attrVal(t, "contextRef")
				if ctxRef == "" {
					continue
				}
				raw := RawFact{
					ConceptLocal: localPart(attrVal(t, "name")),
					Namespace:    nsPart(attrVal(t, "name")),
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
					continue
				}
				raw.Value = normalizeInlineValue(strings.TrimSpace(val), attrVal(t, "sign"), attrVal(t, "scale"))
				result.Facts = append(result.Facts, raw)
			}

		case xml.CharData:
			text := string(t)
			switch {
			case curUnit != nil:
				curMeasureText += text
			case cur != nil && segmentDepth > 0 && len(cur.Members) > 0:
				last := len(cur.Members) - 1
				cur.Members[last].Member += strings.TrimSpace(text)
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

	return result, nil
}

func localPart(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

func nsPart(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[:i]
	}
	return ""
}

// normalizeInlineValue applies ix:nonFraction's sign and scale attributes,
// which encode "-" and powers of ten separately from the displayed text
// (e.g. "1,234" scale="3" sign="-" means -1234000).
func normalizeInlineValue(raw, sign, scale string) string {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return cleaned
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return raw
	}
	if sign == "-" {
		f = -f
	}
	if scale != "" {
		if s, err := strconv.Atoi(scale); err == nil && s != 0 {
			f *= pow10(s)
		}
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pow10(n int) float64 {
	result := 1.0
	neg := n < 0
	if neg {
		n = -n
	}
	for i := 0; i < n; i++ {
		result *= 10
	}
	if neg {
		return 1 / result
	}
	return result
}
