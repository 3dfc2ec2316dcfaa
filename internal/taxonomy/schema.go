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
	"bytes"
	"encoding/xml"
	"io"
)

// parseSchema token-walks an XBRL taxonomy schema (.xsd) and returns the
// ConceptMeta for every xs:element it declares, keyed by "#<id>" the way
// linkbase locators reference them. Same token-walking approach as
// linkbase.go: xs:element carries its balance/period-type as attributes in
// the xbrli namespace rather than nested text, so one pass over start
// elements is enough.
func parseSchema(body []byte) (map[string]*ConceptMeta, error) {
	concepts := make(map[string]*ConceptMeta)
	dec := xml.NewDecoder(bytes.NewReader(body))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		t, ok := tok.(xml.StartElement)
		if !ok || localName(t.Name.Local) != "element" {
			continue
		}

		id := attr(t, "id")
		if id == "" {
			continue
		}

		href := "#" + id
		concepts[href] = &ConceptMeta{
			Href:        href,
			Name:        attr(t, "name"),
			BalanceType: attr(t, "balance"),
			PeriodType:  attr(t, "periodType"),
		}
	}

	return concepts, nil
}
