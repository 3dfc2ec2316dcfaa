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
package fetcher

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// edgarIndex mirrors the shape of the index.json EDGAR serves alongside
// every accession directory: {"directory": {"name": "...", "item": [...]}}.
type edgarIndex struct {
	Directory struct {
		Name string `json:"name"`
		Item []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"item"`
	} `json:"directory"`
}

var linkbaseSuffixes = map[string]string{
	"_pre.xml": "pre",
	"_cal.xml": "cal",
	"_lab.xml": "lab",
	"_ref.xml": "ref",
	"_def.xml": "def",
}

// parseFilingIndex turns an EDGAR accession-directory index.json body into a
// landingDoc identifying the instance document and its linkbase siblings.
func parseFilingIndex(body []byte, ticker string, year int, filingType domain.FilingType) (*landingDoc, error) {
	var idx edgarIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, fmt.Errorf("decode edgar index: %w", err)
	}

	if len(idx.Directory.Item) == 0 {
		return nil, fmt.Errorf("no filing found for %s %s %d", ticker, filingType, year)
	}

	doc := &landingDoc{
		baseURL:      strings.TrimSuffix(idx.Directory.Name, "/"),
		accessionNo:  accessionFromPath(idx.Directory.Name),
		linkbaseURLs: make(map[string]string, len(linkbaseSuffixes)),
	}

	var bestInstance string
	for _, item := range idx.Directory.Item {
		lower := strings.ToLower(item.Name)

		matchedLinkbase := false
		for suffix, kind := range linkbaseSuffixes {
			if strings.HasSuffix(lower, suffix) {
				doc.linkbaseURLs[kind] = doc.baseURL + "/" + item.Name
				matchedLinkbase = true
				break
			}
		}
		if matchedLinkbase {
			continue
		}

		if strings.HasSuffix(lower, ".xml") || strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html") {
			// Prefer the inline-XBRL primary document, which EDGAR names
			// without a linkbase suffix and is usually the longest filename
			// among the non-linkbase siblings (ticker + date + form).
			if len(item.Name) > len(bestInstance) {
				bestInstance = item.Name
			}
		}
	}

	if bestInstance == "" {
		return nil, fmt.Errorf("no instance document found in accession %s", doc.accessionNo)
	}
	doc.instanceName = bestInstance

	return doc, nil
}

func accessionFromPath(dirName string) string {
	parts := strings.Split(strings.Trim(dirName, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
