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
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// Source names the schema and linkbase URLs that together make up one
// published taxonomy. Recognised taxonomy names are registered in
// knownSources below; an unrecognised name is a caller error, not a
// network failure.
type Source struct {
	Schema    string
	Linkbases map[string]string // kind ("lab","ref","cal","pre") -> URL
}

// knownSources carries the handful of taxonomies FinSight actually sees in
// practice: the current US-GAAP and IFRS entry points. Point releases are
// added here as filers adopt them.
var knownSources = map[string]Source{
	"us-gaap": {
		Schema: "https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-2023.xsd",
		Linkbases: map[string]string{
			"lab": "https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-lab-2023.xml",
			"ref": "https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-ref-2023.xml",
			"cal": "https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-cal-2023.xml",
			"pre": "https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-pre-2023.xml",
		},
	},
	"ifrs-full": {
		Schema: "https://xbrl.ifrs.org/taxonomy/2023-03-23/full_ifrs/full_ifrs-cor_2023-03-23.xsd",
		Linkbases: map[string]string{
			"lab": "https://xbrl.ifrs.org/taxonomy/2023-03-23/full_ifrs/labels/lab_full_ifrs-en_2023-03-23.xml",
			"ref": "https://xbrl.ifrs.org/taxonomy/2023-03-23/full_ifrs/full_ifrs-cor_2023-03-23.xsd",
			"cal": "https://xbrl.ifrs.org/taxonomy/2023-03-23/full_ifrs/full_ifrs-cal_2023-03-23.xml",
			"pre": "https://xbrl.ifrs.org/taxonomy/2023-03-23/full_ifrs/full_ifrs-pre_2023-03-23.xml",
		},
	},
}

// Fetcher downloads and assembles a named taxonomy's Index, retrying
// transient failures with exponential backoff: up to 3 retries after the
// first attempt, at backoff's default intervals (a looser policy than
// internal/fetcher's 3 attempts in all).
type Fetcher struct {
	client *resty.Client
}

// NewFetcher builds a Fetcher using the given User-Agent, which the
// publishers of these taxonomies expect just like SEC EDGAR does.
func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetHeader("User-Agent", userAgent).
			SetTimeout(30 * time.Second),
	}
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return err
		}
		if resp.StatusCode() >= 500 {
			return fmt.Errorf("taxonomy fetch %s: server error %d", url, resp.StatusCode())
		}
		if resp.StatusCode() != 200 {
			return backoff.Permanent(fmt.Errorf("taxonomy fetch %s: status %d", url, resp.StatusCode()))
		}
		body = resp.Body()
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// Build downloads taxonomyName's schema and linkbases and assembles an
// Index, without consulting or populating the disk cache.
func (f *Fetcher) Build(ctx context.Context, taxonomyName string) (*Index, error) {
	src, ok := knownSources[taxonomyName]
	if !ok {
		return nil, fmt.Errorf("taxonomy: unknown taxonomy %q", taxonomyName)
	}

	schemaBody, err := f.get(ctx, src.Schema)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: fetch schema: %w", taxonomyName, err)
	}
	concepts, err := parseSchema(schemaBody)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: parse schema: %w", taxonomyName, err)
	}

	linkbases := make(map[string][]byte, len(src.Linkbases))
	for kind, url := range src.Linkbases {
		body, err := f.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("taxonomy %s: fetch %s linkbase: %w", taxonomyName, kind, err)
		}
		linkbases[kind] = body
	}

	return Build(taxonomyName, concepts, linkbases)
}

// Ensure returns cache's cached Index for taxonomyName, building and
// storing it on a cache miss.
func Ensure(ctx context.Context, cache *Cache, f *Fetcher, taxonomyName string) (*Index, error) {
	if idx, ok := cache.Load(taxonomyName); ok {
		return idx, nil
	}

	idx, err := f.Build(ctx, taxonomyName)
	if err != nil {
		return nil, err
	}
	if err := cache.Store(idx); err != nil {
		return nil, err
	}
	return idx, nil
}
