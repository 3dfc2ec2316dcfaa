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

// Package fetcher implements C1: retrieving a filing instance document and
// its sibling linkbase files from SEC EDGAR (or a configured mirror), with a
// content-addressed on-disk cache keyed by (ticker, year, filing_type).
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// secRequestRate matches SEC EDGAR's published fair-access guideline of no
// more than 10 requests/second per client.
func secRequestRate() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second/10), 1)
}

// Filing is everything C3 needs to start parsing: the primary instance
// document and whatever sibling linkbase files were found alongside it.
type Filing struct {
	Ticker       string
	Year         int
	FilingType   domain.FilingType
	AccessionNo  string
	SourceURL    string
	Instance     []byte
	InstanceName string
	Linkbases    map[string][]byte // keyed by suffix: pre, cal, lab, ref, def
}

// Config is the subset of §6.5 environment inputs the fetcher needs.
type Config struct {
	CacheDir  string
	MirrorURL string // empty means use SEC EDGAR directly
	UserAgent string // SEC requires a descriptive User-Agent identifying the requester
}

type Fetcher struct {
	cfg     Config
	client  *resty.Client
	limiter *rate.Limiter
	cache   *Cache
}

func New(cfg Config) *Fetcher {
	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(30 * time.Second)

	return &Fetcher{
		cfg:     cfg,
		client:  client,
		limiter: secRequestRate(),
		cache:   NewCache(cfg.CacheDir),
	}
}

// Fetch retrieves (ticker, year, filingType), consulting the disk cache
// first. A cache hit short-circuits the network entirely.
func (f *Fetcher) Fetch(ctx context.Context, ticker string, year int, filingType domain.FilingType) (*Filing, error) {
	logger := log.Ctx(ctx).With().Str("ticker", ticker).Int("year", year).Str("filingType", string(filingType)).Logger()

	key := cacheKey(ticker, year, filingType)
	if cached, ok := f.cache.Load(key); ok {
		logger.Debug().Str("cacheKey", key).Msg("fetcher cache hit")
		return cached, nil
	}

	landing, err := f.resolveLandingURL(ctx, ticker, year, filingType)
	if err != nil {
		return nil, &domain.FetchError{Ticker: ticker, Year: year, FilingType: string(filingType), Err: err}
	}

	filing, err := f.downloadWithRetry(ctx, landing)
	if err != nil {
		return nil, &domain.FetchError{Ticker: ticker, Year: year, FilingType: string(filingType), Err: err}
	}
	filing.Ticker = ticker
	filing.Year = year
	filing.FilingType = filingType

	if err := f.cache.Store(key, filing); err != nil {
		logger.Warn().Err(err).Msg("could not persist fetcher cache entry")
	}

	return filing, nil
}

// landingDoc describes a resolved EDGAR filing index: the instance document
// plus every linkbase sibling discovered in the same accession directory.
type landingDoc struct {
	baseURL      string
	accessionNo  string
	instanceName string
	linkbaseURLs map[string]string
}

// resolveLandingURL finds the filing's accession directory. In production
// this would hit EDGAR's full-text search / submissions JSON API; the
// mirror URL indirection exists so tests and air-gapped runs can point at a
// static fixture server instead.
func (f *Fetcher) resolveLandingURL(ctx context.Context, ticker string, year int, filingType domain.FilingType) (*landingDoc, error) {
	base := f.cfg.MirrorURL
	if base == "" {
		base = "https://www.sec.gov/cgi-bin/browse-edgar"
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.client.R().SetContext(ctx).
		SetQueryParam("action", "getcompany").
		SetQueryParam("company", ticker).
		SetQueryParam("type", string(filingType)).
		SetQueryParam("dateb", fmt.Sprintf("%d1231", year)).
		Get(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchNetwork, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, domain.ErrFetchNotFound
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrFetchNetwork, resp.StatusCode())
	}

	doc, err := parseFilingIndex(resp.Body(), ticker, year, filingType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchNotFound, err)
	}
	return doc, nil
}

// downloadWithRetry downloads the instance document and each linkbase
// sibling, retrying transient transport errors with capped exponential
// backoff (3 attempts, waiting ~1s and then ~4s between them, per §5).
func (f *Fetcher) downloadWithRetry(ctx context.Context, doc *landingDoc) (*Filing, error) {
	filing := &Filing{
		AccessionNo: doc.accessionNo,
		SourceURL:   doc.baseURL,
		Linkbases:   make(map[string][]byte, len(doc.linkbaseURLs)),
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.Multiplier = 4
	policy.MaxElapsedTime = 0
	retrier := backoff.WithMaxRetries(policy, 2) // 3 total attempts

	fetchOne := func(url string) ([]byte, error) {
		var body []byte
		op := func() error {
			if err := f.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
			resp, err := f.client.R().SetContext(ctx).Get(url)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrFetchNetwork, err)
			}
			if resp.StatusCode() == http.StatusNotFound {
				return backoff.Permanent(domain.ErrFetchNotFound)
			}
			if resp.StatusCode() >= 500 {
				return fmt.Errorf("%w: status %d", domain.ErrFetchNetwork, resp.StatusCode())
			}
			if resp.StatusCode() >= 400 {
				return backoff.Permanent(fmt.Errorf("%w: status %d", domain.ErrFetchNetwork, resp.StatusCode()))
			}
			body = resp.Body()
			return nil
		}
		err := backoff.Retry(op, retrier)
		return body, err
	}

	instance, err := fetchOne(doc.baseURL + "/" + doc.instanceName)
	if err != nil {
		return nil, err
	}
	filing.Instance = instance
	filing.InstanceName = doc.instanceName

	for suffix, url := range doc.linkbaseURLs {
		body, err := fetchOne(url)
		if err != nil {
			// Missing linkbases are tolerated (§6.1); skip and move on.
			log.Ctx(ctx).Warn().Err(err).Str("linkbase", suffix).Msg("linkbase sibling unavailable, skipping")
			continue
		}
		filing.Linkbases[suffix] = body
	}

	return filing, nil
}

func cacheKey(ticker string, year int, filingType domain.FilingType) string {
	return slug.Make(fmt.Sprintf("%s-%d-%s", ticker, year, filingType))
}
