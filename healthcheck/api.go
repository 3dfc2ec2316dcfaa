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

// Package healthcheck pings a healthchecks.io-style dead man's switch around
// a scheduled run so an operator is paged the moment a cron'd ingestion job
// stops firing, rather than discovering it weeks later when a filing is
// missing from the warehouse.
package healthcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var ErrStatus = errors.New("healthcheck ping returned a non-2xx status")

// Pinger reports the start, success, and failure of a scheduled run to a
// single dead man's switch URL.
type Pinger struct {
	client  *resty.Client
	baseURL string
}

// NewPinger returns a no-op Pinger when baseURL is empty, so callers can
// wire it unconditionally and only pay the network cost when a monitor URL
// is actually configured.
func NewPinger(baseURL string) *Pinger {
	return &Pinger{client: resty.New(), baseURL: baseURL}
}

func (p *Pinger) ping(ctx context.Context, suffix string) error {
	if p.baseURL == "" {
		return nil
	}
	resp, err := p.client.R().SetContext(ctx).Get(p.baseURL + suffix)
	if err != nil {
		return fmt.Errorf("ping %s%s: %w", p.baseURL, suffix, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}
	return nil
}

// Start signals that a scheduled batch run has begun.
func (p *Pinger) Start(ctx context.Context) error { return p.ping(ctx, "/start") }

// Success signals that a scheduled batch run completed with no failures.
func (p *Pinger) Success(ctx context.Context) error { return p.ping(ctx, "") }

// Fail signals that a scheduled batch run hit at least one unrecoverable
// filing error, so the monitor's alert fires even though the process exited
// cleanly.
func (p *Pinger) Fail(ctx context.Context) error { return p.ping(ctx, "/fail") }
