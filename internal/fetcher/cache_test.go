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
	"testing"
)

func TestCacheStoreLoadRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())

	filing := &Filing{
		Ticker:      "AAPL",
		AccessionNo: "0000320193-23-000106",
		Instance:    []byte("<xbrl></xbrl>"),
		Linkbases:   map[string][]byte{"pre": []byte("<pre/>")},
	}

	if err := cache.Store("aapl-2023-10-k", filing); err != nil {
		t.Fatalf("unexpected error storing: %v", err)
	}

	got, ok := cache.Load("aapl-2023-10-k")
	if !ok {
		t.Fatal("expected cache hit after store")
	}

	if got.AccessionNo != filing.AccessionNo {
		t.Errorf("AccessionNo: expected %q, got %q", filing.AccessionNo, got.AccessionNo)
	}
	if string(got.Instance) != string(filing.Instance) {
		t.Errorf("Instance: expected %q, got %q", filing.Instance, got.Instance)
	}
	if string(got.Linkbases["pre"]) != "<pre/>" {
		t.Errorf("Linkbases[pre]: expected <pre/>, got %q", got.Linkbases["pre"])
	}
}

func TestCacheLoadMiss(t *testing.T) {
	cache := NewCache(t.TempDir())

	if _, ok := cache.Load("does-not-exist"); ok {
		t.Error("expected cache miss for unknown key")
	}
}

func TestCacheKeyIsSlugSafe(t *testing.T) {
	key := cacheKey("BRK.B", 2023, "10-K")
	if key != "brk-b-2023-10-k" {
		t.Errorf("expected slugified cache key, got %q", key)
	}
}
