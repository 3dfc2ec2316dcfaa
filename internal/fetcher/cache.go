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
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Cache is a content-addressed on-disk store for fetched filings, keyed by
// the cacheKey computed from (ticker, year, filing_type). Writes are atomic:
// the serialised filing is written to a temp file in the same directory and
// renamed into place, so a crash mid-write never leaves a partial entry
// (§4.1 "emits no partial files").
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Load returns a cached Filing, or ok=false on a miss. Any read/decode error
// is treated as a miss: a corrupt cache entry should never abort a pipeline
// run, it should just be refetched.
func (c *Cache) Load(key string) (*Filing, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var filing Filing
	if err := json.Unmarshal(raw, &filing); err != nil {
		return nil, false
	}
	return &filing, true
}

// Store persists filing under key using a write-then-rename so concurrent
// pipeline instances racing on the same key never observe a partial file;
// the loser's rename simply overwrites the winner's, which is harmless since
// both encode the same upstream content (§5 "concurrent pipeline instances
// may race harmlessly on first write").
func (c *Cache) Store(key string, filing *Filing) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	raw, err := json.Marshal(filing)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "fetch-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, c.path(key))
}
