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
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/gosimple/slug"
)

// Snapshot is the on-disk, JSON-serialisable form of an Index: a plain map
// survives marshalling where the live haxmap-backed Index does not.
type Snapshot struct {
	Taxonomy string                  `json:"taxonomy"`
	Concepts map[string]*ConceptMeta `json:"concepts"`
}

// Cache persists built taxonomy snapshots on disk, content-addressed by
// taxonomy name, so repeated pipeline runs against the same taxonomy version
// skip re-downloading and re-parsing linkbases entirely.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(taxonomyName string) string {
	return filepath.Join(c.dir, slug.Make(taxonomyName)+".json")
}

// Load returns a previously cached Index, or ok=false on a miss or a corrupt
// entry — same tolerance policy as the fetcher's disk cache: a bad cache
// entry triggers a rebuild, never a pipeline abort.
func (c *Cache) Load(taxonomyName string) (*Index, bool) {
	raw, err := os.ReadFile(c.path(taxonomyName))
	if err != nil {
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}

	idx := newIndex(snap.Taxonomy)
	for href, c := range snap.Concepts {
		idx.concepts.Set(href, c)
	}
	idx.buildEquivalenceGroups()
	idx.buildLabelFallbackGroups()
	return idx, true
}

// Store snapshots idx to disk atomically (write-then-rename).
func (c *Cache) Store(idx *Index) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	snap := Snapshot{Taxonomy: idx.Taxonomy, Concepts: make(map[string]*ConceptMeta, idx.Len())}
	idx.concepts.ForEach(func(href string, meta *ConceptMeta) bool {
		snap.Concepts[href] = meta
		return true
	})

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal taxonomy snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "taxonomy-*.tmp")
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

	return os.Rename(tmpName, c.path(idx.Taxonomy))
}
