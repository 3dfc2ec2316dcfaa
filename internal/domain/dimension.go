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
package domain

import (
	"crypto/md5" //nolint:gosec // business-key hash, not a security boundary
	"encoding/hex"

	json "github.com/goccy/go-json"
)

// DimensionMember is a single axis/member pair within an XBRL dimension tuple.
type DimensionMember struct {
	Axis   string `json:"axis"`
	Member string `json:"member"`
}

// XBRLDimension captures an opaque segment/scenario tuple as canonical JSON
// plus its MD5 hash as business key. A nil *XBRLDimension on a Fact denotes
// the consolidated (undimensioned) value.
type XBRLDimension struct {
	ID      int64             `db:"id"`
	Members []DimensionMember `db:"-"`
	Canon   string            `db:"canonical_json"`
	Hash    string            `db:"hash"`
}

// NewXBRLDimension canonicalises members (sorted by axis) and computes the
// business-key hash. Canonicalisation must be deterministic: two contexts
// with the same members in a different serialised order must collapse to the
// same dimension row.
func NewXBRLDimension(members []DimensionMember) (*XBRLDimension, error) {
	sorted := make([]DimensionMember, len(members))
	copy(sorted, members)
	sortMembers(sorted)

	canon, err := json.Marshal(sorted)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(canon) //nolint:gosec
	return &XBRLDimension{
		Members: sorted,
		Canon:   string(canon),
		Hash:    hex.EncodeToString(sum[:]),
	}, nil
}

func sortMembers(m []DimensionMember) {
	for i := 1; i < len(m); i++ {
		for j := i; j > 0 && m[j-1].Axis > m[j].Axis; j-- {
			m[j-1], m[j] = m[j], m[j-1]
		}
	}
}
