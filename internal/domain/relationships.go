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

// RelationshipSource records where a calc/presentation arc came from.
type RelationshipSource string

const (
	SourceXBRL        RelationshipSource = "xbrl"
	SourceDimensional RelationshipSource = "dimensional"
	SourceStandard    RelationshipSource = "standard"
)

// CalcRel is a calc_rel row: a parent/child summation arc.
type CalcRel struct {
	ID            int64              `db:"id"`
	FilingID      int64              `db:"filing_id"`
	ParentQName   string             `db:"parent_concept"`
	ChildQName    string             `db:"child_concept"`
	Weight        CalcWeight         `db:"weight"`
	Order         int                `db:"order_index"`
	Source        RelationshipSource `db:"source"`
	IsSynthetic   bool               `db:"is_synthetic"`
	Confidence    float64            `db:"confidence"`
}

// PresRel is a pres_rel row: a presentation-linkbase parent/child arc.
type PresRel struct {
	ID            int64              `db:"id"`
	FilingID      int64              `db:"filing_id"`
	ParentQName   string             `db:"parent_concept"`
	ChildQName    string             `db:"child_concept"`
	Order         int                `db:"order_index"`
	RoleURI       string             `db:"role_uri"`
	StatementType StatementType      `db:"statement_type"`
	Source        RelationshipSource `db:"source"`
	IsSynthetic   bool               `db:"is_synthetic"`
}

// FootnoteRef is a footnote_ref row; either FactID or ConceptQName is set.
type FootnoteRef struct {
	ID          int64   `db:"id"`
	FilingID    int64   `db:"filing_id"`
	FactID      *int64  `db:"fact_id"`
	ConceptQName string `db:"concept"`
	Text        string  `db:"text"`
	Label       string  `db:"label"`
	Role        string  `db:"role"`
	Lang        string  `db:"lang"`
}

// BalanceSheetSide is which side of the balance-sheet equation a main item
// belongs to.
type BalanceSheetSide string

const (
	SideAssets            BalanceSheetSide = "assets"
	SideLiabilitiesEquity BalanceSheetSide = "liabilities_equity"
)

// StatementItem is a statement_item row: a main-statement classification of
// a concept with its display order.
type StatementItem struct {
	ID            int64            `db:"id"`
	FilingID      int64            `db:"filing_id"`
	ConceptQName  string           `db:"concept"`
	StatementType StatementType    `db:"statement_type"`
	DisplayOrder  int              `db:"display_order"`
	IsHeader      bool             `db:"is_header"`
	IsMainItem    bool             `db:"is_main_item"`
	RoleURI       string           `db:"role_uri"`
	Side          BalanceSheetSide `db:"side"`
}
