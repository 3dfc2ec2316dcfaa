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

// BalanceType classifies a concept's natural accounting sign.
type BalanceType string

const (
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
	BalanceNone   BalanceType = "none"
)

// PeriodType distinguishes point-in-time from duration concepts.
type PeriodType string

const (
	PeriodInstant  PeriodType = "instant"
	PeriodDuration PeriodType = "duration"
)

// StatementType is the primary financial statement a concept belongs to, or
// "notes"/"other" for everything else.
type StatementType string

const (
	StatementBalanceSheet        StatementType = "balance_sheet"
	StatementIncome              StatementType = "income_statement"
	StatementCashFlow            StatementType = "cash_flow"
	StatementComprehensiveIncome StatementType = "comprehensive_income"
	StatementEquity              StatementType = "equity_statement"
	StatementNotes               StatementType = "notes"
	StatementOther               StatementType = "other"
)

// HierarchyLevel is the vertical position of a concept within its statement.
type HierarchyLevel int

const (
	LevelDetail         HierarchyLevel = 1
	LevelSubtotal       HierarchyLevel = 2
	LevelSectionTotal   HierarchyLevel = 3
	LevelStatementTotal HierarchyLevel = 4
)

// CalcWeight is the summation direction of a concept as a calc-linkbase child.
type CalcWeight int

const (
	WeightPositive CalcWeight = 1
	WeightNegative CalcWeight = -1
)

// Concept is a dim_concepts row. Business key is (ConceptName, Taxonomy).
type Concept struct {
	ID                int64          `db:"id"`
	ConceptName       string         `db:"concept_name"`
	Taxonomy          string         `db:"taxonomy"`
	BalanceType       BalanceType    `db:"balance_type"`
	PeriodType        PeriodType     `db:"period_type"`
	DataType          string         `db:"data_type"`
	IsAbstract        bool           `db:"is_abstract"`
	StatementType     StatementType  `db:"statement_type"`
	NormalizedLabel   string         `db:"normalized_label"`
	PreferredLabel    string         `db:"preferred_label"`
	HierarchyLevel    HierarchyLevel `db:"hierarchy_level"`
	ParentConceptID   *int64         `db:"parent_concept_id"`
	CalculationWeight CalcWeight     `db:"calculation_weight"`
}

// QName returns the conventional "taxonomy:ConceptName" identifier used in
// XBRL instance documents and the mapping tables.
func (c *Concept) QName() string {
	return c.Taxonomy + ":" + c.ConceptName
}

// ConceptMetadata is the statement-placement and hierarchy information C6
// derives for one concept within a filing: which statement it belongs to,
// its vertical level, the preferred display label (from the presentation
// linkbase's preferredLabel role), its calc-linkbase summation weight, and
// its calc parent (if any), keyed by QName rather than a numeric ID since
// it is produced before the concept's dim_concepts row is known to exist.
type ConceptMetadata struct {
	ConceptQName      string
	StatementType     StatementType
	HierarchyLevel    HierarchyLevel
	PreferredLabel    string
	CalculationWeight CalcWeight
	ParentQName       string
}
