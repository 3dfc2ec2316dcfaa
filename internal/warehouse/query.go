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
package warehouse

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

type factRow struct {
	domain.Fact
	ConceptName      string `db:"concept_name"`
	Taxonomy         string `db:"taxonomy"`
	NormalizedLabel  string `db:"normalized_label"`
}

// FactsForFiling reloads every primary fact belonging to filingID, along
// with the normalized label the loader resolved each concept to, so a
// standalone `validate` run can re-check an already-loaded filing without
// re-parsing its instance document.
func (w *Warehouse) FactsForFiling(ctx context.Context, filingID int64) ([]*domain.Fact, map[string]string, error) {
	var rows []factRow
	err := pgxscan.Select(ctx, w.Pool, &rows, `
		SELECT f.*, dc.concept_name, dc.taxonomy, dc.normalized_label
		FROM fact f
		JOIN dim_concepts dc ON dc.id = f.concept_id
		WHERE f.filing_id = $1`, filingID)
	if err != nil {
		return nil, nil, err
	}

	facts := make([]*domain.Fact, 0, len(rows))
	normalized := make(map[string]string, len(rows))
	for i := range rows {
		r := rows[i]
		r.Fact.ConceptQName = r.ConceptName
		r.Fact.Taxonomy = r.Taxonomy
		facts = append(facts, &r.Fact)
		if r.NormalizedLabel != "" {
			normalized[r.ConceptName] = r.NormalizedLabel
		}
	}
	return facts, normalized, nil
}

// CalcRelsForFiling reloads the calc-linkbase edges saved for filingID.
func (w *Warehouse) CalcRelsForFiling(ctx context.Context, filingID int64) ([]domain.CalcRel, error) {
	var rels []domain.CalcRel
	err := pgxscan.Select(ctx, w.Pool, &rels, `
		SELECT parent_concept, child_concept, weight, order_index, source, is_synthetic, confidence
		FROM calc_rel WHERE filing_id = $1`, filingID)
	return rels, err
}

type periodRow struct {
	ContextID string `db:"context_id"`
	domain.TimePeriod
}

// PeriodsForFiling reloads the distinct time periods referenced by filingID's
// facts, keyed by the context id each fact was originally tagged with, so a
// standalone `validate` run can rebuild C8's fiscal-year-to-instant pairing
// the same way the pipeline does during the original load.
func (w *Warehouse) PeriodsForFiling(ctx context.Context, filingID int64) (map[string]*domain.TimePeriod, error) {
	var rows []periodRow
	err := pgxscan.Select(ctx, w.Pool, &rows, `
		SELECT DISTINCT f.context_id, dtp.*
		FROM fact f
		JOIN dim_time_periods dtp ON dtp.id = f.period_id
		WHERE f.filing_id = $1`, filingID)
	if err != nil {
		return nil, err
	}

	periods := make(map[string]*domain.TimePeriod, len(rows))
	for i := range rows {
		p := rows[i].TimePeriod
		periods[rows[i].ContextID] = &p
	}
	return periods, nil
}

// SaveReport persists a validation report's checks and rolls the weighted
// score up into dim_filings, so `info` and repeated `validate` runs see the
// latest score without re-deriving it.
func (w *Warehouse) SaveReport(ctx context.Context, report *domain.Report) error {
	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, c := range report.Checks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO validation_results (filing_id, check_name, passed, severity, expected, actual, difference, detail)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT ON CONSTRAINT validation_results_business_key DO UPDATE SET
				passed = EXCLUDED.passed,
				severity = EXCLUDED.severity,
				expected = EXCLUDED.expected,
				actual = EXCLUDED.actual,
				difference = EXCLUDED.difference,
				detail = EXCLUDED.detail,
				checked_at = now()`,
			report.FilingID, c.Name, c.Passed, c.Severity, c.Expected, c.Actual, c.Difference, c.Detail); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE dim_filings SET validation_score = $1 WHERE id = $2`, report.Score, report.FilingID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
