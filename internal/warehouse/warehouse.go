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

// Package warehouse implements C5: loading a parsed, normalized filing into
// the star schema, one filing per transaction.
package warehouse

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// Warehouse wraps the connection pool C5 (and C6/C7/C8 downstream) use to
// read and write the star schema.
type Warehouse struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Warehouse {
	return &Warehouse{Pool: pool}
}

// LoadFiling persists company, filing, periods, concepts, dimensions and
// facts for one filing inside a single transaction. A failure at any step
// rolls back the whole filing (§6.2 "transaction-per-filing"). normalized is
// C4's concept QName -> normalized_label map, written onto each concept's
// dim_concepts row as it is upserted.
func (w *Warehouse) LoadFiling(ctx context.Context, company *domain.Company, filing *domain.Filing, facts []*domain.Fact, periods map[string]*domain.TimePeriod, normalized map[string]string) error {
	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return &domain.LoadError{FilingID: filing.AccessionNumber, Err: fmt.Errorf("%w: %v", domain.ErrLoadTransaction, err)}
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	companyID, err := upsertCompany(ctx, tx, company)
	if err != nil {
		return &domain.LoadError{FilingID: filing.AccessionNumber, Err: err}
	}
	filing.CompanyID = companyID

	filingID, err := upsertFiling(ctx, tx, filing)
	if err != nil {
		return &domain.LoadError{FilingID: filing.AccessionNumber, Err: err}
	}
	filing.ID = filingID

	periodIDs := make(map[string]int64, len(periods))
	for ctxID, p := range periods {
		id, err := upsertPeriod(ctx, tx, p)
		if err != nil {
			return &domain.LoadError{FilingID: filing.AccessionNumber, Err: err}
		}
		periodIDs[ctxID] = id
	}

	conceptIDs := make(map[string]int64)
	dimensionIDs := make(map[string]int64)

	for _, f := range facts {
		conceptID, ok := conceptIDs[f.ConceptQName]
		if !ok {
			conceptID, err = upsertConcept(ctx, tx, f, normalized[f.ConceptQName])
			if err != nil {
				return &domain.LoadError{FilingID: filing.AccessionNumber, Err: err}
			}
			conceptIDs[f.ConceptQName] = conceptID
		}
		f.ConceptID = conceptID
		f.CompanyID = companyID
		f.FilingID = filingID

		if pid, ok := periodIDs[f.ContextID]; ok {
			f.PeriodID = pid
		}

		if len(f.DimMembers) > 0 {
			dim, err := domain.NewXBRLDimension(f.DimMembers)
			if err != nil {
				return &domain.LoadError{FilingID: filing.AccessionNumber, Err: err}
			}
			dimID, ok := dimensionIDs[dim.Hash]
			if !ok {
				dimID, err = upsertDimension(ctx, tx, dim)
				if err != nil {
					return &domain.LoadError{FilingID: filing.AccessionNumber, Err: err}
				}
				dimensionIDs[dim.Hash] = dimID
			}
			f.DimensionID = &dimID
		}

		if err := upsertFact(ctx, tx, f); err != nil {
			return &domain.LoadError{FilingID: filing.AccessionNumber, Err: fmt.Errorf("%w: %v", domain.ErrLoadConflict, err)}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.LoadError{FilingID: filing.AccessionNumber, Err: fmt.Errorf("%w: %v", domain.ErrLoadTransaction, err)}
	}
	return nil
}

func upsertCompany(ctx context.Context, tx pgx.Tx, c *domain.Company) (int64, error) {
	var id int64
	err := pgxscan.Get(ctx, tx, &id, `
		INSERT INTO dim_companies (ticker, legal_name, cik, sector, industry, country, accounting_standard)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT dim_companies_ticker_key DO UPDATE SET
			legal_name = EXCLUDED.legal_name,
			cik = EXCLUDED.cik,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			country = EXCLUDED.country,
			accounting_standard = EXCLUDED.accounting_standard
		RETURNING id`,
		c.Ticker, c.LegalName, c.CIK, c.Sector, c.Industry, c.Country, c.AccStandard)
	return id, err
}

func upsertFiling(ctx context.Context, tx pgx.Tx, f *domain.Filing) (int64, error) {
	var id int64
	err := pgxscan.Get(ctx, tx, &id, `
		INSERT INTO dim_filings (company_id, filing_type, fiscal_year_end, filing_date, accession_number, source_url, extraction_time)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT ON CONSTRAINT dim_filings_accession_number_key DO UPDATE SET
			source_url = EXCLUDED.source_url,
			extraction_time = now()
		RETURNING id`,
		f.CompanyID, f.FilingType, f.FiscalYearEnd, f.FilingDate, f.AccessionNumber, f.SourceURL)
	return id, err
}

func upsertPeriod(ctx context.Context, tx pgx.Tx, p *domain.TimePeriod) (int64, error) {
	var id int64
	err := pgxscan.Get(ctx, tx, &id, `
		INSERT INTO dim_time_periods (instant_date, period_start, period_end, fiscal_year, fiscal_quarter, period_label)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT dim_time_periods_business_key DO UPDATE SET
			fiscal_year = EXCLUDED.fiscal_year,
			fiscal_quarter = EXCLUDED.fiscal_quarter
		RETURNING id`,
		p.Instant, p.Start, p.End, p.FiscalYear, p.FiscalQuarter, p.PeriodLabel)
	return id, err
}

func upsertConcept(ctx context.Context, tx pgx.Tx, f *domain.Fact, normalizedLabel string) (int64, error) {
	var id int64
	err := pgxscan.Get(ctx, tx, &id, `
		INSERT INTO dim_concepts (concept_name, taxonomy, normalized_label)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT dim_concepts_business_key DO UPDATE SET
			normalized_label = COALESCE(NULLIF(EXCLUDED.normalized_label, ''), dim_concepts.normalized_label)
		RETURNING id`,
		localConceptName(f.ConceptQName), f.Taxonomy, normalizedLabel)
	return id, err
}

// SaveConceptMetadata writes the statement placement and hierarchy
// information C6 derives onto each concept's dim_concepts row: statement
// type, hierarchy level, preferred label and calc weight directly, and
// parent_concept_id resolved from the parent's own QName via a self-join
// (the parent's dim_concepts row must already exist, which LoadFiling
// guarantees for every concept appearing in the filing's facts).
func (w *Warehouse) SaveConceptMetadata(ctx context.Context, entries []domain.ConceptMetadata) error {
	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save concept metadata: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	for _, e := range entries {
		taxonomy, name := splitQName(e.ConceptQName)
		parentTaxonomy, parentName := splitQName(e.ParentQName)
		if parentName == "" {
			parentTaxonomy = taxonomy
		}

		if _, err := tx.Exec(ctx, `
			UPDATE dim_concepts SET
				statement_type = $3,
				hierarchy_level = $4,
				preferred_label = COALESCE(NULLIF($5, ''), preferred_label),
				calculation_weight = $6,
				parent_concept_id = (
					SELECT id FROM dim_concepts WHERE concept_name = $7 AND taxonomy = $8
				)
			WHERE concept_name = $1 AND taxonomy = $2`,
			name, taxonomy, e.StatementType, e.HierarchyLevel, e.PreferredLabel, e.CalculationWeight,
			parentName, parentTaxonomy); err != nil {
			return fmt.Errorf("save concept metadata for %s: %w", e.ConceptQName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save concept metadata: %w", err)
	}
	return nil
}

func splitQName(qname string) (taxonomy, local string) {
	for i := len(qname) - 1; i >= 0; i-- {
		if qname[i] == ':' {
			return qname[:i], qname[i+1:]
		}
	}
	return "", qname
}

func upsertDimension(ctx context.Context, tx pgx.Tx, dim *domain.XBRLDimension) (int64, error) {
	var id int64
	err := pgxscan.Get(ctx, tx, &id, `
		INSERT INTO dim_xbrl_dimensions (canonical_json, hash)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT dim_xbrl_dimensions_hash_key DO UPDATE SET
			canonical_json = EXCLUDED.canonical_json
		RETURNING id`,
		dim.Canon, dim.Hash)
	return id, err
}

func upsertFact(ctx context.Context, tx pgx.Tx, f *domain.Fact) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO fact (
			filing_id, company_id, concept_id, period_id, dimension_id,
			value_numeric, value_text, unit, decimals, scale,
			context_id, xbrl_fact_id, source_line, order_index, is_primary,
			is_calculated, extraction_method
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT ON CONSTRAINT fact_business_key DO UPDATE SET
			value_numeric = EXCLUDED.value_numeric,
			value_text = EXCLUDED.value_text,
			is_primary = EXCLUDED.is_primary,
			extraction_method = EXCLUDED.extraction_method`,
		f.FilingID, f.CompanyID, f.ConceptID, f.PeriodID, f.DimensionID,
		f.ValueNumeric, f.ValueText, f.Unit, f.Decimals, f.Scale,
		f.ContextID, f.XBRLFactID, f.SourceLine, f.OrderIndex, f.IsPrimary,
		f.IsCalculated, f.ExtractionMethod)
	return err
}

func localConceptName(qname string) string {
	for i := len(qname) - 1; i >= 0; i-- {
		if qname[i] == ':' {
			return qname[i+1:]
		}
	}
	return qname
}
