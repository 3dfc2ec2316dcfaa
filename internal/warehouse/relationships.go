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

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// SaveRelationships persists calc/presentation arcs, footnote references and
// statement-item classifications for one filing, in a transaction of its own
// opened on Warehouse.Pool (not LoadFiling's), since C6/C7 run as a
// follow-on step after facts are committed.
func (w *Warehouse) SaveRelationships(ctx context.Context, filingID int64, calc []domain.CalcRel, pres []domain.PresRel, footnotes []domain.FootnoteRef, items []domain.StatementItem) error {
	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, c := range calc {
		if _, err := tx.Exec(ctx, `
			INSERT INTO calc_rel (filing_id, parent_concept, child_concept, weight, order_index, source, is_synthetic, confidence)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT ON CONSTRAINT calc_rel_business_key DO UPDATE SET weight = EXCLUDED.weight, order_index = EXCLUDED.order_index`,
			filingID, c.ParentQName, c.ChildQName, c.Weight, c.Order, c.Source, c.IsSynthetic, c.Confidence); err != nil {
			return err
		}
	}

	for _, p := range pres {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pres_rel (filing_id, parent_concept, child_concept, order_index, role_uri, statement_type, source, is_synthetic)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT ON CONSTRAINT pres_rel_business_key DO UPDATE SET order_index = EXCLUDED.order_index`,
			filingID, p.ParentQName, p.ChildQName, p.Order, p.RoleURI, p.StatementType, p.Source, p.IsSynthetic); err != nil {
			return err
		}
	}

	for _, f := range footnotes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO footnote_ref (filing_id, fact_id, concept, text, label, role, lang)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			filingID, f.FactID, f.ConceptQName, f.Text, f.Label, f.Role, f.Lang); err != nil {
			return err
		}
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO statement_item (filing_id, concept, statement_type, display_order, is_header, is_main_item, role_uri, side)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT ON CONSTRAINT statement_item_business_key DO UPDATE SET display_order = EXCLUDED.display_order`,
			filingID, item.ConceptQName, item.StatementType, item.DisplayOrder, item.IsHeader, item.IsMainItem, item.RoleURI, item.Side); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
