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
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats holds the counters Summary renders into markdown.
type Stats struct {
	Companies          int
	Filings            int
	Facts              int
	AvgValidationScore float64
	LastLoaded         time.Time
}

func (w *Warehouse) stats(ctx context.Context) (Stats, error) {
	var s Stats
	conn, err := w.Pool.Acquire(ctx)
	if err != nil {
		return s, err
	}
	defer conn.Release()

	if err := conn.QueryRow(ctx, "SELECT count(*) FROM dim_companies").Scan(&s.Companies); err != nil {
		return s, err
	}
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM dim_filings").Scan(&s.Filings); err != nil {
		return s, err
	}
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM fact").Scan(&s.Facts); err != nil {
		return s, err
	}
	if err := conn.QueryRow(ctx, "SELECT coalesce(avg(validation_score), 0) FROM dim_filings").Scan(&s.AvgValidationScore); err != nil {
		return s, err
	}
	if err := conn.QueryRow(ctx, "SELECT coalesce(max(extraction_time), '0001-01-01'::timestamptz) FROM dim_filings").Scan(&s.LastLoaded); err != nil {
		return s, err
	}
	return s, nil
}

// Summary renders a markdown description of the warehouse's current
// contents, in the same register the teacher's library summary used:
// counters followed by a relative "last updated" timestamp.
func (w *Warehouse) Summary(ctx context.Context) (string, error) {
	s, err := w.stats(ctx)
	if err != nil {
		return "", err
	}

	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("# FinSight Warehouse\n\n")
	b.WriteString("## Details\n\n")
	b.WriteString(p.Sprintf("  * Companies: %d\n", s.Companies))
	b.WriteString(p.Sprintf("  * Filings Loaded: %d\n", s.Filings))
	b.WriteString(p.Sprintf("  * Facts Stored: %d\n\n", s.Facts))
	b.WriteString(fmt.Sprintf("Average Validation Score: %.1f%%\n\n", s.AvgValidationScore*100))

	if s.LastLoaded.Equal(time.Time{}) {
		b.WriteString("Last Loaded: Never\n")
	} else {
		age := timeago.English.Format(s.LastLoaded)
		b.WriteString(fmt.Sprintf("Last Loaded: %s (%s)\n", age, s.LastLoaded.Local().Format("01/02/2006")))
	}

	return b.String(), nil
}
