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

import "time"

// TimePeriod is a dim_time_periods row. The business key is the full tuple
// (Instant, Start, End) so near-identical periods coming from different
// filings of the same company are reused rather than duplicated.
type TimePeriod struct {
	ID           int64      `db:"id"`
	Instant      *time.Time `db:"instant_date"`
	Start        *time.Time `db:"period_start"`
	End          *time.Time `db:"period_end"`
	FiscalYear   int        `db:"fiscal_year"`
	FiscalQuarter *int      `db:"fiscal_quarter"`
	PeriodLabel  string     `db:"period_label"`
}

// IsInstant reports whether this is a point-in-time period (balance sheet).
func (p *TimePeriod) IsInstant() bool { return p.Instant != nil }

// FiscalYearFor implements the fiscal-year mapping rule from §3.1: a period
// ending in January-March belongs to the previous fiscal year. The reference
// date is the period's instant (balance sheet) or its end date (duration).
func FiscalYearFor(ref time.Time) int {
	if ref.Month() >= time.January && ref.Month() <= time.March {
		return ref.Year() - 1
	}
	return ref.Year()
}

// NewInstantPeriod builds a TimePeriod for a point-in-time fact.
func NewInstantPeriod(instant time.Time) *TimePeriod {
	fy := FiscalYearFor(instant)
	return &TimePeriod{
		Instant:     &instant,
		FiscalYear:  fy,
		PeriodLabel: instant.Format("2006-01-02"),
	}
}

// NewDurationPeriod builds a TimePeriod for a start/end duration fact. The
// fiscal year is assigned from the period end, matching how filers report
// fiscal-year-to-date and quarterly durations.
func NewDurationPeriod(start, end time.Time) *TimePeriod {
	fy := FiscalYearFor(end)
	return &TimePeriod{
		Start:       &start,
		End:         &end,
		FiscalYear:  fy,
		PeriodLabel: start.Format("2006-01-02") + "_" + end.Format("2006-01-02"),
	}
}
