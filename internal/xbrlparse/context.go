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

// Package xbrlparse implements C3: turning a fetched instance document (and
// its inline-XBRL/linkbase fallback forms) into domain.Fact rows plus the
// contexts, units and dimension tuples they reference.
package xbrlparse

import (
	"time"

	"github.com/Nordic-OG-Raven/FinSight-sub000/internal/domain"
)

// Context is a parsed <context> element: the entity/period/dimension tuple
// facts reference by contextRef.
type Context struct {
	ID       string
	Instant  *time.Time
	Start    *time.Time
	End      *time.Time
	Entity   string
	Members  []domain.DimensionMember
}

// Period derives a domain.TimePeriod from the context's instant or
// start/end pair.
func (c *Context) Period() *domain.TimePeriod {
	if c.Instant != nil {
		return domain.NewInstantPeriod(*c.Instant)
	}
	if c.Start != nil && c.End != nil {
		return domain.NewDurationPeriod(*c.Start, *c.End)
	}
	return nil
}

// Unit is a parsed <unit> element: a measure or a numerator/denominator pair
// for divide units (e.g. USD/shares for per-share values).
type Unit struct {
	ID      string
	Measure string
}
