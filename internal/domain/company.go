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

import "github.com/rs/zerolog"

// AccountingStandard is the primary reporting framework a company files under.
type AccountingStandard string

const (
	USGAAP AccountingStandard = "us_gaap"
	IFRS   AccountingStandard = "ifrs"
)

// Company is the dim_companies row. Ticker is the business key.
type Company struct {
	ID          int64               `db:"id"`
	Ticker      string              `db:"ticker"`
	LegalName   string              `db:"legal_name"`
	CIK         string              `db:"cik"`
	Sector      string              `db:"sector"`
	Industry    string              `db:"industry"`
	Country     string              `db:"country"`
	AccStandard AccountingStandard  `db:"accounting_standard"`
}

func (c *Company) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", c.Ticker).Str("CIK", c.CIK).Str("AccountingStandard", string(c.AccStandard))
}
