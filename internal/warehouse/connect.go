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

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pooled connection to the warehouse database and wraps it
// in a Warehouse. The pool is lazily dialed by pgxpool, so a bad DSN only
// surfaces once the first query runs.
func Connect(ctx context.Context, dbURL string) (*Warehouse, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	return New(pool), nil
}

// Close releases the underlying connection pool.
func (w *Warehouse) Close() {
	w.Pool.Close()
}
