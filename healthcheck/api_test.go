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
package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPingerNoopWithoutURL(t *testing.T) {
	p := NewPinger("")
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Errorf("Start: %v", err)
	}
	if err := p.Success(ctx); err != nil {
		t.Errorf("Success: %v", err)
	}
	if err := p.Fail(ctx); err != nil {
		t.Errorf("Fail: %v", err)
	}
}

func TestPingerHitsExpectedSuffixes(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPinger(srv.URL)
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Success(ctx); err != nil {
		t.Fatalf("Success: %v", err)
	}
	if err := p.Fail(ctx); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	want := []string{"/start", "/", "/fail"}
	if len(gotPaths) != len(want) {
		t.Fatalf("expected %d requests, got %d (%v)", len(want), len(gotPaths), gotPaths)
	}
	for i, w := range want {
		if gotPaths[i] != w {
			t.Errorf("request %d: expected path %q, got %q", i, w, gotPaths[i])
		}
	}
}

func TestPingerErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPinger(srv.URL)
	if err := p.Success(context.Background()); err == nil {
		t.Error("want error for 500 response, got nil")
	}
}
