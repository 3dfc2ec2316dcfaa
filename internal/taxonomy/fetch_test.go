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
package taxonomy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetcherBuildUnknownTaxonomy(t *testing.T) {
	f := NewFetcher("finsight-test/1.0")
	if _, err := f.Build(context.Background(), "not-a-real-taxonomy"); err == nil {
		t.Error("want error for unregistered taxonomy name, got nil")
	}
}

func TestFetcherBuildAssemblesIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/schema.xsd":
			w.Write([]byte(sampleSchema))
		case "/lab.xml":
			w.Write([]byte(testLabelLinkbase))
		case "/ref.xml":
			w.Write([]byte(testReferenceLinkbase))
		default:
			w.Write([]byte(`<linkbase/>`))
		}
	}))
	defer srv.Close()

	restoreKnownSources(t, Source{
		Schema: srv.URL + "/schema.xsd",
		Linkbases: map[string]string{
			"lab": srv.URL + "/lab.xml",
			"ref": srv.URL + "/ref.xml",
			"cal": srv.URL + "/cal.xml",
			"pre": srv.URL + "/pre.xml",
		},
	})

	f := NewFetcher("finsight-test/1.0")
	idx, err := f.Build(context.Background(), "us-gaap")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := idx.Lookup("#us-gaap_Assets"); !ok {
		t.Error("expected #us-gaap_Assets to be in the built index")
	}
}

func TestFetcherRetriesOnServerError(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher("finsight-test/1.0")
	body, err := f.get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("expected body %q, got %q", "ok", body)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestFetcherPermanentOn404(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher("finsight-test/1.0")
	if _, err := f.get(context.Background(), srv.URL); err == nil {
		t.Error("want error for 404, got nil")
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt for a permanent failure, got %d", attempts)
	}
}

// restoreKnownSources swaps in a taxonomy source pointing at a test server
// for the duration of the test, restoring the real registry afterward.
func restoreKnownSources(t *testing.T, src Source) {
	t.Helper()
	orig := knownSources["us-gaap"]
	knownSources["us-gaap"] = src
	t.Cleanup(func() { knownSources["us-gaap"] = orig })
}
