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
package normalize

import "testing"

func TestResolveExplicitMapping(t *testing.T) {
	res := Resolve("us-gaap:Assets", nil, map[string]string{})
	if res.NormalizedLabel != "total_assets" {
		t.Errorf("expected total_assets, got %q", res.NormalizedLabel)
	}
	if res.Source != "explicit_mapping" {
		t.Errorf("expected explicit_mapping source, got %q", res.Source)
	}
}

func TestResolveGeneratesStableSnakeCaseWithHashSuffix(t *testing.T) {
	res1 := Resolve("custom:SomeWeirdExtensionMetric", nil, map[string]string{})
	res2 := Resolve("custom:SomeWeirdExtensionMetric", nil, map[string]string{})

	if res1.NormalizedLabel != res2.NormalizedLabel {
		t.Errorf("expected deterministic generation, got %q vs %q", res1.NormalizedLabel, res2.NormalizedLabel)
	}
	if res1.Source != "generated" {
		t.Errorf("expected generated source, got %q", res1.Source)
	}
	if res1.NormalizedLabel[:22] != "some_weird_extension_m" {
		t.Errorf("expected snake_case prefix, got %q", res1.NormalizedLabel)
	}
}

func TestResolveDistinguishesCollidingLocalNames(t *testing.T) {
	a := Resolve("taxonomyA:CustomMetric", nil, map[string]string{})
	b := Resolve("taxonomyB:CustomMetric", nil, map[string]string{})

	if a.NormalizedLabel == b.NormalizedLabel {
		t.Errorf("expected distinct labels for colliding local names across taxonomies, got %q for both", a.NormalizedLabel)
	}
}
