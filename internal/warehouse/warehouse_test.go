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

import "testing"

func TestLocalConceptName(t *testing.T) {
	cases := map[string]string{
		"us-gaap:Assets":     "Assets",
		"ifrs-full:Revenue":  "Revenue",
		"NoNamespaceConcept": "NoNamespaceConcept",
	}
	for qname, want := range cases {
		if got := localConceptName(qname); got != want {
			t.Errorf("localConceptName(%q) = %q, want %q", qname, got, want)
		}
	}
}
