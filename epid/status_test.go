// Copyright (c) 2026 Fraunhofer AISEC
// Fraunhofer-Gesellschaft zur Foerderung der angewandten Forschung e.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package epid

import (
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{"Success", StatusSuccess, "SGX_SUCCESS"},
		{"Update Needed", StatusUpdateNeeded, "SGX_ERROR_UPDATE_NEEDED"},
		{"EPC", StatusOutOfEpc, "SGX_ERROR_OUT_OF_EPC"},
		{"Unknown", Status(0x4014), "SGX_STATUS_0x00004014"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Status
		wantErr bool
	}{
		{"Name", "SGX_ERROR_BUSY", StatusBusy, false},
		{"Name Lowercase", "sgx_error_update_needed", StatusUpdateNeeded, false},
		{"Hex", "0x4006", StatusUpdateNeeded, false},
		{"Decimal", "0", StatusSuccess, false},
		{"Unknown Number", "0xABCDEF", Status(0xABCDEF), false},
		{"Empty", "", 0, true},
		{"Garbage", "SGX_ERROR_NOPE", 0, true},
		{"Overflow", "0x100000000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKnownStatuses(t *testing.T) {
	statuses := KnownStatuses()
	if len(statuses) != len(statusNames) {
		t.Fatalf("KnownStatuses() returned %v statuses, want %v", len(statuses), len(statusNames))
	}
	for i := 1; i < len(statuses); i++ {
		if statuses[i-1] >= statuses[i] {
			t.Errorf("KnownStatuses() not sorted at index %v", i)
		}
	}
	for _, s := range statuses {
		if !s.Known() {
			t.Errorf("%v not known", s)
		}
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%v) = %v, %v", s.String(), got, err)
		}
	}
}

func TestLabel(t *testing.T) {
	labelled := 0
	for _, s := range KnownStatuses() {
		if Label(s) != FallbackMarker {
			labelled++
			if Label(s) != s.String() {
				t.Errorf("Label(%v) = %v", s, Label(s))
			}
		}
	}
	if labelled != 12 {
		t.Errorf("%v statuses have labels, want 12", labelled)
	}
}
