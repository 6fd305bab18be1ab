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
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var updateInfo = UpdateInfo{
	UcodeUpdate:  1,
	CsmeFwUpdate: 0,
	PswUpdate:    1,
}

func TestReportAttestationStatus(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{"Success", StatusSuccess, "SGX_SUCCESS\n"},
		{"Invalid Parameter", StatusInvalidParameter, "SGX_ERROR_INVALID_PARAMETER\n"},
		{"Invalid EPID Blob", StatusAeInvalidEpidBlob, "SGX_ERROR_AE_INVALID_EPIDBLOB\n"},
		{
			"Update Needed",
			StatusUpdateNeeded,
			"SGX_ERROR_UPDATE_NEEDED\nucodeUpdate = 1\ncsmeFwUpdate = 0\npswUpdate = 1\n",
		},
		{"Out Of Memory", StatusOutOfMemory, "SGX_ERROR_OUT_OF_MEMORY\n"},
		{"Service Unavailable", StatusServiceUnavailable, "SGX_ERROR_SERVICE_UNAVAILABLE\n"},
		{"Service Timeout", StatusServiceTimeout, "SGX_ERROR_SERVICE_TIMEOUT\n"},
		{"Busy", StatusBusy, "SGX_ERROR_BUSY\n"},
		{"Network Failure", StatusNetworkFailure, "SGX_ERROR_NETWORK_FAILURE\n"},
		{"Out Of EPC", StatusOutOfEpc, "SGX_ERROR_OUT_OF_EPC\n"},
		{"Unrecognized Platform", StatusUnrecognizedPlatform, "SGX_ERROR_UNRECOGNIZED_PLATFORM\n"},
		{"Unexpected", StatusUnexpected, "SGX_ERROR_UNEXPECTED\n"},
		{"Known Status Without Label", StatusEpidMemberRevoked, FallbackMarker + "\n"},
		{"Unknown Status", Status(0xDEADBEEF), FallbackMarker + "\n"},
		{"Unknown Status Max", Status(0xFFFFFFFF), FallbackMarker + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSimService(tt.status, updateInfo)
			out := new(bytes.Buffer)
			r := NewReporter(svc, out)

			if ret := r.ReportAttestationStatus(examplePlatformInfo); ret != 0 {
				t.Errorf("ReportAttestationStatus() = %v, want 0", ret)
			}
			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("ReportAttestationStatus() output mismatch (-want +got):\n%s", diff)
			}
			if svc.Calls() != 1 {
				t.Errorf("service called %v times, want 1", svc.Calls())
			}
			if svc.Last() != examplePlatformInfo {
				t.Errorf("service received %v, want %v", svc.Last(), examplePlatformInfo)
			}
		})
	}
}

func TestReportAttestationStatusLineCount(t *testing.T) {
	for _, s := range KnownStatuses() {
		out := new(bytes.Buffer)
		NewReporter(NewSimService(s, updateInfo), out).ReportAttestationStatus(examplePlatformInfo)

		lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
		want := 1
		if s == StatusUpdateNeeded {
			want = 4
		}
		if len(lines) != want {
			t.Errorf("%v: printed %v lines, want %v", s, len(lines), want)
		}
	}
}

func TestReportAttestationStatusIdempotent(t *testing.T) {
	for _, s := range []Status{StatusSuccess, StatusUpdateNeeded, Status(0x12345)} {
		svc := NewSimService(s, updateInfo)
		out := new(bytes.Buffer)
		r := NewReporter(svc, out)

		r.ReportAttestationStatus(examplePlatformInfo)
		first := out.String()
		out.Reset()
		r.ReportAttestationStatus(examplePlatformInfo)
		second := out.String()

		if first != second {
			t.Errorf("%v: output differs between calls: %q != %q", s, first, second)
		}
		if svc.Calls() != 2 {
			t.Errorf("%v: service called %v times, want 2", s, svc.Calls())
		}
	}
}

func TestReportAttestationStatusNilService(t *testing.T) {
	out := new(bytes.Buffer)
	r := NewReporter(nil, out)
	if ret := r.ReportAttestationStatus(examplePlatformInfo); ret != 0 {
		t.Errorf("ReportAttestationStatus() = %v, want 0", ret)
	}
	if out.Len() != 0 {
		t.Errorf("ReportAttestationStatus() wrote %q, want nothing", out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestReportAttestationStatusWriteError(t *testing.T) {
	r := NewReporter(NewSimService(StatusSuccess, UpdateInfo{}), failingWriter{})
	if ret := r.ReportAttestationStatus(examplePlatformInfo); ret != 0 {
		t.Errorf("ReportAttestationStatus() = %v, want 0", ret)
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   Outcome
	}{
		{
			name:   "Update Needed Carries Info",
			status: StatusUpdateNeeded,
			want:   UpdateNeeded{Info: updateInfo},
		},
		{
			name:   "Success Drops Info",
			status: StatusSuccess,
			want:   Other{Code: StatusSuccess},
		},
		{
			name:   "Unknown Status",
			status: Status(0x9999),
			want:   Other{Code: Status(0x9999)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReporter(NewSimService(tt.status, updateInfo), new(bytes.Buffer))
			got, err := r.Query(examplePlatformInfo)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Query() mismatch (-want +got):\n%s", diff)
			}
			if got.Status() != tt.status {
				t.Errorf("Query().Status() = %v, want %v", got.Status(), tt.status)
			}
		})
	}
}

func TestReportUpdateStatus(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		config uint32
		want   string
	}{
		{
			name:   "Success",
			status: StatusSuccess,
			want:   "SGX_SUCCESS\nconfigStatus = 0x00000000\n",
		},
		{
			name:   "Update Needed",
			status: StatusUpdateNeeded,
			config: 0x3,
			want: "SGX_ERROR_UPDATE_NEEDED\nucodeUpdate = 1\ncsmeFwUpdate = 0\npswUpdate = 1\n" +
				"configStatus = 0x00000003\n",
		},
		{
			name:   "Unknown",
			status: Status(0x4242),
			want:   FallbackMarker + "\nconfigStatus = 0x00000000\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSimService(tt.status, updateInfo)
			svc.ConfigStatus = tt.config
			out := new(bytes.Buffer)

			if ret := NewReporter(svc, out).ReportUpdateStatus(examplePlatformInfo); ret != 0 {
				t.Errorf("ReportUpdateStatus() = %v, want 0", ret)
			}
			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("ReportUpdateStatus() output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestReportAttestationStatusConcurrent(t *testing.T) {
	out := &lockedBuffer{}
	r := NewReporter(NewSimService(StatusUpdateNeeded, updateInfo), out)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ReportAttestationStatus(examplePlatformInfo)
		}()
	}
	wg.Wait()

	want := strings.Repeat("SGX_ERROR_UPDATE_NEEDED\nucodeUpdate = 1\ncsmeFwUpdate = 0\npswUpdate = 1\n", 16)
	if out.buf.String() != want {
		t.Errorf("concurrent reports interleaved:\n%s", out.buf.String())
	}
}
