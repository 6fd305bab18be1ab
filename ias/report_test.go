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

package ias

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const (
	platformInfoBlob = "1502006504000100000a0a0202ff010c0000000000000000000d00000c00000002000000" +
		"0000000c2bcb11afd9db7bc5d66f8378b628f2f4aeaf1a50d46eabe7f32a22d4eddf19c097600958fb3999" +
		"8750c07d988ef78ceb2a935d1dd4e82087db9602a36e2872a303"
)

var testQuoteBody = QuoteBody{
	Version:     2,
	SignType:    1,
	EpidGroupId: [4]byte{0x0c, 0x0b, 0x00, 0x00},
	QeSvn:       11,
	PceSvn:      10,
	ReportBody: ReportBody{
		CpuSvn:     [16]byte{0x0f, 0x0f, 0x02, 0x04},
		MiscSelect: 0,
		Flags:      0x5,
		Xfrm:       0x7,
		MrEnclave:  [32]byte{0xaa, 0xbb, 0xcc},
		MrSigner:   [32]byte{0x11, 0x22, 0x33},
		IsvProdId:  1,
		IsvSvn:     3,
		ReportData: [64]byte{0xde, 0xad, 0xbe, 0xef},
	},
}

func encodeQuoteBody(t *testing.T, q QuoteBody) string {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, q); err != nil {
		t.Fatalf("failed to encode quote body: %v", err)
	}
	if buf.Len() != EPID_QUOTE_BODY_SIZE {
		t.Fatalf("encoded quote body has %v bytes, want %v", buf.Len(), EPID_QUOTE_BODY_SIZE)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newReport(t *testing.T, status string, blob string) *Report {
	t.Helper()
	return &Report{
		Id:                    "165171271757108173876306223827987629752",
		Timestamp:             "2026-10-18T09:45:35.658964",
		Version:               4,
		IsvEnclaveQuoteStatus: status,
		IsvEnclaveQuoteBody:   encodeQuoteBody(t, testQuoteBody),
		PlatformInfoBlob:      blob,
		AdvisoryIDs:           []string{"INTEL-SA-00334"},
	}
}

func TestReportBodySize(t *testing.T) {
	if got := binary.Size(ReportBody{}); got != REPORT_BODY_SIZE {
		t.Errorf("binary.Size(ReportBody) = %v, want %v", got, REPORT_BODY_SIZE)
	}
	if got := binary.Size(QuoteBody{}); got != EPID_QUOTE_BODY_SIZE {
		t.Errorf("binary.Size(QuoteBody) = %v, want %v", got, EPID_QUOTE_BODY_SIZE)
	}
}

func TestParse(t *testing.T) {
	r := newReport(t, QUOTE_STATUS_GROUP_OUT_OF_DATE, platformInfoBlob)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Parse([]byte("{not json")); err == nil {
		t.Errorf("Parse() expected error for invalid JSON")
	}
}

func TestReportTime(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      time.Time
		wantErr   bool
	}{
		{
			name:      "Fractional Seconds",
			timestamp: "2026-10-18T09:45:35.658964",
			want:      time.Date(2026, 10, 18, 9, 45, 35, 658964000, time.UTC),
		},
		{
			name:      "Whole Seconds",
			timestamp: "2026-10-18T09:45:35",
			want:      time.Date(2026, 10, 18, 9, 45, 35, 0, time.UTC),
		},
		{
			name:      "Missing",
			timestamp: "",
			wantErr:   true,
		},
		{
			name:      "Invalid",
			timestamp: "18.10.2026 09:45",
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Timestamp: tt.timestamp}
			got, err := r.Time()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Time() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Time() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuoteBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "Valid",
			body: encodeQuoteBody(t, testQuoteBody),
		},
		{
			name:    "Missing",
			body:    "",
			wantErr: true,
		},
		{
			name:    "Invalid Base64",
			body:    "!!!",
			wantErr: true,
		},
		{
			name:    "Too Short",
			body:    base64.StdEncoding.EncodeToString(make([]byte, 100)),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{IsvEnclaveQuoteBody: tt.body}
			got, err := r.QuoteBody()
			if (err != nil) != tt.wantErr {
				t.Fatalf("QuoteBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(&testQuoteBody, got); diff != "" {
				t.Errorf("QuoteBody() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeQuoteBodyIgnoresSignature(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, testQuoteBody)
	binary.Write(buf, binary.LittleEndian, uint32(4))
	buf.Write([]byte{1, 2, 3, 4})

	got, err := DecodeQuoteBody(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeQuoteBody() error = %v", err)
	}
	if got.ReportBody.MrEnclave != testQuoteBody.ReportBody.MrEnclave {
		t.Errorf("DecodeQuoteBody() MrEnclave = %x, want %x",
			got.ReportBody.MrEnclave, testQuoteBody.ReportBody.MrEnclave)
	}
}
