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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("service", "ias")

const (
	// IAS timestamps are UTC and carry no zone designator. Fractional
	// seconds are accepted by time.Parse without being part of the layout.
	TIMESTAMP_LAYOUT = "2006-01-02T15:04:05"

	EPID_QUOTE_BODY_SIZE = 432
	REPORT_BODY_SIZE     = 384
)

// Report is the attestation verification report returned by the Intel
// Attestation Service for an EPID quote
type Report struct {
	Id                    string   `json:"id"`
	Timestamp             string   `json:"timestamp"`
	Version               int      `json:"version"`
	IsvEnclaveQuoteStatus string   `json:"isvEnclaveQuoteStatus"`
	IsvEnclaveQuoteBody   string   `json:"isvEnclaveQuoteBody"`
	RevocationReason      *int     `json:"revocationReason,omitempty"`
	PseManifestStatus     string   `json:"pseManifestStatus,omitempty"`
	PseManifestHash       string   `json:"pseManifestHash,omitempty"`
	PlatformInfoBlob      string   `json:"platformInfoBlob,omitempty"`
	Nonce                 string   `json:"nonce,omitempty"`
	EpidPseudonym         string   `json:"epidPseudonym,omitempty"`
	AdvisoryURL           string   `json:"advisoryURL,omitempty"`
	AdvisoryIDs           []string `json:"advisoryIDs,omitempty"`
}

// EPID quote body (sgx_quote_t without signature length and signature)
// Endianess: Little Endian
type QuoteBody struct {
	Version     uint16
	SignType    uint16
	EpidGroupId [4]byte
	QeSvn       uint16
	PceSvn      uint16
	Xeid        uint32
	Basename    [32]byte
	ReportBody  ReportBody
}

// 384 bytes, sgx_report_body_t
type ReportBody struct {
	CpuSvn       [16]byte
	MiscSelect   uint32
	Reserved1    [12]byte
	IsvExtProdId [16]byte
	Flags        uint64
	Xfrm         uint64
	MrEnclave    [32]byte
	Reserved2    [32]byte
	MrSigner     [32]byte
	Reserved3    [32]byte
	ConfigId     [64]byte
	IsvProdId    uint16
	IsvSvn       uint16
	ConfigSvn    uint16
	Reserved4    [42]byte
	IsvFamilyId  [16]byte
	ReportData   [64]byte
}

// Parse decodes an attestation verification report
func Parse(data []byte) (*Report, error) {
	r := &Report{}
	err := json.Unmarshal(data, r)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal attestation verification report: %w", err)
	}
	return r, nil
}

// Time returns the creation time of the report
func (r *Report) Time() (time.Time, error) {
	if r.Timestamp == "" {
		return time.Time{}, fmt.Errorf("report does not contain a timestamp")
	}
	t, err := time.ParseInLocation(TIMESTAMP_LAYOUT, r.Timestamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", r.Timestamp, err)
	}
	return t, nil
}

// QuoteBody decodes the base64 encoded isvEnclaveQuoteBody
func (r *Report) QuoteBody() (*QuoteBody, error) {
	if r.IsvEnclaveQuoteBody == "" {
		return nil, fmt.Errorf("report does not contain a quote body")
	}
	raw, err := base64.StdEncoding.DecodeString(r.IsvEnclaveQuoteBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decode quote body: %w", err)
	}
	return DecodeQuoteBody(raw)
}

// DecodeQuoteBody decodes the first 432 bytes of an EPID quote. Trailing
// data (signature length and signature) is ignored.
func DecodeQuoteBody(raw []byte) (*QuoteBody, error) {
	if len(raw) < EPID_QUOTE_BODY_SIZE {
		return nil, fmt.Errorf("quote body too short: %v bytes (expected %v)", len(raw), EPID_QUOTE_BODY_SIZE)
	}
	body := &QuoteBody{}
	err := binary.Read(bytes.NewReader(raw[:EPID_QUOTE_BODY_SIZE]), binary.LittleEndian, body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode quote body: %w", err)
	}
	return body, nil
}
