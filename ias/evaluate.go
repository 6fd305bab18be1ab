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
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Fraunhofer-AISEC/epidstatus/epid"
)

// isvEnclaveQuoteStatus values
const (
	QUOTE_STATUS_OK                   = "OK"
	QUOTE_STATUS_GROUP_OUT_OF_DATE    = "GROUP_OUT_OF_DATE"
	QUOTE_STATUS_GROUP_REVOKED        = "GROUP_REVOKED"
	QUOTE_STATUS_CONFIGURATION_NEEDED = "CONFIGURATION_NEEDED"
)

// SGX_FLAGS_DEBUG is the DEBUG bit of the enclave attributes
const SGX_FLAGS_DEBUG = 0x2

// Options configure the evaluation of a report
type Options struct {
	// Reporter is used to query the platform if the quote status
	// indicates that the platform is out of date
	Reporter *epid.Reporter
	// Now is the reference time for the report age, defaults to time.Now
	Now time.Time
	// MaxAge rejects reports older than the given duration if non-zero
	MaxAge time.Duration
	// AllowDebug accepts quotes of enclaves running in debug mode
	AllowDebug bool
	// Signature is verified over Body against CAs if set
	Signature *Signature
	Body      []byte
	CAs       []*x509.Certificate
}

// Result summarizes an evaluated attestation verification report
type Result struct {
	Id              string        `json:"id" cbor:"0,keyasint"`
	QuoteStatus     string        `json:"quoteStatus" cbor:"1,keyasint"`
	Timestamp       time.Time     `json:"timestamp" cbor:"2,keyasint"`
	Age             time.Duration `json:"age" cbor:"3,keyasint"`
	QuoteVersion    uint16        `json:"quoteVersion" cbor:"4,keyasint"`
	SignType        uint16        `json:"signType" cbor:"5,keyasint"`
	MrEnclave       string        `json:"mrEnclave" cbor:"6,keyasint"`
	MrSigner        string        `json:"mrSigner" cbor:"7,keyasint"`
	IsvProdId       uint16        `json:"isvProdId" cbor:"8,keyasint"`
	IsvSvn          uint16        `json:"isvSvn" cbor:"9,keyasint"`
	PlatformQueried bool          `json:"platformQueried" cbor:"10,keyasint"`
	PlatformInfo    string        `json:"platformInfo,omitempty" cbor:"11,keyasint,omitempty"`
	AdvisoryIDs     []string      `json:"advisoryIDs,omitempty" cbor:"12,keyasint,omitempty"`
	SignatureValid  bool          `json:"signatureValid" cbor:"13,keyasint"`
	Debug           bool          `json:"debug" cbor:"14,keyasint"`
}

// Evaluate checks the report timestamp, decodes the quote body, rejects
// debug enclaves unless allowed and dispatches on the quote status. For quote statuses that indicate an outdated or
// misconfigured platform, the platform info blob is handed to the
// reporter which prints the attestation and update status.
func Evaluate(r *Report, opts Options) (*Result, error) {
	if r == nil {
		return nil, errors.New("internal error: report is nil")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := &Result{
		Id:          r.Id,
		QuoteStatus: r.IsvEnclaveQuoteStatus,
		AdvisoryIDs: r.AdvisoryIDs,
	}

	if opts.Signature != nil {
		err := VerifySignature(opts.Body, *opts.Signature, opts.CAs)
		if err != nil {
			return nil, err
		}
		result.SignatureValid = true
	} else {
		log.Warnf("Report signature is not verified")
	}

	ts, err := r.Time()
	if err != nil {
		return nil, fmt.Errorf("failed to get report time: %w", err)
	}
	result.Timestamp = ts
	result.Age = now.Sub(ts)
	log.Debugf("Report %v created %v, age %v", r.Id, ts, result.Age)

	if opts.MaxAge > 0 && result.Age > opts.MaxAge {
		return nil, fmt.Errorf("report age %v exceeds maximum age %v", result.Age, opts.MaxAge)
	}

	if r.IsvEnclaveQuoteStatus == "" {
		return nil, fmt.Errorf("report does not contain isvEnclaveQuoteStatus")
	}
	log.Debugf("isvEnclaveQuoteStatus = %v", r.IsvEnclaveQuoteStatus)

	quote, err := r.QuoteBody()
	if err != nil {
		return nil, fmt.Errorf("failed to get quote body: %w", err)
	}
	log.Debugf("Quote version %v, signature type %v", quote.Version, quote.SignType)

	result.QuoteVersion = quote.Version
	result.SignType = quote.SignType
	result.MrEnclave = hex.EncodeToString(quote.ReportBody.MrEnclave[:])
	result.MrSigner = hex.EncodeToString(quote.ReportBody.MrSigner[:])
	result.IsvProdId = quote.ReportBody.IsvProdId
	result.IsvSvn = quote.ReportBody.IsvSvn

	// Only production enclaves are accepted unless explicitly allowed
	result.Debug = (quote.ReportBody.Flags & SGX_FLAGS_DEBUG) != 0
	if result.Debug {
		if !opts.AllowDebug {
			return nil, fmt.Errorf("enclave runs in debug mode (attributes flags 0x%x)", quote.ReportBody.Flags)
		}
		log.Warnf("Accepting quote of debug enclave %v", result.MrEnclave)
	}

	switch r.IsvEnclaveQuoteStatus {
	case QUOTE_STATUS_OK:
	case QUOTE_STATUS_GROUP_OUT_OF_DATE, QUOTE_STATUS_GROUP_REVOKED, QUOTE_STATUS_CONFIGURATION_NEEDED:
		if r.PlatformInfoBlob == "" {
			return nil, fmt.Errorf("quote status %v but report does not contain platformInfoBlob",
				r.IsvEnclaveQuoteStatus)
		}
		pi, _, err := epid.ParsePlatformInfoBlob(r.PlatformInfoBlob)
		if err != nil {
			return nil, fmt.Errorf("failed to extract platform info: %w", err)
		}
		result.PlatformInfo = pi.Hex()

		if opts.Reporter == nil {
			return nil, errors.New("internal error: reporter is nil")
		}
		log.Debugf("Querying platform attestation status")
		opts.Reporter.ReportAttestationStatus(pi)
		opts.Reporter.ReportUpdateStatus(pi)
		result.PlatformQueried = true
	default:
		return nil, fmt.Errorf("unexpected quote status in attestation report: %v", r.IsvEnclaveQuoteStatus)
	}

	return result, nil
}
