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
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/Fraunhofer-AISEC/epidstatus/internal"
)

// Common name of the certificate IAS signs its reports with
const SIGNING_CERT_CN = "Intel SGX Attestation Report Signing"

// Signature holds the values of the X-IASReport-Signature and
// X-IASReport-Signing-Certificate response headers
type Signature struct {
	// Base64 encoded RSA-SHA256 signature over the raw report body
	Signature string
	// PEM encoded (optionally URL-encoded) signing certificate chain,
	// leaf certificate first
	Certs []byte
	// Expected common name of the signing certificate. Empty skips the check
	CommonName string
}

// VerifySignature verifies the signature of the raw report body and the
// signing certificate chain up to one of the root certificates in cas
func VerifySignature(body []byte, sig Signature, cas []*x509.Certificate) error {
	if len(body) == 0 {
		return errors.New("report body is empty")
	}

	certs, err := internal.ParseCertsPem(sig.Certs)
	if err != nil {
		return fmt.Errorf("failed to parse signing certificates: %w", err)
	}

	err = internal.CheckCert(certs[0], sig.CommonName)
	if err != nil {
		return fmt.Errorf("failed to check signing certificate: %w", err)
	}

	x509Chains, err := internal.VerifyCertChain(certs, cas)
	if err != nil {
		return fmt.Errorf("failed to verify certificate chain: %w", err)
	}
	for _, chain := range x509Chains {
		log.Tracef("Verified chain of length %v to %v", len(chain), chain[len(chain)-1].Subject.CommonName)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sig.Signature))
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	pubKey, ok := certs[0].PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("unsupported signing key type %T", certs[0].PublicKey)
	}

	hashed := sha256.Sum256(body)
	err = rsa.VerifyPKCS1v15(pubKey, crypto.SHA256, hashed[:], raw)
	if err != nil {
		return fmt.Errorf("failed to verify report signature: %w", err)
	}
	log.Debugf("Successfully verified report signature of %v", certs[0].Subject.CommonName)

	return nil
}
