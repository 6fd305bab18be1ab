// Copyright (c) 2021 - 2026 Fraunhofer AISEC
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

package internal

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
)

// ParseCert parses a certificate from PEM or DER encoded data
func ParseCert(data []byte) (*x509.Certificate, error) {
	input := data

	block, _ := pem.Decode(data)
	if block != nil {
		input = block.Bytes
	}

	cert, err := x509.ParseCertificate(input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse x509 certificate: %w", err)
	}

	return cert, nil
}

// ParseCertsPem parses all certificates of a PEM blob. Attestation services
// transmit certificate chains URL-encoded in HTTP headers, which is accepted
// as well.
func ParseCertsPem(data []byte) ([]*x509.Certificate, error) {
	input := data
	if !bytes.Contains(data, []byte("-----BEGIN ")) && bytes.Contains(data, []byte("%")) {
		s, err := url.PathUnescape(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to unescape certificates: %w", err)
		}
		input = []byte(s)
	}

	certs := make([]*x509.Certificate, 0)
	for block, rest := pem.Decode(input); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			log.Tracef("Skipping PEM block %v", block.Type)
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse x509 certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New("did not find certs in provided data")
	}
	return certs, nil
}

// VerifyCertChain verifies the certificate chain certs with leaf
// certificate first up to one of the root certificates in cas
func VerifyCertChain(certs []*x509.Certificate, cas []*x509.Certificate) ([][]*x509.Certificate, error) {

	if len(certs) == 0 {
		return nil, errors.New("no certificate chain provided")
	}
	if len(cas) == 0 {
		return nil, errors.New("no CA provided")
	}

	intermediates := x509.NewCertPool()
	roots := x509.NewCertPool()
	for _, ca := range cas {
		roots.AddCert(ca)
	}

	// Services often include the root in the chain
	for _, cert := range certs[1:] {
		if isSelfSigned(cert) {
			continue
		}
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Intermediates: intermediates,
		Roots:         roots,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}

	return certs[0].Verify(opts)
}

// CheckCert checks the common name of a certificate if cn is not empty
func CheckCert(cert *x509.Certificate, cn string) error {
	if cert == nil {
		return errors.New("internal error: cert to check is nil")
	}
	if cn == "" {
		return nil
	}
	if cn != cert.Subject.CommonName {
		return fmt.Errorf("unexpected CN=%v. Expected %v", cert.Subject.CommonName, cn)
	}
	log.Tracef("Certificate CN=%v matches expected CN", cn)
	return nil
}

func isSelfSigned(cert *x509.Certificate) bool {
	if cert.Subject.String() != cert.Issuer.String() {
		return false
	}
	return cert.CheckSignatureFrom(cert) == nil
}
