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

package main

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"os"

	"github.com/Fraunhofer-AISEC/epidstatus/epid"
	"github.com/Fraunhofer-AISEC/epidstatus/ias"
	"github.com/Fraunhofer-AISEC/epidstatus/internal"
	"github.com/urfave/cli/v3"
)

// Reports are written to stdout, logs go to stderr or the log file
var stdout io.Writer = os.Stdout

// StatusResult is written to the result file by report-status and check-update
type StatusResult struct {
	PlatformInfo string           `json:"platformInfo" cbor:"0,keyasint"`
	Status       uint32           `json:"status" cbor:"1,keyasint"`
	Name         string           `json:"name" cbor:"2,keyasint"`
	Label        string           `json:"label" cbor:"3,keyasint"`
	UpdateInfo   *epid.UpdateInfo `json:"updateInfo,omitempty" cbor:"4,keyasint,omitempty"`
	ConfigStatus *uint32          `json:"configStatus,omitempty" cbor:"5,keyasint,omitempty"`
}

func newStatusResult(pi epid.PlatformInfo, o epid.Outcome) *StatusResult {
	r := &StatusResult{
		PlatformInfo: pi.Hex(),
		Status:       uint32(o.Status()),
		Name:         o.Status().String(),
		Label:        epid.Label(o.Status()),
	}
	if u, ok := o.(epid.UpdateNeeded); ok {
		info := u.Info
		r.UpdateInfo = &info
	}
	return r
}

func reportStatusCmd(ctx context.Context, cmd *cli.Command) error {
	c, err := getConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	pi, svc, err := prepare(c)
	if err != nil {
		return err
	}

	reporter := epid.NewReporter(svc, stdout)

	if c.Result == "" {
		// The return value carries no status information
		_ = reporter.ReportAttestationStatus(pi)
		return nil
	}

	// A result file is requested, so the outcome is needed in addition
	// to the printed label. The query is only performed once.
	o, err := reporter.Query(pi)
	if err != nil {
		return fmt.Errorf("failed to query attestation status: %w", err)
	}
	if err := epid.WriteOutcome(stdout, o); err != nil {
		return fmt.Errorf("failed to write attestation status: %w", err)
	}

	return writeResult(c, newStatusResult(pi, o))
}

func checkUpdateCmd(ctx context.Context, cmd *cli.Command) error {
	c, err := getConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	pi, svc, err := prepare(c)
	if err != nil {
		return err
	}

	if c.Result == "" {
		_ = epid.NewReporter(svc, stdout).ReportUpdateStatus(pi)
		return nil
	}

	// Record the service answer for the result file while printing the
	// same report
	rec := &recordingService{Service: svc}
	_ = epid.NewReporter(rec, stdout).ReportUpdateStatus(pi)

	r := newStatusResult(pi, epid.NewOutcome(rec.last.Status, rec.last.UpdateInfo))
	r.ConfigStatus = &rec.last.ConfigStatus

	return writeResult(c, r)
}

func verifyReportCmd(ctx context.Context, cmd *cli.Command) error {
	c, err := getConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	if c.Report == "" {
		return fmt.Errorf("report must be specified via config file or --%v", reportFlag)
	}
	data, err := internal.GetFile(c.Report, nil)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	report, err := ias.Parse(data)
	if err != nil {
		return err
	}

	// The platform service is only required for outdated platforms
	var reporter *epid.Reporter
	svc, err := getService(c)
	if err != nil {
		log.Warnf("Platform attestation service not available: %v", err)
	} else {
		log.Debugf("Using %v", svc.Name())
		reporter = epid.NewReporter(svc, stdout)
	}

	opts := ias.Options{
		Reporter:   reporter,
		MaxAge:     c.maxAge,
		AllowDebug: c.AllowDebug,
	}
	if c.ReportSignature != "" {
		sig, cas, err := loadSignature(c)
		if err != nil {
			return err
		}
		opts.Signature = sig
		opts.Body = data
		opts.CAs = cas
	}

	result, err := ias.Evaluate(report, opts)
	if err != nil {
		return fmt.Errorf("failed to evaluate report: %w", err)
	}

	log.Infof("Report %v: quote status %v, age %v", result.Id, result.QuoteStatus, result.Age)
	log.Infof("MRENCLAVE %v, MRSIGNER %v", result.MrEnclave, result.MrSigner)
	for _, a := range result.AdvisoryIDs {
		log.Warnf("Advisory %v", a)
	}

	if c.Result != "" {
		return writeResult(c, result)
	}
	return nil
}

func labelsCmd(ctx context.Context, cmd *cli.Command) error {
	for _, s := range epid.KnownStatuses() {
		label := "-"
		if epid.Label(s) != epid.FallbackMarker {
			label = "reported"
		}
		fmt.Fprintf(stdout, "0x%08x  %-45v %v\n", uint32(s), s, label)
	}
	return nil
}

func loadSignature(c *Config) (*ias.Signature, []*x509.Certificate, error) {
	if c.ReportCerts == "" || c.IasCa == "" {
		return nil, nil, fmt.Errorf("verifying the report signature requires --%v and --%v",
			reportCertsFlag, iasCaFlag)
	}
	sig, err := internal.ReadInput(c.ReportSignature)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read report signature: %w", err)
	}
	certs, err := internal.GetFile(c.ReportCerts, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read report signing certificates: %w", err)
	}
	caData, err := internal.GetFile(c.IasCa, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read IAS CA: %w", err)
	}
	cas, err := internal.ParseCertsPem(caData)
	if err != nil {
		// A single DER encoded root as distributed by Intel
		ca, derErr := internal.ParseCert(caData)
		if derErr != nil {
			return nil, nil, fmt.Errorf("failed to parse IAS CA: %w", err)
		}
		cas = []*x509.Certificate{ca}
	}
	return &ias.Signature{
		Signature:  string(sig),
		Certs:      certs,
		CommonName: c.SigningCn,
	}, cas, nil
}

func prepare(c *Config) (epid.PlatformInfo, epid.Service, error) {
	if c.PlatformInfo == "" {
		return epid.PlatformInfo{}, nil, fmt.Errorf("platform info must be specified via config file or --%v",
			platformInfoFlag)
	}
	data, err := internal.ReadInput(c.PlatformInfo)
	if err != nil {
		return epid.PlatformInfo{}, nil, fmt.Errorf("failed to read platform info: %w", err)
	}
	pi, err := epid.DecodePlatformInfo(data)
	if err != nil {
		return epid.PlatformInfo{}, nil, fmt.Errorf("failed to decode platform info: %w", err)
	}
	log.Debugf("Platform info: %v", pi.Hex())

	svc, err := getService(c)
	if err != nil {
		return epid.PlatformInfo{}, nil, fmt.Errorf("failed to get platform attestation service: %w", err)
	}
	log.Debugf("Using %v", svc.Name())

	return pi, svc, nil
}

func writeResult(c *Config, v any) error {
	data, err := c.serializer.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	err = os.WriteFile(c.Result, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	log.Debugf("Wrote %v result to %v", c.serializer, c.Result)
	return nil
}

type recordingService struct {
	epid.Service
	last epid.UpdateStatus
}

func (r *recordingService) CheckUpdateStatus(pi epid.PlatformInfo, config uint32) epid.UpdateStatus {
	r.last = r.Service.CheckUpdateStatus(pi, config)
	return r.last
}
