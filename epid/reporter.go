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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("service", "epid")

const (
	// Passed as attestation error to request population of the update info
	ATTESTATION_FAILED = 1

	// Passed as config to sgx_check_update_status
	CHECK_UPDATE_CONFIG = 1
)

// FallbackMarker is printed for statuses the reporter has no label for
var FallbackMarker = strings.Repeat("-", 46)

// Reporter queries the attestation status of the platform and prints a
// line oriented, human readable report
type Reporter struct {
	svc Service
	out io.Writer
}

// NewReporter returns a reporter writing to out, or to stdout if out is nil
func NewReporter(svc Service, out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{
		svc: svc,
		out: out,
	}
}

// Query runs the attestation status query and returns the typed outcome
func (r *Reporter) Query(pi PlatformInfo) (Outcome, error) {
	if r == nil || r.svc == nil {
		return nil, errors.New("internal error: reporter service is nil")
	}
	status, info := r.svc.ReportAttestationStatus(pi, ATTESTATION_FAILED)
	log.Debugf("%v returned attestation status %v (0x%x)", r.svc.Name(), status, uint32(status))
	return NewOutcome(status, info), nil
}

// ReportAttestationStatus queries the attestation status for the given
// platform info and prints the label of the result.
//
// The return value is always 0 and carries no information about the status.
// Callers that need the status must use Query.
func (r *Reporter) ReportAttestationStatus(pi PlatformInfo) int {
	o, err := r.Query(pi)
	if err != nil {
		log.Warnf("Failed to query attestation status: %v", err)
		return 0
	}
	if err := WriteOutcome(r.out, o); err != nil {
		log.Warnf("Failed to write attestation status: %v", err)
	}
	return 0
}

// ReportUpdateStatus queries which platform components need an update and
// prints the status label, the update flags if they apply, and the config
// status. The return value is always 0.
func (r *Reporter) ReportUpdateStatus(pi PlatformInfo) int {
	if r == nil || r.svc == nil {
		log.Warn("internal error: reporter service is nil")
		return 0
	}
	us := r.svc.CheckUpdateStatus(pi, CHECK_UPDATE_CONFIG)
	log.Debugf("%v returned update status %v, config status 0x%x", r.svc.Name(), us.Status, us.ConfigStatus)

	buf := new(bytes.Buffer)
	writeLines(buf, NewOutcome(us.Status, us.UpdateInfo))
	fmt.Fprintf(buf, "configStatus = 0x%08x\n", us.ConfigStatus)

	if _, err := r.out.Write(buf.Bytes()); err != nil {
		log.Warnf("Failed to write update status: %v", err)
	}
	return 0
}

// Label returns the line printed for a status. Statuses without a
// dedicated label map to the fallback marker.
func Label(s Status) string {
	switch s {
	case StatusSuccess,
		StatusInvalidParameter,
		StatusAeInvalidEpidBlob,
		StatusUpdateNeeded,
		StatusOutOfMemory,
		StatusServiceUnavailable,
		StatusServiceTimeout,
		StatusBusy,
		StatusNetworkFailure,
		StatusOutOfEpc,
		StatusUnrecognizedPlatform,
		StatusUnexpected:
		return s.String()
	default:
		return FallbackMarker
	}
}

// WriteOutcome writes the report for o with a single write
func WriteOutcome(w io.Writer, o Outcome) error {
	buf := new(bytes.Buffer)
	writeLines(buf, o)
	_, err := w.Write(buf.Bytes())
	return err
}

func writeLines(buf *bytes.Buffer, o Outcome) {
	switch v := o.(type) {
	case UpdateNeeded:
		fmt.Fprintln(buf, Label(StatusUpdateNeeded))
		fmt.Fprintf(buf, "ucodeUpdate = %d\n", v.Info.UcodeUpdate)
		fmt.Fprintf(buf, "csmeFwUpdate = %d\n", v.Info.CsmeFwUpdate)
		fmt.Fprintf(buf, "pswUpdate = %d\n", v.Info.PswUpdate)
	case Other:
		fmt.Fprintln(buf, Label(v.Code))
	default:
		fmt.Fprintln(buf, FallbackMarker)
	}
}
