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
	"sync"
)

// Service is the platform attestation service, i.e. the EPID functions of
// the SGX untrusted architectural enclave library. Calls block until the
// platform service answered.
type Service interface {
	// ReportAttestationStatus forwards the platform info received from the
	// attestation service. attErr is non-zero if attestation failed.
	ReportAttestationStatus(pi PlatformInfo, attErr int32) (Status, UpdateInfo)
	// CheckUpdateStatus asks which platform components must be updated
	CheckUpdateStatus(pi PlatformInfo, config uint32) UpdateStatus
	Name() string
}

// SimService answers every query with a fixed result. It stands in for the
// EPID library on machines without SGX platform software.
type SimService struct {
	Result       Status
	UpdateInfo   UpdateInfo
	ConfigStatus uint32

	mu    sync.Mutex
	calls int
	last  PlatformInfo
}

// NewSimService returns a service which always returns status
func NewSimService(status Status, info UpdateInfo) *SimService {
	return &SimService{
		Result:     status,
		UpdateInfo: info,
	}
}

func (s *SimService) Name() string {
	return "EPID simulation"
}

func (s *SimService) ReportAttestationStatus(pi PlatformInfo, attErr int32) (Status, UpdateInfo) {
	s.record(pi)
	log.Tracef("Simulated attestation status query (attestation error %v): %v", attErr, s.Result)
	return s.Result, s.UpdateInfo
}

func (s *SimService) CheckUpdateStatus(pi PlatformInfo, config uint32) UpdateStatus {
	s.record(pi)
	log.Tracef("Simulated update status query (config 0x%x): %v", config, s.Result)
	return UpdateStatus{
		Status:       s.Result,
		UpdateInfo:   s.UpdateInfo,
		ConfigStatus: s.ConfigStatus,
	}
}

// Calls returns the number of queries served
func (s *SimService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Last returns the platform info of the most recent query
func (s *SimService) Last() PlatformInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *SimService) record(pi PlatformInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = pi
}
