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

//go:build cgo && sgx

package epid

/*
#cgo CFLAGS: -I/opt/intel/sgxsdk/include
#cgo LDFLAGS: -L/opt/intel/sgxsdk/lib64
#cgo !sgxsim LDFLAGS: -lsgx_epid
#cgo sgxsim LDFLAGS: -lsgx_epid_sim

#include <stdint.h>
#include <sgx_uae_epid.h>
*/
import "C"

import (
	"unsafe"
)

// SdkService calls the EPID functions of the Intel SGX platform software
type SdkService struct{}

// NewSdkService returns the service backed by the linked SGX library
func NewSdkService() (Service, error) {
	return &SdkService{}, nil
}

func (s *SdkService) Name() string {
	return "Intel SGX uAE EPID"
}

func (s *SdkService) ReportAttestationStatus(pi PlatformInfo, attErr int32) (Status, UpdateInfo) {
	var info C.sgx_update_info_bit_t

	log.Debugf("Calling sgx_report_attestation_status (attestation error %v)", attErr)

	ret := C.sgx_report_attestation_status(
		(*C.sgx_platform_info_t)(unsafe.Pointer(&pi[0])),
		C.int(attErr),
		&info)

	return Status(ret), UpdateInfo{
		UcodeUpdate:  int32(info.ucodeUpdate),
		CsmeFwUpdate: int32(info.csmeFwUpdate),
		PswUpdate:    int32(info.pswUpdate),
	}
}

func (s *SdkService) CheckUpdateStatus(pi PlatformInfo, config uint32) UpdateStatus {
	var info C.sgx_update_info_bit_t
	var status C.uint32_t

	log.Debugf("Calling sgx_check_update_status (config 0x%x)", config)

	ret := C.sgx_check_update_status(
		(*C.sgx_platform_info_t)(unsafe.Pointer(&pi[0])),
		&info,
		C.uint32_t(config),
		&status)

	return UpdateStatus{
		Status: Status(ret),
		UpdateInfo: UpdateInfo{
			UcodeUpdate:  int32(info.ucodeUpdate),
			CsmeFwUpdate: int32(info.csmeFwUpdate),
			PswUpdate:    int32(info.pswUpdate),
		},
		ConfigStatus: uint32(status),
	}
}
