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

// UpdateInfo mirrors sgx_update_info_bit_t. The flags are only defined if
// the EPID library returned SGX_ERROR_UPDATE_NEEDED.
type UpdateInfo struct {
	UcodeUpdate  int32 `json:"ucodeUpdate" cbor:"0,keyasint"`
	CsmeFwUpdate int32 `json:"csmeFwUpdate" cbor:"1,keyasint"`
	PswUpdate    int32 `json:"pswUpdate" cbor:"2,keyasint"`
}

// UpdateStatus is the result of sgx_check_update_status
type UpdateStatus struct {
	Status       Status
	UpdateInfo   UpdateInfo
	ConfigStatus uint32
}

// Outcome is the result of an attestation status query. The update info
// can only be obtained from an UpdateNeeded outcome.
type Outcome interface {
	Status() Status
	isOutcome()
}

// UpdateNeeded is returned for SGX_ERROR_UPDATE_NEEDED
type UpdateNeeded struct {
	Info UpdateInfo
}

// Other is returned for every status except SGX_ERROR_UPDATE_NEEDED
type Other struct {
	Code Status
}

func (UpdateNeeded) Status() Status { return StatusUpdateNeeded }
func (UpdateNeeded) isOutcome()     {}

func (o Other) Status() Status { return o.Code }
func (Other) isOutcome()       {}

// NewOutcome discards the update info unless the status says it is valid
func NewOutcome(status Status, info UpdateInfo) Outcome {
	if status == StatusUpdateNeeded {
		return UpdateNeeded{Info: info}
	}
	return Other{Code: status}
}
