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
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Status is an Intel SGX SDK status code (sgx_status_t). The value space is
// owned by the SDK and grows over time, values without a name are valid.
type Status uint32

const (
	StatusSuccess Status = 0x0000

	StatusUnexpected            Status = 0x0001
	StatusInvalidParameter      Status = 0x0002
	StatusOutOfMemory           Status = 0x0003
	StatusEnclaveLost           Status = 0x0004
	StatusInvalidState          Status = 0x0005
	StatusFeatureNotSupported   Status = 0x0008
	StatusPthreadExit           Status = 0x0009
	StatusMemoryMapFailure      Status = 0x000A
	StatusInvalidFunction       Status = 0x1001
	StatusOutOfTcs              Status = 0x1003
	StatusEnclaveCrashed        Status = 0x1006
	StatusEcallNotAllowed       Status = 0x1007
	StatusOcallNotAllowed       Status = 0x1008
	StatusStackOverrun          Status = 0x1009
	StatusUndefinedSymbol       Status = 0x2000
	StatusInvalidEnclave        Status = 0x2001
	StatusInvalidEnclaveId      Status = 0x2002
	StatusInvalidSignature      Status = 0x2003
	StatusNdebugEnclave         Status = 0x2004
	StatusOutOfEpc              Status = 0x2005
	StatusNoDevice              Status = 0x2006
	StatusMemoryMapConflict     Status = 0x2007
	StatusInvalidMetadata       Status = 0x2009
	StatusDeviceBusy            Status = 0x200C
	StatusInvalidVersion        Status = 0x200D
	StatusModeIncompatible      Status = 0x200E
	StatusEnclaveFileAccess     Status = 0x200F
	StatusInvalidMisc           Status = 0x2010
	StatusInvalidLaunchToken    Status = 0x2011
	StatusMacMismatch           Status = 0x3001
	StatusInvalidAttribute      Status = 0x3002
	StatusInvalidCpuSvn         Status = 0x3003
	StatusInvalidIsvSvn         Status = 0x3004
	StatusInvalidKeyname        Status = 0x3005
	StatusServiceUnavailable    Status = 0x4001
	StatusServiceTimeout        Status = 0x4002
	StatusAeInvalidEpidBlob     Status = 0x4003
	StatusServiceInvalidPriv    Status = 0x4004
	StatusEpidMemberRevoked     Status = 0x4005
	StatusUpdateNeeded          Status = 0x4006
	StatusNetworkFailure        Status = 0x4007
	StatusAeSessionInvalid      Status = 0x4008
	StatusBusy                  Status = 0x400A
	StatusMcNotFound            Status = 0x400C
	StatusMcNoAccessRight       Status = 0x400D
	StatusMcUsedUp              Status = 0x400E
	StatusMcOverQuota           Status = 0x400F
	StatusKdfMismatch           Status = 0x4011
	StatusUnrecognizedPlatform  Status = 0x4012
	StatusUnsupportedConfig     Status = 0x4013
	StatusNoPrivilege           Status = 0x5002
	StatusPclEncrypted          Status = 0x6001
	StatusPclNotEncrypted       Status = 0x6002
	StatusPclMacMismatch        Status = 0x6003
	StatusPclShaMismatch        Status = 0x6004
	StatusPclGuidMismatch       Status = 0x6005
	StatusFileBadStatus         Status = 0x7001
	StatusFileNoKeyId           Status = 0x7002
	StatusFileNameMismatch      Status = 0x7003
	StatusFileNotSgxFile        Status = 0x7004
	StatusFileCantOpenRecovery  Status = 0x7005
	StatusFileCantWriteRecovery Status = 0x7006
	StatusFileRecoveryNeeded    Status = 0x7007
	StatusFileFlushFailed       Status = 0x7008
	StatusFileCloseFailed       Status = 0x7009
	StatusUnsupportedAttKeyId   Status = 0x8001
	StatusAttKeyCertFailure     Status = 0x8002
	StatusAttKeyUninitialized   Status = 0x8003
	StatusInvalidAttKeyCertData Status = 0x8004
	StatusPlatformCertUnavail   Status = 0x8005
	StatusEnclaveCreateIntr     Status = 0xF001
)

var statusNames = map[Status]string{
	StatusSuccess:               "SGX_SUCCESS",
	StatusUnexpected:            "SGX_ERROR_UNEXPECTED",
	StatusInvalidParameter:      "SGX_ERROR_INVALID_PARAMETER",
	StatusOutOfMemory:           "SGX_ERROR_OUT_OF_MEMORY",
	StatusEnclaveLost:           "SGX_ERROR_ENCLAVE_LOST",
	StatusInvalidState:          "SGX_ERROR_INVALID_STATE",
	StatusFeatureNotSupported:   "SGX_ERROR_FEATURE_NOT_SUPPORTED",
	StatusPthreadExit:           "SGX_PTHREAD_EXIT",
	StatusMemoryMapFailure:      "SGX_ERROR_MEMORY_MAP_FAILURE",
	StatusInvalidFunction:       "SGX_ERROR_INVALID_FUNCTION",
	StatusOutOfTcs:              "SGX_ERROR_OUT_OF_TCS",
	StatusEnclaveCrashed:        "SGX_ERROR_ENCLAVE_CRASHED",
	StatusEcallNotAllowed:       "SGX_ERROR_ECALL_NOT_ALLOWED",
	StatusOcallNotAllowed:       "SGX_ERROR_OCALL_NOT_ALLOWED",
	StatusStackOverrun:          "SGX_ERROR_STACK_OVERRUN",
	StatusUndefinedSymbol:       "SGX_ERROR_UNDEFINED_SYMBOL",
	StatusInvalidEnclave:        "SGX_ERROR_INVALID_ENCLAVE",
	StatusInvalidEnclaveId:      "SGX_ERROR_INVALID_ENCLAVE_ID",
	StatusInvalidSignature:      "SGX_ERROR_INVALID_SIGNATURE",
	StatusNdebugEnclave:         "SGX_ERROR_NDEBUG_ENCLAVE",
	StatusOutOfEpc:              "SGX_ERROR_OUT_OF_EPC",
	StatusNoDevice:              "SGX_ERROR_NO_DEVICE",
	StatusMemoryMapConflict:     "SGX_ERROR_MEMORY_MAP_CONFLICT",
	StatusInvalidMetadata:       "SGX_ERROR_INVALID_METADATA",
	StatusDeviceBusy:            "SGX_ERROR_DEVICE_BUSY",
	StatusInvalidVersion:        "SGX_ERROR_INVALID_VERSION",
	StatusModeIncompatible:      "SGX_ERROR_MODE_INCOMPATIBLE",
	StatusEnclaveFileAccess:     "SGX_ERROR_ENCLAVE_FILE_ACCESS",
	StatusInvalidMisc:           "SGX_ERROR_INVALID_MISC",
	StatusInvalidLaunchToken:    "SGX_ERROR_INVALID_LAUNCH_TOKEN",
	StatusMacMismatch:           "SGX_ERROR_MAC_MISMATCH",
	StatusInvalidAttribute:      "SGX_ERROR_INVALID_ATTRIBUTE",
	StatusInvalidCpuSvn:         "SGX_ERROR_INVALID_CPUSVN",
	StatusInvalidIsvSvn:         "SGX_ERROR_INVALID_ISVSVN",
	StatusInvalidKeyname:        "SGX_ERROR_INVALID_KEYNAME",
	StatusServiceUnavailable:    "SGX_ERROR_SERVICE_UNAVAILABLE",
	StatusServiceTimeout:        "SGX_ERROR_SERVICE_TIMEOUT",
	StatusAeInvalidEpidBlob:     "SGX_ERROR_AE_INVALID_EPIDBLOB",
	StatusServiceInvalidPriv:    "SGX_ERROR_SERVICE_INVALID_PRIVILEGE",
	StatusEpidMemberRevoked:     "SGX_ERROR_EPID_MEMBER_REVOKED",
	StatusUpdateNeeded:          "SGX_ERROR_UPDATE_NEEDED",
	StatusNetworkFailure:        "SGX_ERROR_NETWORK_FAILURE",
	StatusAeSessionInvalid:      "SGX_ERROR_AE_SESSION_INVALID",
	StatusBusy:                  "SGX_ERROR_BUSY",
	StatusMcNotFound:            "SGX_ERROR_MC_NOT_FOUND",
	StatusMcNoAccessRight:       "SGX_ERROR_MC_NO_ACCESS_RIGHT",
	StatusMcUsedUp:              "SGX_ERROR_MC_USED_UP",
	StatusMcOverQuota:           "SGX_ERROR_MC_OVER_QUOTA",
	StatusKdfMismatch:           "SGX_ERROR_KDF_MISMATCH",
	StatusUnrecognizedPlatform:  "SGX_ERROR_UNRECOGNIZED_PLATFORM",
	StatusUnsupportedConfig:     "SGX_ERROR_UNSUPPORTED_CONFIG",
	StatusNoPrivilege:           "SGX_ERROR_NO_PRIVILEGE",
	StatusPclEncrypted:          "SGX_ERROR_PCL_ENCRYPTED",
	StatusPclNotEncrypted:       "SGX_ERROR_PCL_NOT_ENCRYPTED",
	StatusPclMacMismatch:        "SGX_ERROR_PCL_MAC_MISMATCH",
	StatusPclShaMismatch:        "SGX_ERROR_PCL_SHA_MISMATCH",
	StatusPclGuidMismatch:       "SGX_ERROR_PCL_GUID_MISMATCH",
	StatusFileBadStatus:         "SGX_ERROR_FILE_BAD_STATUS",
	StatusFileNoKeyId:           "SGX_ERROR_FILE_NO_KEY_ID",
	StatusFileNameMismatch:      "SGX_ERROR_FILE_NAME_MISMATCH",
	StatusFileNotSgxFile:        "SGX_ERROR_FILE_NOT_SGX_FILE",
	StatusFileCantOpenRecovery:  "SGX_ERROR_FILE_CANT_OPEN_RECOVERY_FILE",
	StatusFileCantWriteRecovery: "SGX_ERROR_FILE_CANT_WRITE_RECOVERY_FILE",
	StatusFileRecoveryNeeded:    "SGX_ERROR_FILE_RECOVERY_NEEDED",
	StatusFileFlushFailed:       "SGX_ERROR_FILE_FLUSH_FAILED",
	StatusFileCloseFailed:       "SGX_ERROR_FILE_CLOSE_FAILED",
	StatusUnsupportedAttKeyId:   "SGX_ERROR_UNSUPPORTED_ATT_KEY_ID",
	StatusAttKeyCertFailure:     "SGX_ERROR_ATT_KEY_CERTIFICATION_FAILURE",
	StatusAttKeyUninitialized:   "SGX_ERROR_ATT_KEY_UNINITIALIZED",
	StatusInvalidAttKeyCertData: "SGX_ERROR_INVALID_ATT_KEY_CERT_DATA",
	StatusPlatformCertUnavail:   "SGX_ERROR_PLATFORM_CERT_UNAVAILABLE",
	StatusEnclaveCreateIntr:     "SGX_INTERNAL_ERROR_ENCLAVE_CREATE_INTERRUPTED",
}

// String returns the SDK name of the status, or a hex rendering for values
// the SDK headers this package was written against do not define
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SGX_STATUS_0x%08X", uint32(s))
}

// Known reports whether the status has an SDK name
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// KnownStatuses returns all named statuses in ascending order
func KnownStatuses() []Status {
	statuses := make([]Status, 0, len(statusNames))
	for s := range statusNames {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	return statuses
}

// ParseStatus accepts an SDK name (e.g. SGX_ERROR_BUSY) or a decimal or
// 0x-prefixed hex number
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty status")
	}
	for status, name := range statusNames {
		if strings.EqualFold(name, s) {
			return status, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid status %q: %w", s, err)
	}
	return Status(v), nil
}
