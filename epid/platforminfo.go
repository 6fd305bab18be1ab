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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const (
	PLATFORM_INFO_SIZE = 101 // sizeof(sgx_platform_info_t)
	TLV_HEADER_SIZE    = 4

	// TLV type of the platform info blob returned by the Intel Attestation Service
	TLV_TYPE_PLATFORM_INFO = 21
)

// PlatformInfo is the opaque sgx_platform_info_t record. Only the EPID
// library interprets its content.
type PlatformInfo [PLATFORM_INFO_SIZE]byte

// TLVHeader precedes the platform info in the IAS platformInfoBlob
// Endianess: Big Endian
type TLVHeader struct {
	Type    uint8
	Version uint8
	Size    uint16
}

// NewPlatformInfo copies raw into a PlatformInfo. The length must match exactly.
func NewPlatformInfo(raw []byte) (PlatformInfo, error) {
	var pi PlatformInfo
	if len(raw) != PLATFORM_INFO_SIZE {
		return pi, fmt.Errorf("invalid platform info length %v (expected %v)", len(raw), PLATFORM_INFO_SIZE)
	}
	copy(pi[:], raw)
	return pi, nil
}

// ParsePlatformInfoBlob decodes the hex encoded platformInfoBlob of an IAS
// attestation verification report. The blob starts with a 4 byte TLV header
// which is validated and stripped.
func ParsePlatformInfoBlob(blob string) (PlatformInfo, *TLVHeader, error) {
	var pi PlatformInfo

	raw, err := hex.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return pi, nil, fmt.Errorf("failed to decode platform info blob: %w", err)
	}
	if len(raw) < TLV_HEADER_SIZE {
		return pi, nil, fmt.Errorf("platform info blob too short (%v bytes)", len(raw))
	}

	header := &TLVHeader{}
	err = binary.Read(bytes.NewReader(raw[:TLV_HEADER_SIZE]), binary.BigEndian, header)
	if err != nil {
		return pi, nil, fmt.Errorf("failed to decode TLV header: %w", err)
	}
	log.Tracef("Platform info TLV header: type %v, version %v, size %v",
		header.Type, header.Version, header.Size)

	if int(header.Size) != PLATFORM_INFO_SIZE {
		return pi, nil, fmt.Errorf("unexpected TLV size %v (expected %v)", header.Size, PLATFORM_INFO_SIZE)
	}

	pi, err = NewPlatformInfo(raw[TLV_HEADER_SIZE:])
	if err != nil {
		return pi, nil, err
	}

	return pi, header, nil
}

// DecodePlatformInfo accepts the encodings platform info is usually found in:
// 101 raw bytes, a hex string with or without the TLV header, or a list
// of decimal byte values such as "[4, 0, 1, ...]"
func DecodePlatformInfo(data []byte) (PlatformInfo, error) {
	if len(data) == PLATFORM_INFO_SIZE {
		return NewPlatformInfo(data)
	}

	s := strings.TrimSpace(string(data))

	if strings.HasPrefix(s, "[") {
		return decodeByteList(s)
	}

	switch len(s) {
	case 2 * PLATFORM_INFO_SIZE:
		raw, err := hex.DecodeString(s)
		if err != nil {
			return PlatformInfo{}, fmt.Errorf("failed to decode platform info: %w", err)
		}
		return NewPlatformInfo(raw)
	case 2 * (PLATFORM_INFO_SIZE + TLV_HEADER_SIZE):
		pi, _, err := ParsePlatformInfoBlob(s)
		return pi, err
	default:
		return PlatformInfo{}, fmt.Errorf("unsupported platform info encoding (length %v)", len(data))
	}
}

func decodeByteList(s string) (PlatformInfo, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	fields := strings.Split(s, ",")
	raw := make([]byte, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return PlatformInfo{}, fmt.Errorf("invalid byte value %q: %w", f, err)
		}
		raw = append(raw, byte(v))
	}
	return NewPlatformInfo(raw)
}

// Hex returns the hex encoding of the platform info without TLV header
func (pi PlatformInfo) Hex() string {
	return hex.EncodeToString(pi[:])
}
