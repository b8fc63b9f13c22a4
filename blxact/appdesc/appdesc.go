/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package appdesc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// On-storage descriptor layout, 32 bytes, little-endian, no padding:
//
//     0   8  signature = "APDesc00"
//     8   8  image_crc
//     16  4  image_size
//     20  4  vcs_commit
//     24  1  major_version
//     25  1  minor_version
//     26  6  reserved
//
// The layout is shared with the application build tooling; it is encoded
// and decoded field by field rather than relying on in-memory layout.
const (
	DescriptorSize = 32
	SignatureSize  = 8

	// Position of the image_crc field within the descriptor; part of
	// the storage contract, needed by anyone recomputing the checksum.
	CRCFieldOff  = 8
	CRCFieldSize = 8
)

// All bits set; reserved as invalid/unset.
const MaxImageSize = 0xFFFFFFFF

var signatureValue = [SignatureSize]byte{'A', 'P', 'D', 'e', 's', 'c', '0', '0'}

// Semantic record describing an installed application image.
type AppInfo struct {
	ImageCRC     uint64
	ImageSize    uint32
	VCSCommit    uint32
	MajorVersion uint8
	MinorVersion uint8
}

func (ai *AppInfo) String() string {
	return fmt.Sprintf("version=%d.%d size=%d crc=0x%016x vcs=0x%08x",
		ai.MajorVersion, ai.MinorVersion, ai.ImageSize, ai.ImageCRC,
		ai.VCSCommit)
}

// Structure persisted alongside the application image in storage.
type Descriptor struct {
	Signature [SignatureSize]byte
	AppInfo
	Reserved [6]byte
}

func NewDescriptor(info AppInfo) *Descriptor {
	return &Descriptor{
		Signature: signatureValue,
		AppInfo:   info,
	}
}

// IsValid reports whether the descriptor identifies a bootable
// application: the signature bytes match exactly and the size field is
// in (0, MaxImageSize).  A descriptor read from erased or uninitialized
// storage fails both checks.
func (d *Descriptor) IsValid() bool {
	return bytes.Equal(d.Signature[:], signatureValue[:]) &&
		d.ImageSize > 0 &&
		d.ImageSize < MaxImageSize
}

func (d *Descriptor) MarshalBinary() ([]byte, error) {
	b := make([]byte, DescriptorSize)

	copy(b[0:8], d.Signature[:])
	binary.LittleEndian.PutUint64(b[8:16], d.ImageCRC)
	binary.LittleEndian.PutUint32(b[16:20], d.ImageSize)
	binary.LittleEndian.PutUint32(b[20:24], d.VCSCommit)
	b[24] = d.MajorVersion
	b[25] = d.MinorVersion
	copy(b[26:32], d.Reserved[:])

	return b, nil
}

func (d *Descriptor) UnmarshalBinary(b []byte) error {
	if len(b) < DescriptorSize {
		return fmt.Errorf("descriptor too short: have %d bytes, need %d",
			len(b), DescriptorSize)
	}

	copy(d.Signature[:], b[0:8])
	d.ImageCRC = binary.LittleEndian.Uint64(b[8:16])
	d.ImageSize = binary.LittleEndian.Uint32(b[16:20])
	d.VCSCommit = binary.LittleEndian.Uint32(b[20:24])
	d.MajorVersion = b[24]
	d.MinorVersion = b[25]
	copy(d.Reserved[:], b[26:32])

	return nil
}
