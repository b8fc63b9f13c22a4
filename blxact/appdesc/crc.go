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
	"fmt"
	"hash/crc64"
)

// The checksum algorithm is a build-time contract between the bootloader
// and the image tooling; both sides must be configured with the same
// table.  ECMA is the default, not a requirement.
func DfltCRCTable() *crc64.Table {
	return crc64.MakeTable(crc64.ECMA)
}

// ImageCRC computes the image checksum over the given image bytes.
// descOff is the offset of the descriptor within the image, or a
// negative value if the descriptor lies outside the image region.  The
// descriptor's own image_crc field is treated as zero so that the stored
// checksum can describe the image that contains it.
func ImageCRC(tab *crc64.Table, image []byte, descOff int) uint64 {
	h := crc64.New(tab)

	start := descOff + CRCFieldOff
	end := start + CRCFieldSize

	if descOff < 0 || start >= len(image) || end <= 0 {
		h.Write(image)
		return h.Sum64()
	}

	if start > 0 {
		h.Write(image[:start])
	}

	var zeros [CRCFieldSize]byte
	n := CRCFieldSize
	if end > len(image) {
		n -= end - len(image)
	}
	h.Write(zeros[:n])

	if end < len(image) {
		h.Write(image[end:])
	}

	return h.Sum64()
}

// Stamp writes a descriptor for the supplied image into the image buffer
// itself at descOff.  The descriptor's size field is set to the full
// image length and the checksum is computed after the other fields are
// in place, so the result validates against the stamped image.  This is
// the build-tooling half of the storage contract.
func Stamp(tab *crc64.Table, image []byte, descOff int, info AppInfo) (*Descriptor, error) {
	if descOff < 0 || descOff+DescriptorSize > len(image) {
		return nil, fmt.Errorf("descriptor region [%d, %d) outside "+
			"image of %d bytes", descOff, descOff+DescriptorSize, len(image))
	}

	info.ImageSize = uint32(len(image))
	info.ImageCRC = 0

	desc := NewDescriptor(info)
	b, err := desc.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(image[descOff:], b)

	desc.ImageCRC = ImageCRC(tab, image, descOff)
	b, err = desc.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(image[descOff:], b)

	return desc, nil
}
