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

// Package boot implements the bootloader controller: it decides whether
// the installed application image is valid and safe to start, manages
// the pre-boot delay, and drives the firmware upgrade protocol.
package boot

import (
	"hash/crc64"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bootfw/bootctl/blxact/appdesc"
)

const DfltBootDelay = 3000 * time.Millisecond

// Read granularity for checksum verification; backends provide no
// buffers of their own.
const verifyChunkSize = 512

type Cfg struct {
	// Grace period during which an external actor may cancel automatic
	// boot.
	BootDelay time.Duration

	// Offset of the descriptor within storage.  Platform contract.
	DescOffset int

	// Offset of the image region within storage.  The image checksum
	// covers ImageSize bytes starting here.  Platform contract.
	ImageOffset int

	// Checksum table shared with the image build tooling.
	CRCTable *crc64.Table
}

func NewCfg() Cfg {
	return Cfg{
		BootDelay: DfltBootDelay,
		CRCTable:  appdesc.DfltCRCTable(),
	}
}

// Main bootloader controller.  A Bootloader holds a non-owning
// reference to its storage backend; the backend must outlive it.  All
// public entry points may be called from concurrent contexts.
type Bootloader struct {
	backend AppStorageBackend
	cfg     Cfg

	mtx        sync.Mutex
	state      State
	delayStart time.Time
	appInfo    appdesc.AppInfo
	appValid   bool
}

// New constructs a bootloader over the given backend, locates and
// validates the stored descriptor, and starts the boot-delay timer if a
// valid application is present.  Time until boot is measured from the
// moment of construction.
func New(backend AppStorageBackend, cfg Cfg) *Bootloader {
	if cfg.CRCTable == nil {
		cfg.CRCTable = appdesc.DfltCRCTable()
	}

	b := &Bootloader{
		backend: backend,
		cfg:     cfg,
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.verifyAppAndUpdateState()

	return b
}

// locateAppDescriptor reads the descriptor candidate from storage.  The
// second return value indicates whether the candidate was found and is
// structurally readable; validity is judged separately.
func (b *Bootloader) locateAppDescriptor() (*appdesc.Descriptor, bool) {
	buf := make([]byte, appdesc.DescriptorSize)

	n, err := b.backend.Read(b.cfg.DescOffset, buf)
	if err != nil {
		log.Debugf("descriptor read at offset %d failed: %v",
			b.cfg.DescOffset, err)
		return nil, false
	}
	if n < len(buf) {
		log.Debugf("descriptor read at offset %d truncated: %d bytes",
			b.cfg.DescOffset, n)
		return nil, false
	}

	var d appdesc.Descriptor
	if err := d.UnmarshalBinary(buf); err != nil {
		return nil, false
	}

	return &d, true
}

// verifyImageCRC recomputes the checksum over exactly ImageSize bytes
// of the image region and compares it against the descriptor.  The
// descriptor's own checksum field reads as zero, matching the build
// tooling.
func (b *Bootloader) verifyImageCRC(d *appdesc.Descriptor) bool {
	size := int(d.ImageSize)

	// Checksum field position relative to the image region.
	zs := b.cfg.DescOffset - b.cfg.ImageOffset + appdesc.CRCFieldOff
	ze := zs + appdesc.CRCFieldSize

	h := crc64.New(b.cfg.CRCTable)
	buf := make([]byte, verifyChunkSize)

	for off := 0; off < size; {
		n := len(buf)
		if size-off < n {
			n = size - off
		}

		rn, err := b.backend.Read(b.cfg.ImageOffset+off, buf[:n])
		if err != nil || rn < n {
			log.Debugf("image read at offset %d failed: n=%d err=%v",
				b.cfg.ImageOffset+off, rn, err)
			return false
		}

		for i := 0; i < n; i++ {
			if p := off + i; p >= zs && p < ze {
				buf[i] = 0
			}
		}

		h.Write(buf[:n])
		off += n
	}

	if sum := h.Sum64(); sum != d.ImageCRC {
		log.Debugf("image crc mismatch: computed=0x%016x stored=0x%016x",
			sum, d.ImageCRC)
		return false
	}

	return true
}

// verifyAppAndUpdateState re-evaluates the stored application and sets
// the state accordingly.  Caller must hold the lock.
func (b *Bootloader) verifyAppAndUpdateState() {
	desc, ok := b.locateAppDescriptor()
	if !ok || !desc.IsValid() || !b.verifyImageCRC(desc) {
		b.appValid = false
		b.state = NoAppToBoot
		log.Debugf("no bootable application found")
		return
	}

	b.appInfo = desc.AppInfo
	b.appValid = true
	b.state = BootDelay
	b.delayStart = time.Now()
	log.Debugf("bootable application found; %s", desc.AppInfo.String())
}

// State returns the current state, first promoting BootDelay to
// ReadyToBoot if the configured delay has elapsed.  The delay is a
// passive timeout; no external tick is required.
func (b *Bootloader) State() State {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.state == BootDelay && time.Since(b.delayStart) >= b.cfg.BootDelay {
		log.Debugf("boot delay expired")
		b.state = ReadyToBoot
	}

	return b.state
}

// AppInfo returns info about the installed application, if any.  The
// second return value is false when there is no application to work
// with.
func (b *Bootloader) AppInfo() (appdesc.AppInfo, bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.appInfo, b.appValid
}

// CancelBoot switches the state to BootCancelled, if allowed.  From any
// state other than BootDelay the call is a harmless no-op.
func (b *Bootloader) CancelBoot() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.state == BootDelay {
		b.state = BootCancelled
		log.Infof("boot cancelled")
	}
}

// RequestBoot switches the state to ReadyToBoot, if allowed.  An
// explicit request overrides a running delay or an earlier
// cancellation; it is a no-op while upgrading or when there is no
// application to boot.
func (b *Bootloader) RequestBoot() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.state == BootDelay || b.state == BootCancelled {
		b.state = ReadyToBoot
		log.Infof("boot requested")
	}
}
