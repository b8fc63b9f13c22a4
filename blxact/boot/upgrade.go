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

package boot

import (
	log "github.com/sirupsen/logrus"

	"github.com/bootfw/bootctl/blxact/blutil"
)

// backendSink adapts the storage backend to the download stream sink
// contract.  It tracks the running write offset and latches the first
// failure so no further writes are attempted after an abort.
type backendSink struct {
	backend AppStorageBackend
	off     int
	err     error
}

func (s *backendSink) HandleNextDataChunk(data []byte) error {
	if s.err != nil {
		return s.err
	}

	n, err := s.backend.Write(s.off, data)
	if err != nil {
		s.err = err
		return err
	}
	if n < len(data) {
		s.err = blutil.NewShortWriteError(s.off, len(data), n)
		return s.err
	}

	s.off += n
	return nil
}

// UpgradeApp replaces the stored application image with one streamed
// from the given download source.  The old image is provisionally
// invalidated by BeginUpgrade; whether the transfer succeeds or fails,
// EndUpgrade is called with the actual outcome and the descriptor is
// re-validated, so the bootloader always lands in a well-defined state
// (BootDelay with a restarted timer on success, NoAppToBoot otherwise).
//
// A second call while an upgrade is in progress is rejected.  The lock
// is not held across the blocking download, so State() remains
// responsive during long transfers.
func (b *Bootloader) UpgradeApp(dl Downloader) error {
	b.mtx.Lock()
	if b.state == AppUpgradeInProgress {
		b.mtx.Unlock()
		return blutil.NewUpgradeInProgressError(
			"app upgrade already in progress")
	}
	b.state = AppUpgradeInProgress
	b.mtx.Unlock()

	upgErr := b.runUpgrade(dl)

	b.mtx.Lock()
	b.verifyAppAndUpdateState()
	valid := b.appValid
	b.mtx.Unlock()

	if upgErr != nil {
		return upgErr
	}
	if !valid {
		return blutil.FmtInvalidImageError("upgraded image failed "+
			"validation (descriptor at offset %d)", b.cfg.DescOffset)
	}

	log.Infof("app upgrade complete")
	return nil
}

func (b *Bootloader) runUpgrade(dl Downloader) error {
	if err := b.backend.BeginUpgrade(); err != nil {
		log.Errorf("upgrade failed in begin phase: %v", err)
		return err
	}

	sink := &backendSink{backend: b.backend}
	dlErr := dl.Download(sink)

	// Success means the downloader reported success and every chunk was
	// written in full.
	success := dlErr == nil && sink.err == nil
	endErr := b.backend.EndUpgrade(success)

	if sink.err != nil {
		log.Errorf("upgrade failed in transfer phase after %d bytes: %v",
			sink.off, sink.err)
		return sink.err
	}
	if dlErr != nil {
		log.Errorf("upgrade failed in transfer phase: %v", dlErr)
		return dlErr
	}
	if endErr != nil {
		log.Errorf("upgrade failed in finalize phase: %v", endErr)
		return endErr
	}

	log.Debugf("upgrade transfer complete; %d bytes written", sink.off)
	return nil
}
