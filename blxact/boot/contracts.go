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

// Abstracts the target-specific storage holding the application image
// and its descriptor.  One concrete implementation per storage target.
//
// Upgrade scenario:
//  1. BeginUpgrade()
//  2. Write() repeated until finished.
//  3. EndUpgrade(success or not)
//
// The sequence is transactional: exactly one BeginUpgrade, zero or more
// Writes, exactly one EndUpgrade per attempt; never interleaved or
// reordered.
type AppStorageBackend interface {
	// Prepares storage for a new image (e.g., erase).  On error, no
	// Write or EndUpgrade calls are issued for this attempt.
	BeginUpgrade() error

	// Writes len(data) bytes at the given offset within the upgrade
	// target.  Returns the number of bytes actually written; a short
	// write and an error are both fatal to the current attempt.
	Write(offset int, data []byte) (int, error)

	// Finalizes or rolls back the transaction depending on the
	// caller-supplied outcome.  May fail even when success is true,
	// e.g. if a final commit write fails.
	EndUpgrade(success bool) error

	// Reads len(data) bytes at the given offset.  Returns the number of
	// bytes actually read.
	Read(offset int, data []byte) (int, error)
}

// Proxies data received by a downloader into the bootloader.  Chunks
// arrive in strictly increasing offset order with no gaps and no
// overlaps.  An error return is a hard abort signal.
type DownloadStreamSink interface {
	HandleNextDataChunk(data []byte) error
}

// Implemented by firmware loading protocols, from remote to local
// storage.
type Downloader interface {
	// Performs the download operation synchronously, feeding every
	// received data chunk into the sink.  If the sink returns an error,
	// downloading must be aborted immediately with no further sink
	// calls.
	Download(sink DownloadStreamSink) error
}
