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

package streamdl

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bootfw/bootctl/blxact/blutil"
)

// collectSink gathers chunks and can reject after a byte quota.
type collectSink struct {
	data    []byte
	chunks  int
	failAt  int // reject chunks once this many bytes collected; 0 = never
	sinkErr error
}

func (s *collectSink) HandleNextDataChunk(data []byte) error {
	if s.failAt > 0 && len(s.data) >= s.failAt {
		return s.sinkErr
	}

	s.data = append(s.data, data...)
	s.chunks++
	return nil
}

func testPayload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 11)
	}
	return b
}

func TestDownloadWholeStream(t *testing.T) {
	payload := testPayload(1000)

	cfg := NewCfg()
	cfg.ChunkSize = 256

	sink := &collectSink{}
	sd := NewStreamDownloader(bytes.NewReader(payload), cfg)
	if err := sd.Download(sink); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if !bytes.Equal(sink.data, payload) {
		t.Errorf("sink received %d bytes, want %d", len(sink.data),
			len(payload))
	}

	// 1000 bytes in 256-byte chunks: three full plus one partial.
	if sink.chunks != 4 {
		t.Errorf("sink received %d chunks, want 4", sink.chunks)
	}
}

func TestDownloadEmptyStream(t *testing.T) {
	sink := &collectSink{}
	sd := NewStreamDownloader(bytes.NewReader(nil), NewCfg())

	if err := sd.Download(sink); err != nil {
		t.Fatalf("Download of empty stream failed: %v", err)
	}
	if len(sink.data) != 0 {
		t.Errorf("sink received %d bytes from empty stream", len(sink.data))
	}
}

func TestDownloadSinkAbort(t *testing.T) {
	payload := testPayload(1000)

	cfg := NewCfg()
	cfg.ChunkSize = 100

	abort := errors.New("sink rejected chunk")
	sink := &collectSink{failAt: 300, sinkErr: abort}

	sd := NewStreamDownloader(bytes.NewReader(payload), cfg)
	if err := sd.Download(sink); err != abort {
		t.Fatalf("Download error = %v, want sink abort", err)
	}

	if len(sink.data) != 300 {
		t.Errorf("sink collected %d bytes before abort, want 300",
			len(sink.data))
	}
}

type failingReader struct {
	data []byte
	off  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, errors.New("device gone")
	}

	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}

func TestDownloadSourceError(t *testing.T) {
	cfg := NewCfg()
	cfg.ChunkSize = 64

	sink := &collectSink{}
	sd := NewStreamDownloader(&failingReader{data: testPayload(128)}, cfg)

	err := sd.Download(sink)
	if err == nil {
		t.Fatalf("Download succeeded despite source failure")
	}
	if !blutil.IsDownload(err) {
		t.Errorf("error type = %T", err)
	}
}

func TestDownloadProgress(t *testing.T) {
	payload := testPayload(500)

	var reports []int
	cfg := NewCfg()
	cfg.ChunkSize = 200
	cfg.ProgressCb = func(bytesSent int) {
		reports = append(reports, bytesSent)
	}

	sink := &collectSink{}
	sd := NewStreamDownloader(bytes.NewReader(payload), cfg)
	if err := sd.Download(sink); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	want := []int{200, 400, 500}
	if len(reports) != len(want) {
		t.Fatalf("progress reports = %v, want %v", reports, want)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("progress report %d = %d, want %d", i, reports[i],
				want[i])
		}
	}
}

func TestZeroChunkSizeDefaulted(t *testing.T) {
	sd := NewStreamDownloader(bytes.NewReader(nil), Cfg{})
	if sd.cfg.ChunkSize != DfltChunkSize {
		t.Errorf("ChunkSize = %d, want default %d", sd.cfg.ChunkSize,
			DfltChunkSize)
	}
}
