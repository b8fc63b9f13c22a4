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

package tcpdl

import (
	"bytes"
	"net"
	"testing"

	"github.com/ugorji/go/codec"

	"github.com/bootfw/bootctl/blxact/blutil"
)

type collectSink struct {
	data []byte
}

func (s *collectSink) HandleNextDataChunk(data []byte) error {
	s.data = append(s.data, data...)
	return nil
}

// serveChunks starts a one-shot image server streaming the given chunk
// records, then closes the connection.
func serveChunks(t *testing.T, chunks []Chunk) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("cannot listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		enc := codec.NewEncoder(conn, new(codec.CborHandle))
		for _, c := range chunks {
			if err := enc.Encode(c); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func TestDownloadOrderedStream(t *testing.T) {
	payload := []byte("the quick brown firmware jumps over the lazy device")

	chunks := []Chunk{
		{Off: 0, Data: payload[:20]},
		{Off: 20, Data: payload[20:40]},
		{Off: 40, Data: payload[40:], Last: true},
	}

	cfg := NewCfg()
	cfg.Addr = serveChunks(t, chunks)

	sink := &collectSink{}
	td := NewTcpDownloader(cfg)
	if err := td.Download(sink); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if !bytes.Equal(sink.data, payload) {
		t.Errorf("sink received %q", sink.data)
	}
}

func TestDownloadEmptyFinalChunk(t *testing.T) {
	payload := []byte("image body")

	chunks := []Chunk{
		{Off: 0, Data: payload},
		{Off: uint32(len(payload)), Last: true},
	}

	cfg := NewCfg()
	cfg.Addr = serveChunks(t, chunks)

	sink := &collectSink{}
	if err := NewTcpDownloader(cfg).Download(sink); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !bytes.Equal(sink.data, payload) {
		t.Errorf("sink received %q", sink.data)
	}
}

func TestDownloadOutOfOrderChunk(t *testing.T) {
	chunks := []Chunk{
		{Off: 0, Data: []byte("first")},
		{Off: 100, Data: []byte("hole"), Last: true},
	}

	cfg := NewCfg()
	cfg.Addr = serveChunks(t, chunks)

	err := NewTcpDownloader(cfg).Download(&collectSink{})
	if err == nil {
		t.Fatalf("Download accepted out-of-order chunk")
	}
	if !blutil.IsDownload(err) {
		t.Errorf("error type = %T", err)
	}
}

func TestDownloadTruncatedStream(t *testing.T) {
	// Server closes before sending the final chunk.
	chunks := []Chunk{
		{Off: 0, Data: []byte("partial")},
	}

	cfg := NewCfg()
	cfg.Addr = serveChunks(t, chunks)

	err := NewTcpDownloader(cfg).Download(&collectSink{})
	if err == nil {
		t.Fatalf("Download accepted truncated stream")
	}
	if !blutil.IsDownload(err) {
		t.Errorf("error type = %T", err)
	}
}

func TestDownloadNoServer(t *testing.T) {
	cfg := NewCfg()
	cfg.Addr = "127.0.0.1:1"

	if err := NewTcpDownloader(cfg).Download(&collectSink{}); err == nil {
		t.Errorf("expected error connecting to closed port")
	}
}
