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

package serialdl

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/joaojeronimo/go-crc16"
)

type collectSink struct {
	data []byte
}

func (s *collectSink) HandleNextDataChunk(data []byte) error {
	s.data = append(s.data, data...)
	return nil
}

// encodeFrame builds a wire frame the way the device side does.
func encodeFrame(data []byte) []byte {
	raw := make([]byte, 2+len(data)+2)
	binary.BigEndian.PutUint16(raw[0:2], uint16(len(data)+2))
	copy(raw[2:], data)
	binary.BigEndian.PutUint16(raw[2+len(data):], crc16.Crc16(data))

	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out
}

func TestDecodeFrame(t *testing.T) {
	payload := []byte("firmware chunk payload")

	data, err := decodeFrame(encodeFrame(payload))
	if err != nil {
		t.Fatalf("decodeFrame failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("decoded %q, want %q", data, payload)
	}
}

func TestDecodeEndOfImageFrame(t *testing.T) {
	data, err := decodeFrame(encodeFrame(nil))
	if err != nil {
		t.Fatalf("decodeFrame failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("end-of-image frame decoded to %d bytes", len(data))
	}
}

func TestDecodeFrameBadBase64(t *testing.T) {
	if _, err := decodeFrame([]byte("not!base64@@")); err == nil {
		t.Errorf("expected error for bad base64")
	}
}

func TestDecodeFrameTooShort(t *testing.T) {
	raw := []byte{0x00, 0x02}
	line := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(line, raw)

	if _, err := decodeFrame(line); err == nil {
		t.Errorf("expected error for truncated frame")
	}
}

func TestDecodeFrameLengthMismatch(t *testing.T) {
	line := encodeFrame([]byte("payload"))

	raw, err := base64.StdEncoding.DecodeString(string(line))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	binary.BigEndian.PutUint16(raw[0:2], 99)

	bad := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(bad, raw)

	if _, err := decodeFrame(bad); err == nil {
		t.Errorf("expected error for length mismatch")
	}
}

func TestDecodeFrameCRCMismatch(t *testing.T) {
	line := encodeFrame([]byte("payload"))

	raw, err := base64.StdEncoding.DecodeString(string(line))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Corrupt a payload byte; the trailing CRC no longer matches.
	raw[3] ^= 0xFF

	bad := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(bad, raw)

	if _, err := decodeFrame(bad); err == nil {
		t.Errorf("expected error for crc mismatch")
	}
}

func TestReadFramesStream(t *testing.T) {
	payload := []byte("chunk one chunk two chunk three")

	var stream bytes.Buffer
	stream.Write(encodeFrame(payload[:10]))
	stream.WriteByte('\n')
	stream.Write(encodeFrame(payload[10:]))
	stream.WriteByte('\n')
	stream.Write(encodeFrame(nil))
	stream.WriteByte('\n')

	sink := &collectSink{}
	if err := readFrames(&stream, sink); err != nil {
		t.Fatalf("readFrames failed: %v", err)
	}
	if !bytes.Equal(sink.data, payload) {
		t.Errorf("sink received %q", sink.data)
	}
}

func TestReadFramesMaximumChunk(t *testing.T) {
	// The largest chunk the 16-bit length field allows; its base64
	// line is well past bufio's default token limit.
	payload := make([]byte, maxFrameLen-minFrameLen)
	for i := range payload {
		payload[i] = byte(i * 13)
	}

	var stream bytes.Buffer
	stream.Write(encodeFrame(payload))
	stream.WriteByte('\n')
	stream.Write(encodeFrame(nil))
	stream.WriteByte('\n')

	sink := &collectSink{}
	if err := readFrames(&stream, sink); err != nil {
		t.Fatalf("readFrames failed on maximum-size chunk: %v", err)
	}
	if !bytes.Equal(sink.data, payload) {
		t.Errorf("sink received %d bytes, want %d", len(sink.data),
			len(payload))
	}
}

func TestReadFramesMissingEndMarker(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(encodeFrame([]byte("partial image")))
	stream.WriteByte('\n')

	if err := readFrames(&stream, &collectSink{}); err == nil {
		t.Errorf("expected error for stream without end-of-image frame")
	}
}

func TestDownloadMissingDevice(t *testing.T) {
	cfg := NewCfg()
	cfg.DevPath = "/dev/does-not-exist"

	sd := NewSerialDownloader(cfg)
	if err := sd.Download(nil); err == nil {
		t.Errorf("expected error opening nonexistent device")
	}
}
