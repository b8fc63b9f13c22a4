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

// Package serialdl downloads a firmware image over a serial port.  The
// peer sends the image as newline-terminated base64 frames; each frame
// decodes to a big-endian 16-bit length followed by the chunk data and
// a CRC16 of that data.  An empty chunk marks end of image.
package serialdl

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"io"
	"time"

	"github.com/joaojeronimo/go-crc16"
	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"

	"github.com/bootfw/bootctl/blxact/blutil"
	"github.com/bootfw/bootctl/blxact/boot"
)

// Frame overhead: 2-byte length prefix + 2-byte trailing CRC.
const minFrameLen = 4

// Largest decoded frame: length prefix plus a full 16-bit body.
const maxFrameLen = 2 + 0xFFFF

type Cfg struct {
	DevPath     string
	Baud        int
	ReadTimeout time.Duration
}

func NewCfg() Cfg {
	return Cfg{
		Baud:        115200,
		ReadTimeout: 10 * time.Second,
	}
}

type SerialDownloader struct {
	cfg Cfg
}

func NewSerialDownloader(cfg Cfg) *SerialDownloader {
	return &SerialDownloader{
		cfg: cfg,
	}
}

func (sd *SerialDownloader) Download(sink boot.DownloadStreamSink) error {
	c := &serial.Config{
		Name:        sd.cfg.DevPath,
		Baud:        sd.cfg.Baud,
		ReadTimeout: sd.cfg.ReadTimeout,
	}

	port, err := serial.OpenPort(c)
	if err != nil {
		return blutil.FmtDownloadError("cannot open serial port %s: %v",
			sd.cfg.DevPath, err)
	}
	defer port.Close()

	return readFrames(port, sink)
}

func readFrames(r io.Reader, sink boot.DownloadStreamSink) error {
	total := 0
	scanner := bufio.NewScanner(r)

	// A maximum-size frame base64-encodes past the scanner's default
	// token limit.
	scanner.Buffer(make([]byte, 0, 4096),
		base64.StdEncoding.EncodedLen(maxFrameLen))

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		data, err := decodeFrame(line)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			// End-of-image marker.
			log.Debugf("serial download complete; %d bytes", total)
			return nil
		}

		if err := sink.HandleNextDataChunk(data); err != nil {
			return err
		}
		total += len(data)
	}

	if err := scanner.Err(); err != nil {
		return blutil.FmtDownloadError("serial read failed after %d "+
			"bytes: %v", total, err)
	}
	return blutil.FmtDownloadError("serial stream ended after %d bytes "+
		"without end-of-image frame", total)
}

func decodeFrame(line []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(line)))
	n, err := base64.StdEncoding.Decode(raw, line)
	if err != nil {
		return nil, blutil.FmtDownloadError("bad base64 frame: %v", err)
	}
	raw = raw[:n]

	if len(raw) < minFrameLen {
		return nil, blutil.FmtDownloadError("frame too short: %d bytes",
			len(raw))
	}

	dlen := int(binary.BigEndian.Uint16(raw[0:2]))
	if dlen != len(raw)-2 {
		return nil, blutil.FmtDownloadError("frame length mismatch: "+
			"header says %d, have %d", dlen, len(raw)-2)
	}

	body := raw[2:]
	data := body[:len(body)-2]
	want := binary.BigEndian.Uint16(body[len(body)-2:])

	if got := crc16.Crc16(data); got != want {
		return nil, blutil.FmtDownloadError("frame crc mismatch: "+
			"computed 0x%04x, frame carries 0x%04x", got, want)
	}

	return data, nil
}
