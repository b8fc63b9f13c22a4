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

// Package tcpdl downloads a firmware image from a TCP image server.
// The server streams CBOR-encoded chunk records in offset order; the
// record with last=true completes the image.
package tcpdl

import (
	"io"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"

	"github.com/bootfw/bootctl/blxact/blutil"
	"github.com/bootfw/bootctl/blxact/boot"
)

type Cfg struct {
	Addr        string
	ConnTimeout time.Duration
}

func NewCfg() Cfg {
	return Cfg{
		ConnTimeout: 10 * time.Second,
	}
}

// Chunk is one record of the image stream.
type Chunk struct {
	Off  uint32 `codec:"off"`
	Data []byte `codec:"data"`
	Last bool   `codec:"last"`
}

type TcpDownloader struct {
	cfg Cfg
}

func NewTcpDownloader(cfg Cfg) *TcpDownloader {
	return &TcpDownloader{
		cfg: cfg,
	}
}

func (td *TcpDownloader) Download(sink boot.DownloadStreamSink) error {
	conn, err := net.DialTimeout("tcp", td.cfg.Addr, td.cfg.ConnTimeout)
	if err != nil {
		return blutil.FmtDownloadError("cannot connect to image server "+
			"%s: %v", td.cfg.Addr, err)
	}
	defer conn.Close()

	log.Debugf("connected to image server %s", td.cfg.Addr)

	cborCodec := new(codec.CborHandle)
	dec := codec.NewDecoder(conn, cborCodec)

	expected := uint32(0)
	for {
		var c Chunk
		if err := dec.Decode(&c); err != nil {
			if err == io.EOF {
				return blutil.FmtDownloadError("image stream ended at "+
					"offset %d without final chunk", expected)
			}
			return blutil.FmtDownloadError("bad chunk record at offset "+
				"%d: %v", expected, err)
		}

		// Chunks must be contiguous and in order.
		if c.Off != expected {
			return blutil.FmtDownloadError("chunk out of order: got "+
				"offset %d, want %d", c.Off, expected)
		}

		if len(c.Data) > 0 {
			if err := sink.HandleNextDataChunk(c.Data); err != nil {
				return err
			}
			expected += uint32(len(c.Data))
		}

		if c.Last {
			log.Debugf("tcp download complete; %d bytes", expected)
			return nil
		}
	}
}
