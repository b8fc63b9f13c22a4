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

// Package streamdl downloads a firmware image from any io.Reader,
// feeding it to the sink in fixed-size chunks.  It backs the
// upgrade-from-file path of the host tool and the test rigs.
package streamdl

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/bootfw/bootctl/blxact/blutil"
	"github.com/bootfw/bootctl/blxact/boot"
)

const DfltChunkSize = 512

type ProgressFn func(bytesSent int)

type Cfg struct {
	ChunkSize  int
	ProgressCb ProgressFn
}

func NewCfg() Cfg {
	return Cfg{
		ChunkSize: DfltChunkSize,
	}
}

type StreamDownloader struct {
	r   io.Reader
	cfg Cfg
}

func NewStreamDownloader(r io.Reader, cfg Cfg) *StreamDownloader {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DfltChunkSize
	}

	return &StreamDownloader{
		r:   r,
		cfg: cfg,
	}
}

func (sd *StreamDownloader) Download(sink boot.DownloadStreamSink) error {
	buf := make([]byte, sd.cfg.ChunkSize)
	total := 0

	for {
		n, err := sd.r.Read(buf)
		if n > 0 {
			if serr := sink.HandleNextDataChunk(buf[:n]); serr != nil {
				// Sink abort; stop immediately.
				return serr
			}

			total += n
			if sd.cfg.ProgressCb != nil {
				sd.cfg.ProgressCb(total)
			}
		}

		if err == io.EOF {
			log.Debugf("stream download complete; %d bytes", total)
			return nil
		}
		if err != nil {
			return blutil.FmtDownloadError("source read failed after %d "+
				"bytes: %v", total, err)
		}
	}
}
