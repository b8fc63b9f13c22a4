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

// Package fileback stores the application image in a regular file,
// standing in for a device's image partition on the host side.  An
// upgrade is staged in a sibling file and committed by rename, so a
// failed or interrupted upgrade never corrupts the installed image.
package fileback

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

type FileBackend struct {
	mtx    sync.Mutex
	path   string
	staged *os.File
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
	}
}

func (fb *FileBackend) stagedPath() string {
	return fb.path + ".staged"
}

func (fb *FileBackend) BeginUpgrade() error {
	fb.mtx.Lock()
	defer fb.mtx.Unlock()

	if fb.staged != nil {
		return errors.New("upgrade transaction already open")
	}

	f, err := os.Create(fb.stagedPath())
	if err != nil {
		return errors.Wrapf(err, "cannot create staged image %s",
			fb.stagedPath())
	}

	fb.staged = f
	return nil
}

func (fb *FileBackend) Write(offset int, data []byte) (int, error) {
	fb.mtx.Lock()
	defer fb.mtx.Unlock()

	if fb.staged == nil {
		return 0, errors.New("write outside upgrade transaction")
	}

	n, err := fb.staged.WriteAt(data, int64(offset))
	if err != nil {
		return n, errors.Wrapf(err, "staged write of %d bytes at offset %d",
			len(data), offset)
	}

	return n, nil
}

func (fb *FileBackend) EndUpgrade(success bool) error {
	fb.mtx.Lock()
	defer fb.mtx.Unlock()

	if fb.staged == nil {
		return errors.New("no upgrade transaction open")
	}

	f := fb.staged
	fb.staged = nil

	if !success {
		f.Close()
		os.Remove(fb.stagedPath())
		return nil
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(fb.stagedPath())
		return errors.Wrap(err, "cannot sync staged image")
	}
	if err := f.Close(); err != nil {
		os.Remove(fb.stagedPath())
		return errors.Wrap(err, "cannot close staged image")
	}

	if err := os.Rename(fb.stagedPath(), fb.path); err != nil {
		os.Remove(fb.stagedPath())
		return errors.Wrapf(err, "cannot commit staged image to %s", fb.path)
	}

	return nil
}

func (fb *FileBackend) Read(offset int, data []byte) (int, error) {
	fb.mtx.Lock()
	defer fb.mtx.Unlock()

	f, err := os.Open(fb.path)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot open image %s", fb.path)
	}
	defer f.Close()

	n, err := f.ReadAt(data, int64(offset))
	if n > 0 && err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, errors.Wrapf(err, "image read of %d bytes at offset %d",
			len(data), offset)
	}

	return n, nil
}
