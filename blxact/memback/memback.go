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

// Package memback provides an in-memory application storage backend.
// It models NOR-flash behavior: BeginUpgrade erases the whole region to
// 0xFF in place, so an interrupted upgrade leaves no valid descriptor
// behind.  Fault-injection knobs make it the reference backend for
// exercising the bootloader's failure paths.
package memback

import (
	"fmt"
	"sync"
)

const ErasedByte = 0xFF

type MemBackend struct {
	mtx       sync.Mutex
	data      []byte
	inUpgrade bool

	// Fault injection; zero values disable everything.
	FailBegin    bool // BeginUpgrade reports an error
	FailEnd      bool // EndUpgrade reports an error
	FailWriteOff int  // writes at or past this offset fail; <0 disables
	MaxChunk     int  // cap on bytes accepted per Write; 0 = unlimited
}

func NewMemBackend(size int) *MemBackend {
	mb := &MemBackend{
		data:         make([]byte, size),
		FailWriteOff: -1,
	}
	for i := range mb.data {
		mb.data[i] = ErasedByte
	}
	return mb
}

// Load copies data into storage at the given offset, outside of any
// upgrade transaction.  Intended for seeding test fixtures and host
// rigs with a pre-installed image.
func (mb *MemBackend) Load(offset int, data []byte) error {
	mb.mtx.Lock()
	defer mb.mtx.Unlock()

	if offset < 0 || offset+len(data) > len(mb.data) {
		return fmt.Errorf("load of %d bytes at offset %d exceeds "+
			"storage size %d", len(data), offset, len(mb.data))
	}

	copy(mb.data[offset:], data)
	return nil
}

// Bytes returns a copy of the full storage contents.
func (mb *MemBackend) Bytes() []byte {
	mb.mtx.Lock()
	defer mb.mtx.Unlock()

	b := make([]byte, len(mb.data))
	copy(b, mb.data)
	return b
}

func (mb *MemBackend) BeginUpgrade() error {
	mb.mtx.Lock()
	defer mb.mtx.Unlock()

	if mb.inUpgrade {
		return fmt.Errorf("upgrade transaction already open")
	}
	if mb.FailBegin {
		return fmt.Errorf("injected begin failure")
	}

	for i := range mb.data {
		mb.data[i] = ErasedByte
	}
	mb.inUpgrade = true
	return nil
}

func (mb *MemBackend) Write(offset int, data []byte) (int, error) {
	mb.mtx.Lock()
	defer mb.mtx.Unlock()

	if !mb.inUpgrade {
		return 0, fmt.Errorf("write outside upgrade transaction")
	}
	if mb.FailWriteOff >= 0 && offset+len(data) > mb.FailWriteOff {
		return 0, fmt.Errorf("injected write failure at offset %d", offset)
	}
	if offset < 0 || offset >= len(mb.data) {
		return 0, fmt.Errorf("write offset %d outside storage of %d bytes",
			offset, len(mb.data))
	}

	n := len(data)
	if mb.MaxChunk > 0 && n > mb.MaxChunk {
		n = mb.MaxChunk
	}
	if offset+n > len(mb.data) {
		n = len(mb.data) - offset
	}

	copy(mb.data[offset:], data[:n])
	return n, nil
}

func (mb *MemBackend) EndUpgrade(success bool) error {
	mb.mtx.Lock()
	defer mb.mtx.Unlock()

	if !mb.inUpgrade {
		return fmt.Errorf("no upgrade transaction open")
	}
	mb.inUpgrade = false

	if mb.FailEnd {
		return fmt.Errorf("injected end failure")
	}

	// Erase-in-place model: nothing to commit on success, and a failed
	// attempt already left the region erased or partially written.
	return nil
}

func (mb *MemBackend) Read(offset int, data []byte) (int, error) {
	mb.mtx.Lock()
	defer mb.mtx.Unlock()

	if offset < 0 || offset >= len(mb.data) {
		return 0, fmt.Errorf("read offset %d outside storage of %d bytes",
			offset, len(mb.data))
	}

	n := copy(data, mb.data[offset:])
	return n, nil
}
