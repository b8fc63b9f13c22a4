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

package memback

import (
	"bytes"
	"testing"
)

func TestNewBackendErased(t *testing.T) {
	mb := NewMemBackend(64)

	for i, b := range mb.Bytes() {
		if b != ErasedByte {
			t.Fatalf("byte %d = 0x%02x, want erased", i, b)
		}
	}
}

func TestLoadAndRead(t *testing.T) {
	mb := NewMemBackend(64)

	payload := []byte("hello firmware")
	if err := mb.Load(8, payload); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	buf := make([]byte, len(payload))
	n, err := mb.Read(8, buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(payload) || !bytes.Equal(buf, payload) {
		t.Errorf("read back %q (%d bytes)", buf[:n], n)
	}
}

func TestLoadOutOfRange(t *testing.T) {
	mb := NewMemBackend(16)

	if err := mb.Load(10, make([]byte, 10)); err == nil {
		t.Errorf("expected error for load past end of storage")
	}
	if err := mb.Load(-1, make([]byte, 4)); err == nil {
		t.Errorf("expected error for negative offset")
	}
}

func TestBeginUpgradeErases(t *testing.T) {
	mb := NewMemBackend(32)
	if err := mb.Load(0, []byte("previous image contents here")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := mb.BeginUpgrade(); err != nil {
		t.Fatalf("BeginUpgrade failed: %v", err)
	}

	for i, b := range mb.Bytes() {
		if b != ErasedByte {
			t.Fatalf("byte %d = 0x%02x after erase", i, b)
		}
	}

	if err := mb.EndUpgrade(false); err != nil {
		t.Fatalf("EndUpgrade failed: %v", err)
	}
}

func TestWriteOutsideTransaction(t *testing.T) {
	mb := NewMemBackend(32)

	if _, err := mb.Write(0, []byte{1, 2, 3}); err == nil {
		t.Errorf("write accepted outside upgrade transaction")
	}
}

func TestDoubleBeginRejected(t *testing.T) {
	mb := NewMemBackend(32)

	if err := mb.BeginUpgrade(); err != nil {
		t.Fatalf("BeginUpgrade failed: %v", err)
	}
	if err := mb.BeginUpgrade(); err == nil {
		t.Errorf("second BeginUpgrade accepted")
	}
}

func TestWriteCappedByMaxChunk(t *testing.T) {
	mb := NewMemBackend(32)
	mb.MaxChunk = 4

	if err := mb.BeginUpgrade(); err != nil {
		t.Fatalf("BeginUpgrade failed: %v", err)
	}

	n, err := mb.Write(0, []byte("abcdefgh"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Write accepted %d bytes, want 4", n)
	}
}

func TestWriteTruncatedAtEnd(t *testing.T) {
	mb := NewMemBackend(10)

	if err := mb.BeginUpgrade(); err != nil {
		t.Fatalf("BeginUpgrade failed: %v", err)
	}

	n, err := mb.Write(8, []byte("abcdef"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Write accepted %d bytes, want 2", n)
	}
}

func TestInjectedWriteFailure(t *testing.T) {
	mb := NewMemBackend(32)
	mb.FailWriteOff = 16

	if err := mb.BeginUpgrade(); err != nil {
		t.Fatalf("BeginUpgrade failed: %v", err)
	}

	if _, err := mb.Write(0, make([]byte, 8)); err != nil {
		t.Fatalf("write below failure offset failed: %v", err)
	}
	if _, err := mb.Write(12, make([]byte, 8)); err == nil {
		t.Errorf("write crossing failure offset succeeded")
	}
}

func TestReadShort(t *testing.T) {
	mb := NewMemBackend(10)

	buf := make([]byte, 20)
	n, err := mb.Read(4, buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 6 {
		t.Errorf("Read returned %d bytes, want 6", n)
	}
}
