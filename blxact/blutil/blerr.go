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

package blutil

import (
	"fmt"
)

// Indicates an attempt to start an upgrade while another one is running.
type UpgradeInProgressError struct {
	Text string
}

func NewUpgradeInProgressError(text string) *UpgradeInProgressError {
	return &UpgradeInProgressError{
		Text: text,
	}
}

func (e *UpgradeInProgressError) Error() string {
	return e.Text
}

func IsUpgradeInProgress(err error) bool {
	_, ok := err.(*UpgradeInProgressError)
	return ok
}

// Indicates that the storage backend accepted fewer bytes than requested.
// A short write is fatal to the upgrade attempt in progress.
type ShortWriteError struct {
	Offset    int
	Requested int
	Written   int
}

func NewShortWriteError(offset int, requested int, written int) *ShortWriteError {
	return &ShortWriteError{
		Offset:    offset,
		Requested: requested,
		Written:   written,
	}
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("short write at offset %d: requested %d bytes, "+
		"wrote %d", e.Offset, e.Requested, e.Written)
}

func IsShortWrite(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*ShortWriteError)
	return ok
}

// Indicates that the stored application image failed validation (missing
// or corrupt descriptor, or checksum mismatch).  This is the normal
// "nothing to boot" condition, not a storage failure.
type InvalidImageError struct {
	Text string
}

func NewInvalidImageError(text string) *InvalidImageError {
	return &InvalidImageError{text}
}

func FmtInvalidImageError(format string, args ...interface{}) *InvalidImageError {
	return NewInvalidImageError(fmt.Sprintf(format, args...))
}

func (e *InvalidImageError) Error() string {
	return e.Text
}

func IsInvalidImage(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*InvalidImageError)
	return ok
}

// Represents a failure reported by a download source.
type DownloadError struct {
	Text string
}

func NewDownloadError(text string) *DownloadError {
	return &DownloadError{text}
}

func FmtDownloadError(format string, args ...interface{}) *DownloadError {
	return NewDownloadError(fmt.Sprintf(format, args...))
}

func (e *DownloadError) Error() string {
	return e.Text
}

func IsDownload(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*DownloadError)
	return ok
}
