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

package boot

// Bootloader states.  Some of the states are commands to the outer
// logic; e.g. ReadyToBoot means the application should be started.
type State int

const (
	// No valid descriptor found; nothing bootable.
	NoAppToBoot State = iota

	// Valid app found; the pre-boot countdown is running and boot may
	// still be cancelled.
	BootDelay

	// The delay was cancelled before expiry; boot suppressed.
	BootCancelled

	// An upgrade transaction is active; all other transitions are
	// suppressed until it completes.
	AppUpgradeInProgress

	// The delay expired (or boot was explicitly requested) with a valid
	// app present.
	ReadyToBoot
)

func (s State) String() string {
	switch s {
	case NoAppToBoot:
		return "NoAppToBoot"
	case BootDelay:
		return "BootDelay"
	case BootCancelled:
		return "BootCancelled"
	case AppUpgradeInProgress:
		return "AppUpgradeInProgress"
	case ReadyToBoot:
		return "ReadyToBoot"
	default:
		return "INVALID_STATE"
	}
}
