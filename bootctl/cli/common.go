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

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bootfw/bootctl/blxact/boot"
	"github.com/bootfw/bootctl/blxact/fileback"
	"github.com/bootfw/bootctl/bootctl/btutil"
	"github.com/bootfw/bootctl/bootctl/config"
)

func blUsage(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	}

	if cmd != nil {
		fmt.Fprintf(os.Stderr, "\n")
		cmd.Help()
	}
	os.Exit(1)
}

// getProfile returns the selected device profile, or nil if the command
// line describes the device with flags alone.
func getProfile() (*config.Profile, error) {
	if btutil.Profile == "" {
		return nil, nil
	}

	return config.GlobalProfileMgr().GetProfile(btutil.Profile)
}

// GetBootloader constructs a bootloader over the selected image
// partition.  Flags override profile settings.
func GetBootloader() (*boot.Bootloader, error) {
	p, err := getProfile()
	if err != nil {
		return nil, err
	}

	partition := btutil.Partition
	cfg := boot.NewCfg()

	if p != nil {
		if partition == "" {
			partition = p.Partition
		}
		cfg.DescOffset = p.DescOffset
		cfg.ImageOffset = p.ImageOffset
		if p.BootDelayMs > 0 {
			cfg.BootDelay = time.Duration(p.BootDelayMs) * time.Millisecond
		}
	}

	if btutil.DescOffset != 0 {
		cfg.DescOffset = btutil.DescOffset
	}
	if btutil.ImageOffset != 0 {
		cfg.ImageOffset = btutil.ImageOffset
	}
	if btutil.BootDelayMs > 0 {
		cfg.BootDelay = time.Duration(btutil.BootDelayMs) * time.Millisecond
	}

	if partition == "" {
		return nil, fmt.Errorf("no image partition specified; use " +
			"--partition or a device profile")
	}

	backend := fileback.NewFileBackend(partition)
	return boot.New(backend, cfg), nil
}

// connSource resolves the download source type and connstring from
// flags and profile.
func connSource() (string, string, error) {
	p, err := getProfile()
	if err != nil {
		return "", "", err
	}

	connType := btutil.ConnType
	connString := btutil.ConnString

	if p != nil {
		if connType == "" {
			connType = p.ConnType
		}
		if connString == "" {
			connString = p.ConnString
		}
	}

	if connType == "" {
		return "", "", fmt.Errorf("no download source specified; use " +
			"--conntype/--connstring or a device profile")
	}

	return connType, connString, nil
}
