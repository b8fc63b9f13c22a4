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

	"github.com/spf13/cobra"

	"github.com/bootfw/bootctl/bootctl/btutil"
)

func stateRunCmd(cmd *cobra.Command, args []string) {
	b, err := GetBootloader()
	if err != nil {
		blUsage(nil, err)
	}

	fmt.Printf("State: %s\n", b.State())
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "state",
		Short:   "Show the bootloader state for the selected partition",
		Example: "  " + btutil.ToolInfo.ExeName + " state --partition app.img",
		Run:     stateRunCmd,
	}
}

func infoRunCmd(cmd *cobra.Command, args []string) {
	b, err := GetBootloader()
	if err != nil {
		blUsage(nil, err)
	}

	info, ok := b.AppInfo()
	if !ok {
		fmt.Printf("No application installed\n")
		return
	}

	fmt.Printf("Application:\n")
	fmt.Printf("    version: %d.%d\n", info.MajorVersion, info.MinorVersion)
	fmt.Printf("    size: %d\n", info.ImageSize)
	fmt.Printf("    crc: 0x%016x\n", info.ImageCRC)
	fmt.Printf("    vcs commit: 0x%08x\n", info.VCSCommit)
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show info about the installed application, if any",
		Run:   infoRunCmd,
	}
}

func cancelRunCmd(cmd *cobra.Command, args []string) {
	b, err := GetBootloader()
	if err != nil {
		blUsage(nil, err)
	}

	b.CancelBoot()
	fmt.Printf("State: %s\n", b.State())
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the pending boot",
		Run:   cancelRunCmd,
	}
}

func bootRunCmd(cmd *cobra.Command, args []string) {
	b, err := GetBootloader()
	if err != nil {
		blUsage(nil, err)
	}

	b.RequestBoot()
	fmt.Printf("State: %s\n", b.State())
}

func bootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boot",
		Short: "Request an immediate boot, overriding the delay",
		Run:   bootRunCmd,
	}
}
