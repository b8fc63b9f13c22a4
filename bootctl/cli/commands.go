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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bootfw/bootctl/blxact/blutil"
	"github.com/bootfw/bootctl/bootctl/btutil"
)

var BootctlLogLevel log.Level

func Commands() *cobra.Command {
	logLevelStr := ""
	blCmd := &cobra.Command{
		Use:   btutil.ToolInfo.ExeName,
		Short: btutil.ToolInfo.ShortName + " manages application images on a device partition",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			BootctlLogLevel, err = log.ParseLevel(logLevelStr)
			if err != nil {
				blUsage(nil, err)
			}

			blutil.SetLogLevel(BootctlLogLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	blCmd.PersistentFlags().StringVarP(&btutil.Profile, "profile", "p", "",
		"device profile to use")

	blCmd.PersistentFlags().StringVar(&btutil.Partition, "partition", "",
		"image partition file; overrides profile setting")

	blCmd.PersistentFlags().StringVar(&btutil.ConnType, "conntype", "",
		"download source type (file, serial, tcp) instead of the "+
			"profile's type")

	blCmd.PersistentFlags().StringVar(&btutil.ConnString, "connstring", "",
		"download source key-value pairs instead of the profile's "+
			"connstring")

	blCmd.PersistentFlags().IntVar(&btutil.DescOffset, "desc-offset", 0,
		"descriptor offset within the partition")

	blCmd.PersistentFlags().IntVar(&btutil.ImageOffset, "image-offset", 0,
		"image region offset within the partition")

	blCmd.PersistentFlags().IntVar(&btutil.BootDelayMs, "boot-delay", 0,
		"boot delay in milliseconds; overrides profile setting")

	blCmd.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l", "info",
		"log level to use")

	versCmd := &cobra.Command{
		Use:     "version",
		Short:   "Display the " + btutil.ToolInfo.ShortName + " version number",
		Example: "  " + btutil.ToolInfo.ExeName + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n",
				btutil.ToolInfo.LongName,
				btutil.ToolInfo.VersionString)
		},
	}
	blCmd.AddCommand(versCmd)

	blCmd.AddCommand(stateCmd())
	blCmd.AddCommand(infoCmd())
	blCmd.AddCommand(cancelCmd())
	blCmd.AddCommand(bootCmd())
	blCmd.AddCommand(upgradeCmd())
	blCmd.AddCommand(stampCmd())
	blCmd.AddCommand(profileCmd())

	return blCmd
}
