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
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/bootfw/bootctl/bootctl/btutil"
	"github.com/bootfw/bootctl/bootctl/config"
)

func profileAddRunCmd(cmd *cobra.Command, args []string) {
	pm := config.GlobalProfileMgr()

	if len(args) == 0 {
		blUsage(cmd, fmt.Errorf("need device profile name"))
	}

	p := config.NewProfile()
	p.Name = args[0]

	for _, vdef := range args[1:] {
		s := strings.SplitN(vdef, "=", 2)
		if len(s) != 2 {
			blUsage(cmd, fmt.Errorf("expected varname=value, got %s", vdef))
		}

		switch s[0] {
		case "partition":
			p.Partition = s[1]
		case "conntype":
			p.ConnType = s[1]
		case "connstring":
			p.ConnString = s[1]
		case "descoffset":
			v, err := cast.ToIntE(s[1])
			if err != nil {
				blUsage(cmd, fmt.Errorf("invalid descoffset: %s", s[1]))
			}
			p.DescOffset = v
		case "imageoffset":
			v, err := cast.ToIntE(s[1])
			if err != nil {
				blUsage(cmd, fmt.Errorf("invalid imageoffset: %s", s[1]))
			}
			p.ImageOffset = v
		case "bootdelay":
			v, err := cast.ToIntE(s[1])
			if err != nil {
				blUsage(cmd, fmt.Errorf("invalid bootdelay: %s", s[1]))
			}
			p.BootDelayMs = v
		default:
			blUsage(cmd, fmt.Errorf("unknown variable %s", s[0]))
		}
	}

	if p.Partition == "" {
		blUsage(cmd, fmt.Errorf("must specify a partition"))
	}

	if err := pm.AddProfile(p); err != nil {
		blUsage(cmd, err)
	}

	fmt.Printf("Device profile %s successfully added\n", p.Name)
}

func profileShowRunCmd(cmd *cobra.Command, args []string) {
	pm := config.GlobalProfileMgr()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	pList, err := pm.GetProfileList()
	if err != nil {
		blUsage(cmd, err)
	}

	found := false
	for _, p := range pList {
		if name != "" && p.Name != name {
			continue
		}

		if !found {
			found = true
			fmt.Printf("Device profiles:\n")
		}
		fmt.Printf("  %s: partition=%s descoffset=%d imageoffset=%d "+
			"bootdelay=%d conntype=%s connstring='%s'\n",
			p.Name, p.Partition, p.DescOffset, p.ImageOffset,
			p.BootDelayMs, p.ConnType, p.ConnString)
	}

	if !found {
		if name == "" {
			fmt.Printf("No device profiles found!\n")
		} else {
			fmt.Printf("No device profiles found matching %s\n", name)
		}
	}
}

func profileDelRunCmd(cmd *cobra.Command, args []string) {
	pm := config.GlobalProfileMgr()

	if len(args) == 0 {
		blUsage(cmd, fmt.Errorf("need device profile name"))
	}

	if err := pm.DeleteProfile(args[0]); err != nil {
		blUsage(cmd, err)
	}

	fmt.Printf("Device profile %s successfully deleted\n", args[0])
}

func profileCmd() *cobra.Command {
	pCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage " + btutil.ToolInfo.ShortName + " device profiles",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <profile> <varname=value ...>",
		Short: "Add a " + btutil.ToolInfo.ShortName + " device profile",
		Run:   profileAddRunCmd,
	}
	pCmd.AddCommand(addCmd)

	showCmd := &cobra.Command{
		Use:   "show [profile]",
		Short: "Show " + btutil.ToolInfo.ShortName + " device profiles",
		Run:   profileShowRunCmd,
	}
	pCmd.AddCommand(showCmd)

	delCmd := &cobra.Command{
		Use:   "delete <profile>",
		Short: "Delete a " + btutil.ToolInfo.ShortName + " device profile",
		Run:   profileDelRunCmd,
	}
	pCmd.AddCommand(delCmd)

	return pCmd
}
