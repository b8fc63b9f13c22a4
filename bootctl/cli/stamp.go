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
	"io/ioutil"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bootfw/bootctl/blxact/appdesc"
	"github.com/bootfw/bootctl/bootctl/btutil"
)

var stampManifestPath string

// Build-manifest fields stamped into the descriptor.  The checksum and
// size fields are computed, not declared.
type stampManifest struct {
	Major     uint8  `yaml:"major"`
	Minor     uint8  `yaml:"minor"`
	VCSCommit uint32 `yaml:"vcs_commit"`
}

func stampRunCmd(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		blUsage(cmd, fmt.Errorf("need an image file to stamp"))
	}

	info := appdesc.AppInfo{}
	if stampManifestPath != "" {
		blob, err := ioutil.ReadFile(stampManifestPath)
		if err != nil {
			blUsage(nil, err)
		}

		var m stampManifest
		if err := yaml.Unmarshal(blob, &m); err != nil {
			blUsage(nil, fmt.Errorf("error reading manifest (%s): %s",
				stampManifestPath, err.Error()))
		}

		info.MajorVersion = m.Major
		info.MinorVersion = m.Minor
		info.VCSCommit = m.VCSCommit
	}

	image, err := ioutil.ReadFile(args[0])
	if err != nil {
		blUsage(nil, err)
	}

	desc, err := appdesc.Stamp(appdesc.DfltCRCTable(), image,
		btutil.DescOffset, info)
	if err != nil {
		blUsage(nil, err)
	}

	if err := ioutil.WriteFile(args[0], image, 0644); err != nil {
		blUsage(nil, err)
	}

	fmt.Printf("Stamped %s\n", args[0])
	fmt.Printf("Descriptor: %s\n", desc.String())
}

func stampCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "stamp <image-file>",
		Short: "Write an application descriptor into an image file",
		Example: "  " + btutil.ToolInfo.ExeName + " stamp --manifest " +
			"app.yml app.img",
		Run: stampRunCmd,
	}

	c.Flags().StringVarP(&stampManifestPath, "manifest", "m", "",
		"YAML build manifest with version fields")

	return c
}
