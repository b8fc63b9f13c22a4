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

	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/bootfw/bootctl/blxact/boot"
	"github.com/bootfw/bootctl/blxact/serialdl"
	"github.com/bootfw/bootctl/blxact/streamdl"
	"github.com/bootfw/bootctl/blxact/tcpdl"
	"github.com/bootfw/bootctl/bootctl/btutil"
	"github.com/bootfw/bootctl/bootctl/config"
)

// buildDownloader constructs the download source selected by the
// conntype/connstring pair.  The returned cleanup func must be called
// after the download finishes.
func buildDownloader(connType string, connString string) (
	boot.Downloader, func(), error) {

	noop := func() {}

	switch connType {
	case "file":
		path, err := config.ParseFileConnString(connString)
		if err != nil {
			return nil, noop, err
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, noop, err
		}

		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, noop, err
		}

		bar := pb.New(int(st.Size())).SetUnits(pb.U_BYTES)
		bar.Start()

		sc := streamdl.NewCfg()
		sc.ProgressCb = func(total int) {
			bar.Set(total)
		}

		cleanup := func() {
			bar.Finish()
			f.Close()
		}
		return streamdl.NewStreamDownloader(f, sc), cleanup, nil

	case "serial":
		sc, err := config.ParseSerialConnString(connString)
		if err != nil {
			return nil, noop, err
		}
		return serialdl.NewSerialDownloader(sc), noop, nil

	case "tcp":
		tc, err := config.ParseTcpConnString(connString)
		if err != nil {
			return nil, noop, err
		}
		return tcpdl.NewTcpDownloader(tc), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown download source type: %s",
			connType)
	}
}

func upgradeRunCmd(cmd *cobra.Command, args []string) {
	b, err := GetBootloader()
	if err != nil {
		blUsage(nil, err)
	}

	connType, connString, err := connSource()
	if err != nil {
		blUsage(cmd, err)
	}

	dl, cleanup, err := buildDownloader(connType, connString)
	if err != nil {
		blUsage(cmd, err)
	}

	upgErr := b.UpgradeApp(dl)
	cleanup()

	if upgErr != nil {
		fmt.Fprintf(os.Stderr, "Error: upgrade failed: %s\n",
			upgErr.Error())
		fmt.Printf("State: %s\n", b.State())
		os.Exit(1)
	}

	fmt.Printf("Upgrade complete\n")
	if info, ok := b.AppInfo(); ok {
		fmt.Printf("Installed: %s\n", info.String())
	}
	fmt.Printf("State: %s\n", b.State())
}

func upgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Replace the installed application image",
		Example: "  " + btutil.ToolInfo.ExeName + " upgrade --partition " +
			"app.img --conntype file --connstring path=new.img",
		Run: upgradeRunCmd,
	}
}
