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

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/bootfw/bootctl/blxact/serialdl"
	"github.com/bootfw/bootctl/blxact/tcpdl"
)

func einvalConnString(kind string, f string, args ...interface{}) error {
	suffix := fmt.Sprintf(f, args...)
	return fmt.Errorf("invalid %s connstring; %s", kind, suffix)
}

// ParseSerialConnString parses "dev=<path>,baud=<rate>".  A single
// token with no key is taken as the device path.
func ParseSerialConnString(cs string) (serialdl.Cfg, error) {
	sc := serialdl.NewCfg()

	parts := strings.Split(cs, ",")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 1 {
			kv = []string{"dev", kv[0]}
		}

		k := kv[0]
		v := kv[1]

		switch k {
		case "dev":
			sc.DevPath = v

		case "baud":
			var err error
			sc.Baud, err = cast.ToIntE(v)
			if err != nil {
				return sc, einvalConnString("serial", "invalid baud: %s", v)
			}

		default:
			return sc, einvalConnString("serial", "unrecognized key: %s", k)
		}
	}

	if sc.DevPath == "" {
		return sc, einvalConnString("serial", "no device path")
	}

	return sc, nil
}

// ParseTcpConnString parses "addr=<host:port>".  A single token with no
// key is taken as the address.
func ParseTcpConnString(cs string) (tcpdl.Cfg, error) {
	tc := tcpdl.NewCfg()

	parts := strings.Split(cs, ",")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 1 {
			kv = []string{"addr", kv[0]}
		}

		k := kv[0]
		v := kv[1]

		switch k {
		case "addr":
			tc.Addr = v

		default:
			return tc, einvalConnString("tcp", "unrecognized key: %s", k)
		}
	}

	if tc.Addr == "" {
		return tc, einvalConnString("tcp", "no address")
	}

	return tc, nil
}

// ParseFileConnString parses "path=<file>".  A single token with no key
// is taken as the path.
func ParseFileConnString(cs string) (string, error) {
	path := ""

	parts := strings.Split(cs, ",")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 1 {
			kv = []string{"path", kv[0]}
		}

		k := kv[0]
		v := kv[1]

		switch k {
		case "path":
			path = v

		default:
			return "", einvalConnString("file", "unrecognized key: %s", k)
		}
	}

	if path == "" {
		return "", einvalConnString("file", "no path")
	}

	return path, nil
}
