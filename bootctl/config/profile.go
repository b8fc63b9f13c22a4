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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/bootfw/bootctl/bootctl/btutil"
)

// A device profile names an image partition plus the source to upgrade
// it from.
type Profile struct {
	Name        string `json:"Name"`
	Partition   string `json:"Partition"`
	DescOffset  int    `json:"DescOffset"`
	ImageOffset int    `json:"ImageOffset"`
	BootDelayMs int    `json:"BootDelayMs"`
	ConnType    string `json:"ConnType"`
	ConnString  string `json:"ConnString"`
}

func (p *Profile) String() string {
	return fmt.Sprintf("name=%s partition=%s conntype=%s connstring=%s",
		p.Name, p.Partition, p.ConnType, p.ConnString)
}

func NewProfile() *Profile {
	return &Profile{}
}

type ProfileMgr struct {
	profiles map[string]*Profile
}

func NewProfileMgr() (*ProfileMgr, error) {
	pm := &ProfileMgr{
		profiles: map[string]*Profile{},
	}

	if err := pm.Init(); err != nil {
		return nil, err
	}

	return pm, nil
}

func profileCfgFilename() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "cannot locate home directory")
	}

	return filepath.Join(dir, btutil.ToolInfo.CfgFilename), nil
}

func (pm *ProfileMgr) Init() error {
	filename, err := profileCfgFilename()
	if err != nil {
		return err
	}

	log.Debugf("Reading device profiles from %s", filename)
	blob, err := ioutil.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "cannot read device profiles")
	}

	var profiles []*Profile
	if err := json.Unmarshal(blob, &profiles); err != nil {
		return errors.Wrapf(err, "error reading device profile config (%s)",
			filename)
	}

	for _, p := range profiles {
		pm.profiles[p.Name] = p
	}

	return nil
}

func (pm *ProfileMgr) GetProfileList() ([]*Profile, error) {
	pList := make([]*Profile, 0, len(pm.profiles))
	for _, p := range pm.profiles {
		pList = append(pList, p)
	}

	sort.Slice(pList, func(i, j int) bool {
		return pList[i].Name < pList[j].Name
	})
	return pList, nil
}

func (pm *ProfileMgr) save() error {
	list, _ := pm.GetProfileList()
	b, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return errors.Wrap(err, "cannot encode device profiles")
	}

	filename, err := profileCfgFilename()
	if err != nil {
		return err
	}

	if err := ioutil.WriteFile(filename, b, 0644); err != nil {
		return errors.Wrap(err, "cannot write device profiles")
	}

	return nil
}

func (pm *ProfileMgr) DeleteProfile(name string) error {
	if pm.profiles[name] == nil {
		return fmt.Errorf("device profile \"%s\" doesn't exist", name)
	}

	delete(pm.profiles, name)
	return pm.save()
}

func (pm *ProfileMgr) AddProfile(p *Profile) error {
	pm.profiles[p.Name] = p
	return pm.save()
}

func (pm *ProfileMgr) GetProfile(name string) (*Profile, error) {
	p := pm.profiles[name]
	if p == nil {
		return nil, fmt.Errorf("device profile \"%s\" doesn't exist", name)
	}

	return p, nil
}

var globalProfileMgr *ProfileMgr

func GlobalProfileMgr() *ProfileMgr {
	if globalProfileMgr == nil {
		panic("device profile manager not initialized")
	}
	return globalProfileMgr
}

func InitGlobalProfileMgr() error {
	if globalProfileMgr != nil {
		return fmt.Errorf("device profile manager initialized twice")
	}

	var err error
	globalProfileMgr, err = NewProfileMgr()
	if err != nil {
		return err
	}

	return nil
}
