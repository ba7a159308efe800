// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fileservice

import (
	"context"
	"strings"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
)

const (
	memFileServiceBackend  = "MEM"
	diskFileServiceBackend = "DISK"

	defaultName = "SPILL"
)

// Config config to create fileservice
type Config struct {
	// Name file service name. Default is SPILL.
	Name string `toml:"name"`
	// Backend file service backend implementation. [MEM|DISK]. Default is MEM.
	Backend string `toml:"backend"`
	// DataDir used to create fileservice using DISK as the backend
	DataDir string `toml:"data-dir"`
}

// NewService create fileservice by config
func NewService(cfg Config) (FileService, error) {
	if cfg.Name == "" {
		cfg.Name = defaultName
	}
	switch strings.ToUpper(cfg.Backend) {
	case memFileServiceBackend, "":
		return NewMemoryFS(cfg.Name)
	case diskFileServiceBackend:
		if cfg.DataDir == "" {
			return nil, moerr.NewBadConfig(context.TODO(), "fileservice %s: data-dir not set for DISK backend", cfg.Name)
		}
		return NewLocalFS(cfg.Name, cfg.DataDir)
	default:
		return nil, moerr.NewBadConfig(context.TODO(), "fileservice backend %s not supported", cfg.Backend)
	}
}
