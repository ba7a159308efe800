// Copyright 2021 Matrix Origin
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

package config

import (
	"context"
	"strings"

	btoml "github.com/BurntSushi/toml"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/fileservice"
	"github.com/matrixorigin/hashjoin/pkg/logutil"
	"github.com/matrixorigin/hashjoin/pkg/sql/colexec/hashjoin"
	"github.com/matrixorigin/hashjoin/pkg/util/toml"
	"github.com/matrixorigin/hashjoin/pkg/vdbe/hashtable"
)

var (
	defaultInitialBuckets = 1024
	defaultMemBudget      = toml.ByteSize(64 << 20)
	defaultNumKeys        = 1
	defaultNullEquality   = "equal"
	defaultPartitionBits  = uint(4)
	defaultWorkers        = 4
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultBuildRows      = 100000
	defaultProbeRows      = 100000
	defaultKeyRange       = 50000
	defaultJoinType       = "inner"
)

var nullEqualities = map[string]hashtable.NullEquality{
	"equal": hashtable.NullsEqual,
	"never": hashtable.NullsNeverEqual,
}

// Config hash join engine and bench configuration
type Config struct {
	// HashJoin hash table configuration
	HashJoin struct {
		// InitialBuckets fixed bucket count of the hash table. Default is 1024.
		InitialBuckets int `toml:"initial-buckets"`
		// MemBudget byte ceiling of the build side, e.g. "64MiB". Default is 64MiB.
		MemBudget toml.ByteSize `toml:"mem-budget"`
		// NumKeys join key column count. Default is 1.
		NumKeys int `toml:"num-keys"`
		// NullEquality [equal|never]. Default is equal.
		NullEquality string `toml:"null-equality"`
		// PartitionBits size of the partition histogram logged after build. Default is 4.
		PartitionBits uint `toml:"partition-bits"`
	} `toml:"hash-join"`

	// Probe probe side configuration
	Probe struct {
		// Workers probe worker count. Default is 4.
		Workers int `toml:"workers"`
		// Timeout of one join. Zero means no timeout.
		Timeout toml.Duration `toml:"timeout"`
	} `toml:"probe"`

	Log logutil.LogConfig `toml:"log"`

	// FileService scratch storage of the hash table
	FileService fileservice.Config `toml:"fileservice"`

	// Bench synthetic workload of hashjoin-bench
	Bench struct {
		BuildRows int    `toml:"build-rows"`
		ProbeRows int    `toml:"probe-rows"`
		KeyRange  int    `toml:"key-range"`
		JoinType  string `toml:"join-type"`
		Seed      int64  `toml:"seed"`
	} `toml:"bench"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	c := &Config{}
	if err := c.adjust(); err != nil {
		panic(err)
	}
	return c
}

// Load decodes a toml file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	c := &Config{}
	md, err := btoml.DecodeFile(path, c)
	if err != nil {
		return nil, moerr.NewBadConfig(context.TODO(), "decode %s: %v", path, err)
	}
	if err := c.finish(md); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes toml text. Unknown keys are rejected.
func Parse(data string) (*Config, error) {
	c := &Config{}
	md, err := btoml.Decode(data, c)
	if err != nil {
		return nil, moerr.NewBadConfig(context.TODO(), "decode: %v", err)
	}
	if err := c.finish(md); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) finish(md btoml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return moerr.NewBadConfig(context.TODO(), "unknown keys %s", strings.Join(keys, ", "))
	}
	return c.adjust()
}

func (c *Config) adjust() error {
	if c.HashJoin.InitialBuckets == 0 {
		c.HashJoin.InitialBuckets = defaultInitialBuckets
	}
	if c.HashJoin.InitialBuckets < 0 {
		return moerr.NewBadConfig(context.TODO(), "hash-join.initial-buckets %d", c.HashJoin.InitialBuckets)
	}
	if c.HashJoin.MemBudget == 0 {
		c.HashJoin.MemBudget = defaultMemBudget
	}
	if c.HashJoin.NumKeys == 0 {
		c.HashJoin.NumKeys = defaultNumKeys
	}
	if c.HashJoin.NumKeys < 0 {
		return moerr.NewBadConfig(context.TODO(), "hash-join.num-keys %d", c.HashJoin.NumKeys)
	}
	if c.HashJoin.NullEquality == "" {
		c.HashJoin.NullEquality = defaultNullEquality
	}
	c.HashJoin.NullEquality = strings.ToLower(c.HashJoin.NullEquality)
	if _, ok := nullEqualities[c.HashJoin.NullEquality]; !ok {
		return moerr.NewBadConfig(context.TODO(), "hash-join.null-equality %s not supported", c.HashJoin.NullEquality)
	}
	if c.HashJoin.PartitionBits == 0 {
		c.HashJoin.PartitionBits = defaultPartitionBits
	}
	if c.Probe.Workers <= 0 {
		c.Probe.Workers = defaultWorkers
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.FileService.Backend == "" {
		c.FileService.Backend = "MEM"
	}
	if c.Bench.BuildRows == 0 {
		c.Bench.BuildRows = defaultBuildRows
	}
	if c.Bench.ProbeRows == 0 {
		c.Bench.ProbeRows = defaultProbeRows
	}
	if c.Bench.KeyRange == 0 {
		c.Bench.KeyRange = defaultKeyRange
	}
	if c.Bench.BuildRows < 0 || c.Bench.ProbeRows < 0 || c.Bench.KeyRange < 0 {
		return moerr.NewBadConfig(context.TODO(), "bench sizes must not be negative")
	}
	if c.Bench.JoinType == "" {
		c.Bench.JoinType = defaultJoinType
	}
	if _, err := hashjoin.ParseJoinType(context.TODO(), c.Bench.JoinType); err != nil {
		return moerr.NewBadConfig(context.TODO(), "bench.join-type %s not supported", c.Bench.JoinType)
	}
	return nil
}

// Adjust fills defaults and validates. Call it again after changing fields.
func (c *Config) Adjust() error {
	return c.adjust()
}

// TableConfig converts the hash-join section.
func (c *Config) TableConfig() hashtable.Config {
	return hashtable.Config{
		InitialBuckets: c.HashJoin.InitialBuckets,
		MemBudget:      uint64(c.HashJoin.MemBudget),
		NumKeys:        c.HashJoin.NumKeys,
		Nulls:          nullEqualities[c.HashJoin.NullEquality],
	}
}

func (c *Config) JoinType() hashjoin.JoinType {
	t, _ := hashjoin.ParseJoinType(context.TODO(), c.Bench.JoinType)
	return t
}
