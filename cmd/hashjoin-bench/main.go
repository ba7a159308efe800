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

package main

import (
	"context"
	"os"

	btoml "github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matrixorigin/hashjoin/pkg/config"
	"github.com/matrixorigin/hashjoin/pkg/logutil"
	"github.com/matrixorigin/hashjoin/pkg/util/toml"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type overrides struct {
	buildRows int
	probeRows int
	keyRange  int
	joinType  string
	workers   int
	memBudget string
	seed      int64
}

func rootCommand() *cobra.Command {
	var cfgFile string
	var o overrides
	cmd := &cobra.Command{
		Use:          "hashjoin-bench",
		Short:        "Run a hash join over synthetic relations",
		Long:         "Generate a build and a probe relation, join them and print the hash table statistics",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			if err := o.apply(cmd, cfg); err != nil {
				return err
			}
			logutil.SetupMOLogger(&cfg.Log)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := run(ctx, cfg)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), res)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "cfg", "", "toml configuration file")
	flags.IntVar(&o.buildRows, "build-rows", 0, "build side row count")
	flags.IntVar(&o.probeRows, "probe-rows", 0, "probe side row count")
	flags.IntVar(&o.keyRange, "key-range", 0, "keys are drawn from [0, key-range)")
	flags.StringVar(&o.joinType, "join-type", "", "inner, left, right, semi or anti")
	flags.IntVar(&o.workers, "workers", 0, "probe workers")
	flags.StringVar(&o.memBudget, "mem-budget", "", "hash table memory budget, e.g. 64MiB")
	flags.Int64Var(&o.seed, "seed", 0, "random seed")

	cmd.AddCommand(configCommand())
	return cmd
}

func configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return btoml.NewEncoder(cmd.OutOrStdout()).Encode(config.Default())
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// apply copies the flags set on the command line over cfg and validates
// the result again.
func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("build-rows") {
		cfg.Bench.BuildRows = o.buildRows
	}
	if flags.Changed("probe-rows") {
		cfg.Bench.ProbeRows = o.probeRows
	}
	if flags.Changed("key-range") {
		cfg.Bench.KeyRange = o.keyRange
	}
	if flags.Changed("join-type") {
		cfg.Bench.JoinType = o.joinType
	}
	if flags.Changed("workers") {
		cfg.Probe.Workers = o.workers
	}
	if flags.Changed("seed") {
		cfg.Bench.Seed = o.seed
	}
	if flags.Changed("mem-budget") {
		var size toml.ByteSize
		if err := size.UnmarshalText([]byte(o.memBudget)); err != nil {
			return err
		}
		cfg.HashJoin.MemBudget = size
	}
	return cfg.Adjust()
}
