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
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/config"
	"github.com/matrixorigin/hashjoin/pkg/container/types"
	"github.com/matrixorigin/hashjoin/pkg/sql/colexec/hashjoin"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Bench.BuildRows = 200
	cfg.Bench.ProbeRows = 300
	cfg.Bench.KeyRange = 50
	cfg.Bench.Seed = 1
	cfg.HashJoin.InitialBuckets = 16
	return cfg
}

func TestGenerate(t *testing.T) {
	rows := generate(rand.New(rand.NewSource(1)), 10, 2, 5, "b")
	require.Len(t, rows, 10)
	for _, row := range rows {
		require.Len(t, row, 3)
		require.GreaterOrEqual(t, row[0].Int(), int64(0))
		require.Less(t, row[1].Int(), int64(5))
		require.Equal(t, types.T_text, row[2].Type())
	}
	require.Equal(t, []int{0, 1, 2}, keyColumns(3))
}

func TestRunInnerMatchesNestedLoop(t *testing.T) {
	cfg := smallConfig()
	res, err := run(context.Background(), cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(cfg.Bench.Seed))
	build := generate(rng, cfg.Bench.BuildRows, 1, cfg.Bench.KeyRange, "b")
	probe := generate(rng, cfg.Bench.ProbeRows, 1, cfg.Bench.KeyRange, "p")
	want := 0
	for _, p := range probe {
		for _, b := range build {
			if p[0].Int() == b[0].Int() {
				want++
			}
		}
	}
	require.Equal(t, want, res.outputRows)
	require.Equal(t, uint64(cfg.Bench.BuildRows), res.stats.NumEntries)
	require.Equal(t, 16, res.stats.NumBuckets)

	var buf bytes.Buffer
	printReport(&buf, res)
	require.Contains(t, buf.String(), "distinct keys")
	require.Contains(t, buf.String(), "inner")
}

func TestRunBudgetExceeded(t *testing.T) {
	cfg := smallConfig()
	cfg.HashJoin.MemBudget = 256
	_, err := run(context.Background(), cfg)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrMemBudgetExceeded))
}

func TestRootCommand(t *testing.T) {
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--build-rows", "50", "--probe-rows", "50", "--key-range", "10",
		"--join-type", "semi", "--workers", "2", "--mem-budget", "1MiB"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), hashjoin.Semi.String())

	cmd = rootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--join-type", "full"})
	require.Error(t, cmd.Execute())
}

func TestConfigCommand(t *testing.T) {
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "[hash-join]")
	require.Contains(t, out.String(), `mem-budget = "64 MiB"`)

	cfg, err := config.Parse(out.String())
	require.NoError(t, err)
	require.Equal(t, config.Default().TableConfig(), cfg.TableConfig())
}
