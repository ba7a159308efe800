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
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/matrixorigin/hashjoin/pkg/config"
	"github.com/matrixorigin/hashjoin/pkg/container/types"
	"github.com/matrixorigin/hashjoin/pkg/fileservice"
	"github.com/matrixorigin/hashjoin/pkg/logutil"
	"github.com/matrixorigin/hashjoin/pkg/sql/colexec/hashjoin"
	"github.com/matrixorigin/hashjoin/pkg/vdbe/hashtable"
)

type result struct {
	joinType   hashjoin.JoinType
	buildRows  int
	probeRows  int
	outputRows int
	buildTime  time.Duration
	probeTime  time.Duration
	stats      hashtable.Stats
}

// generate returns rows of numKeys integer key columns in [0, keyRange)
// followed by a text payload.
func generate(rng *rand.Rand, rows, numKeys, keyRange int, tag string) [][]types.Value {
	out := make([][]types.Value, rows)
	for i := range out {
		row := make([]types.Value, numKeys+1)
		for k := 0; k < numKeys; k++ {
			row[k] = types.IntValue(rng.Int63n(int64(keyRange)))
		}
		row[numKeys] = types.TextValue(tag + "-" + strconv.Itoa(i))
		out[i] = row
	}
	return out
}

func keyColumns(n int) []int {
	cols := make([]int, n)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

func run(ctx context.Context, cfg *config.Config) (*result, error) {
	if cfg.Probe.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Probe.Timeout.Duration)
		defer cancel()
	}
	fs, err := fileservice.NewService(cfg.FileService)
	if err != nil {
		return nil, err
	}

	numKeys := cfg.HashJoin.NumKeys
	op, err := hashjoin.New(ctx, hashjoin.Argument{
		JoinType:      cfg.JoinType(),
		BuildKeys:     keyColumns(numKeys),
		ProbeKeys:     keyColumns(numKeys),
		Config:        cfg.TableConfig(),
		Workers:       cfg.Probe.Workers,
		FS:            fs,
		PartitionBits: cfg.HashJoin.PartitionBits,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := op.Free(); err != nil {
			logutil.Warn("free hash join", zap.Error(err))
		}
	}()

	rng := rand.New(rand.NewSource(cfg.Bench.Seed))
	build := generate(rng, cfg.Bench.BuildRows, numKeys, cfg.Bench.KeyRange, "b")
	probe := generate(rng, cfg.Bench.ProbeRows, numKeys, cfg.Bench.KeyRange, "p")

	res := &result{
		joinType:  cfg.JoinType(),
		buildRows: len(build),
		probeRows: len(probe),
	}
	start := time.Now()
	if err := op.Build(ctx, hashjoin.NewSliceSource(build)); err != nil {
		return nil, err
	}
	res.buildTime = time.Since(start)

	start = time.Now()
	err = op.ProbeParallel(ctx, probe, func(hashjoin.JoinedRow) error {
		res.outputRows++
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.probeTime = time.Since(start)
	res.stats = op.Stats()
	logutil.Info("hash join bench done",
		zap.String("join-type", res.joinType.String()),
		zap.Int("output-rows", res.outputRows),
		zap.Duration("build", res.buildTime),
		zap.Duration("probe", res.probeTime))
	return res, nil
}

func printReport(w io.Writer, res *result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"metric", "value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	s := res.stats
	rows := [][]string{
		{"join type", res.joinType.String()},
		{"build rows", humanize.Comma(int64(res.buildRows))},
		{"probe rows", humanize.Comma(int64(res.probeRows))},
		{"output rows", humanize.Comma(int64(res.outputRows))},
		{"build time", res.buildTime.String()},
		{"probe time", res.probeTime.String()},
		{"buckets", strconv.Itoa(s.NumBuckets)},
		{"entries", strconv.FormatUint(s.NumEntries, 10)},
		{"memory", humanize.IBytes(s.MemUsed) + " / " + humanize.IBytes(s.MemBudget)},
		{"max chain", strconv.Itoa(s.MaxChainLength)},
		{"avg chain", fmt.Sprintf("%.2f", s.AvgChainLength)},
		{"empty buckets", strconv.Itoa(s.NumEmptyBuckets)},
		{"distinct keys", "~" + strconv.FormatUint(s.DistinctKeys, 10)},
	}
	table.AppendBulk(rows)
	table.Render()
}
