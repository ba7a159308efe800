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

package hashjoin

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/container/types"
	"github.com/matrixorigin/hashjoin/pkg/vdbe/hashtable"
)

// build side: (id, name)
func buildRows() [][]types.Value {
	return [][]types.Value{
		{types.IntValue(1), types.TextValue("a")},
		{types.IntValue(2), types.TextValue("b")},
		{types.IntValue(2), types.TextValue("b2")},
		{types.IntValue(4), types.TextValue("d")},
		{types.NullValue(), types.TextValue("n")},
	}
}

// probe side: (fk, qty)
func probeRows() [][]types.Value {
	return [][]types.Value{
		{types.IntValue(2), types.IntValue(10)},
		{types.IntValue(3), types.IntValue(20)},
		{types.IntValue(1), types.IntValue(30)},
		{types.NullValue(), types.IntValue(40)},
	}
}

func newOperator(t *testing.T, typ JoinType, workers int) *Operator {
	cfg := hashtable.DefaultConfig()
	cfg.InitialBuckets = 8
	cfg.Nulls = hashtable.NullsNeverEqual
	op, err := New(context.Background(), Argument{
		JoinType:      typ,
		BuildKeys:     []int{0},
		ProbeKeys:     []int{0},
		Config:        cfg,
		Workers:       workers,
		PartitionBits: 2,
	})
	require.NoError(t, err)
	return op
}

func render(r JoinedRow) string {
	probe, build := "-", "-"
	if r.Probe != nil {
		probe = types.TupleString(r.Probe)
	}
	if r.Build != nil {
		build = types.TupleString(r.Build)
	}
	return probe + "|" + build
}

func runJoin(t *testing.T, typ JoinType) []string {
	op := newOperator(t, typ, 0)
	var out []string
	err := op.Run(context.Background(), NewSliceSource(buildRows()), NewSliceSource(probeRows()),
		func(r JoinedRow) error {
			out = append(out, render(r))
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, hashtable.StateClosed, op.ctr.ht.State())
	return out
}

func TestJoinTypes(t *testing.T) {
	tests := []struct {
		typ  JoinType
		want []string
	}{
		{Inner, []string{
			`(2,10)|(2,"b")`,
			`(2,10)|(2,"b2")`,
			`(1,30)|(1,"a")`,
		}},
		{Left, []string{
			`(2,10)|(2,"b")`,
			`(2,10)|(2,"b2")`,
			`(3,20)|-`,
			`(1,30)|(1,"a")`,
			`(NULL,40)|-`,
		}},
		{Right, []string{
			`(2,10)|(2,"b")`,
			`(2,10)|(2,"b2")`,
			`(1,30)|(1,"a")`,
			`-|(4,"d")`,
			`-|(NULL,"n")`,
		}},
		{Semi, []string{`(2,10)|-`, `(1,30)|-`}},
		{Anti, []string{`(3,20)|-`, `(NULL,40)|-`}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			require.Equal(t, tt.want, runJoin(t, tt.typ))
		})
	}
}

func TestNullsEqualJoin(t *testing.T) {
	op, err := New(context.Background(), Argument{
		JoinType:  Inner,
		BuildKeys: []int{0},
		ProbeKeys: []int{0},
		Config:    hashtable.DefaultConfig(),
	})
	require.NoError(t, err)
	var out []string
	require.NoError(t, op.Run(context.Background(), NewSliceSource(buildRows()), NewSliceSource(probeRows()),
		func(r JoinedRow) error {
			out = append(out, render(r))
			return nil
		}))
	require.Contains(t, out, `(NULL,40)|(NULL,"n")`)
}

func TestCompositeKeys(t *testing.T) {
	op, err := New(context.Background(), Argument{
		JoinType:  Inner,
		BuildKeys: []int{1, 0},
		ProbeKeys: []int{0, 1},
		Config:    hashtable.DefaultConfig(),
	})
	require.NoError(t, err)
	build := [][]types.Value{
		{types.IntValue(1), types.TextValue("x")},
		{types.IntValue(2), types.TextValue("x")},
	}
	probe := [][]types.Value{
		{types.TextValue("x"), types.IntValue(2)},
		{types.TextValue("y"), types.IntValue(1)},
	}
	var out []string
	require.NoError(t, op.Run(context.Background(), NewSliceSource(build), NewSliceSource(probe),
		func(r JoinedRow) error {
			out = append(out, render(r))
			return nil
		}))
	require.Equal(t, []string{`("x",2)|(2,"x")`}, out)
}

func TestNewArgumentErrors(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, Argument{BuildKeys: []int{0}, ProbeKeys: []int{0, 1}, Config: hashtable.DefaultConfig()})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	_, err = New(ctx, Argument{Config: hashtable.DefaultConfig()})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	_, err = New(ctx, Argument{JoinType: JoinType(99), BuildKeys: []int{0}, ProbeKeys: []int{0}, Config: hashtable.DefaultConfig()})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	cfg := hashtable.DefaultConfig()
	cfg.InitialBuckets = 0
	_, err = New(ctx, Argument{BuildKeys: []int{0}, ProbeKeys: []int{0}, Config: cfg})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()

	op := newOperator(t, Inner, 0)
	err := op.Build(ctx, NewSliceSource([][]types.Value{{}}))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	require.NoError(t, op.Free())

	op = newOperator(t, Inner, 0)
	require.NoError(t, op.Build(ctx, NewSliceSource(buildRows())))
	require.True(t, moerr.IsMoErrCode(op.Build(ctx, NewSliceSource(nil)), moerr.ErrInvalidState))
	require.NoError(t, op.Free())
	require.NoError(t, op.Free())

	op = newOperator(t, Inner, 0)
	err = op.Probe(ctx, NewSliceSource(probeRows()), func(JoinedRow) error { return nil })
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestBuildMemBudgetExceeded(t *testing.T) {
	cfg := hashtable.DefaultConfig()
	cfg.MemBudget = 100
	op, err := New(context.Background(), Argument{
		JoinType:  Inner,
		BuildKeys: []int{0},
		ProbeKeys: []int{0},
		Config:    cfg,
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, op.Free())
	}()

	rows := make([][]types.Value, 100)
	for i := range rows {
		rows[i] = []types.Value{types.IntValue(int64(i)), types.TextValue("payload")}
	}
	err = op.Build(context.Background(), NewSliceSource(rows))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrMemBudgetExceeded))
	s := op.Stats()
	require.LessOrEqual(t, s.MemUsed, uint64(100))
	require.Greater(t, s.NumEntries, uint64(0))
}

func TestProbeCancel(t *testing.T) {
	op := newOperator(t, Inner, 0)
	defer func() {
		require.NoError(t, op.Free())
	}()
	require.NoError(t, op.Build(context.Background(), NewSliceSource(buildRows())))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := op.Probe(ctx, NewSliceSource(probeRows()), func(JoinedRow) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmitError(t *testing.T) {
	op := newOperator(t, Inner, 0)
	defer func() {
		require.NoError(t, op.Free())
	}()
	require.NoError(t, op.Build(context.Background(), NewSliceSource(buildRows())))
	stop := moerr.NewInternalError(context.Background(), "stop")
	err := op.Probe(context.Background(), NewSliceSource(probeRows()), func(JoinedRow) error { return stop })
	require.Equal(t, stop, err)
}

func TestProbeParallel(t *testing.T) {
	defer leaktest.AfterTest(t)()

	build := make([][]types.Value, 0, 600)
	for i := 0; i < 200; i++ {
		for d := 0; d < 3; d++ {
			build = append(build, []types.Value{types.IntValue(int64(i)), types.TextValue(fmt.Sprintf("b%d.%d", i, d))})
		}
	}
	probe := make([][]types.Value, 0, 500)
	for i := 0; i < 500; i++ {
		probe = append(probe, []types.Value{types.IntValue(int64(i % 250)), types.IntValue(int64(i))})
	}

	for _, typ := range []JoinType{Inner, Left, Right, Semi, Anti} {
		t.Run(typ.String(), func(t *testing.T) {
			collect := func(workers int) []string {
				op := newOperator(t, typ, workers)
				defer func() {
					require.NoError(t, op.Free())
				}()
				require.NoError(t, op.Build(context.Background(), NewSliceSource(build)))
				var out []string
				require.NoError(t, op.ProbeParallel(context.Background(), probe, func(r JoinedRow) error {
					out = append(out, render(r))
					return nil
				}))
				return out
			}
			sequential := collect(1)
			require.NotEmpty(t, sequential)
			require.Equal(t, sequential, collect(4))
			require.Equal(t, sequential, collect(7))
		})
	}
}

func TestProbeParallelBadRow(t *testing.T) {
	defer leaktest.AfterTest(t)()

	op := newOperator(t, Inner, 3)
	defer func() {
		require.NoError(t, op.Free())
	}()
	require.NoError(t, op.Build(context.Background(), NewSliceSource(buildRows())))
	rows := append(probeRows(), []types.Value{})
	err := op.ProbeParallel(context.Background(), rows, func(JoinedRow) error { return nil })
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestJoinTypeParse(t *testing.T) {
	ctx := context.Background()
	for _, typ := range []JoinType{Inner, Left, Right, Semi, Anti} {
		got, err := ParseJoinType(ctx, " "+typ.String()+" ")
		require.NoError(t, err)
		require.Equal(t, typ, got)
	}
	_, err := ParseJoinType(ctx, "full")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
	require.Equal(t, "unknown", JoinType(42).String())
}

func TestString(t *testing.T) {
	buf := new(bytes.Buffer)
	newOperator(t, Semi, 0).String(buf)
	require.Equal(t, "hash_join: semi join", buf.String())
}
