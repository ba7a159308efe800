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
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/container/types"
	"github.com/matrixorigin/hashjoin/pkg/logutil"
	"github.com/matrixorigin/hashjoin/pkg/vdbe/hashtable"
)

const opName = "hash_join"

func (op *Operator) String(buf *bytes.Buffer) {
	buf.WriteString(opName)
	buf.WriteString(": ")
	buf.WriteString(op.arg.JoinType.String())
	buf.WriteString(" join")
}

func New(ctx context.Context, arg Argument) (*Operator, error) {
	if len(arg.BuildKeys) == 0 || len(arg.BuildKeys) != len(arg.ProbeKeys) {
		return nil, moerr.NewInvalidInput(ctx, "hash join needs matching build and probe keys, got %d and %d",
			len(arg.BuildKeys), len(arg.ProbeKeys))
	}
	if _, ok := joinTypeNames[arg.JoinType]; !ok {
		return nil, moerr.NewInvalidArg(ctx, "join type", arg.JoinType)
	}
	arg.Config.NumKeys = len(arg.BuildKeys)
	if err := arg.Config.Validate(ctx); err != nil {
		return nil, err
	}
	return &Operator{arg: arg}, nil
}

func isEOF(err error) bool {
	return moerr.IsMoErrCode(err, moerr.OkExpectedEOF)
}

func extractKeys(ctx context.Context, row []types.Value, cols []int, keys []types.Value) error {
	for i, c := range cols {
		if c < 0 || c >= len(row) {
			return moerr.NewInvalidInput(ctx, "key column %d out of range for a row of %d columns", c, len(row))
		}
		keys[i] = row[c]
	}
	return nil
}

// Build drains src into the hash table and finalizes it. A budget error
// is returned unchanged and the join must be abandoned.
func (op *Operator) Build(ctx context.Context, src RowSource) error {
	if op.ctr.ht != nil {
		return moerr.NewInvalidState(ctx, "hash join is already built")
	}
	ht, err := hashtable.New(ctx, op.arg.Config, op.arg.FS)
	if err != nil {
		return err
	}
	ctr := &op.ctr
	ctr.ht = ht
	ctr.keys = make([]types.Value, len(op.arg.BuildKeys))
	if op.arg.JoinType == Right {
		ctr.matched = roaring.New()
	}

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := src.Next(ctx)
		if isEOF(err) {
			break
		}
		if err != nil {
			return err
		}
		if err := extractKeys(ctx, row, op.arg.BuildKeys, ctr.keys); err != nil {
			return err
		}
		res, err := ht.Insert(ctx, ctr.keys, types.NewRecord(row))
		if err != nil {
			logutil.ErrorCtx(ctx, "hash join build aborted", append(ht.Stats().Fields(), zap.Error(err))...)
			return err
		}
		if !res.Done() {
			if err := res.IO.Wait(ctx); err != nil {
				return err
			}
		}
	}
	ht.FinalizeBuild()
	logutil.DebugCtx(ctx, "hash join build done",
		zap.Int("rows", ht.Len()),
		logutil.Elapsed(time.Since(start)),
		zap.Ints("partitions", ht.PartitionHistogram(op.arg.PartitionBits)))
	return nil
}

func (op *Operator) table(ctx context.Context) (*hashtable.HashTable, error) {
	if op.ctr.ht == nil || op.ctr.ht.State() != hashtable.StateProbing {
		return nil, moerr.NewInvalidState(ctx, "hash join probe before build")
	}
	return op.ctr.ht, nil
}

// Probe joins every row of src against the build side. Rows are emitted
// in probe order, then the unmatched build rows of a right join.
func (op *Operator) Probe(ctx context.Context, src RowSource, emit func(JoinedRow) error) error {
	ht, err := op.table(ctx)
	if err != nil {
		return err
	}
	keys := make([]types.Value, len(op.arg.ProbeKeys))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := src.Next(ctx)
		if isEOF(err) {
			break
		}
		if err != nil {
			return err
		}
		if err := extractKeys(ctx, row, op.arg.ProbeKeys, keys); err != nil {
			return err
		}
		if err := op.joinRow(row, ht.Probe(keys), ht.NextMatch, op.ctr.matched, emit); err != nil {
			return err
		}
	}
	return op.emitUnmatched(emit)
}

type probePart struct {
	rows    [][]types.Value
	out     []JoinedRow
	matched *roaring.Bitmap
	err     error
}

// ProbeParallel splits rows into contiguous parts probed by a worker pool,
// each worker holding its own cursor. Output order is the same as Probe.
func (op *Operator) ProbeParallel(ctx context.Context, rows [][]types.Value, emit func(JoinedRow) error) error {
	ht, err := op.table(ctx)
	if err != nil {
		return err
	}
	workers := op.arg.Workers
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers <= 1 {
		return op.Probe(ctx, NewSliceSource(rows), emit)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	size := (len(rows) + workers - 1) / workers
	parts := make([]probePart, 0, workers)
	for lo := 0; lo < len(rows); lo += size {
		hi := lo + size
		if hi > len(rows) {
			hi = len(rows)
		}
		parts = append(parts, probePart{rows: rows[lo:hi]})
	}

	var wg sync.WaitGroup
	for i := range parts {
		part := &parts[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			part.err = op.probePart(ctx, ht, part)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()

	for i := range parts {
		if parts[i].err != nil {
			return parts[i].err
		}
	}
	for i := range parts {
		if parts[i].matched != nil {
			op.ctr.matched.Or(parts[i].matched)
		}
		for _, r := range parts[i].out {
			if err := emit(r); err != nil {
				return err
			}
		}
	}
	return op.emitUnmatched(emit)
}

func (op *Operator) probePart(ctx context.Context, ht *hashtable.HashTable, part *probePart) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = moerr.ConvertPanicError(ctx, r)
		}
	}()
	if op.arg.JoinType == Right {
		part.matched = roaring.New()
	}
	keys := make([]types.Value, len(op.arg.ProbeKeys))
	refs := make([]types.ValueRef, len(keys))
	collect := func(r JoinedRow) error {
		part.out = append(part.out, r)
		return nil
	}
	var cursor *hashtable.Cursor
	for _, row := range part.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractKeys(ctx, row, op.arg.ProbeKeys, keys); err != nil {
			return err
		}
		for i := range keys {
			refs[i] = keys[i].Ref()
		}
		if cursor == nil {
			cursor = ht.NewCursor(refs)
		} else {
			cursor.Reset(refs)
		}
		if err := op.joinRow(row, cursor.Next(), cursor.Next, part.matched, collect); err != nil {
			return err
		}
	}
	return nil
}

func (op *Operator) joinRow(row []types.Value, first *hashtable.Entry, next func() *hashtable.Entry,
	matched *roaring.Bitmap, emit func(JoinedRow) error) error {
	switch op.arg.JoinType {
	case Semi:
		if first != nil {
			return emit(JoinedRow{Probe: row})
		}
		return nil
	case Anti:
		if first == nil {
			return emit(JoinedRow{Probe: row})
		}
		return nil
	}

	if first == nil {
		if op.arg.JoinType == Left {
			return emit(JoinedRow{Probe: row})
		}
		return nil
	}
	for e := first; e != nil; e = next() {
		build, err := e.Row.Values()
		if err != nil {
			return err
		}
		if matched != nil {
			matched.Add(e.ID)
		}
		if err := emit(JoinedRow{Probe: row, Build: build}); err != nil {
			return err
		}
	}
	return nil
}

// emitUnmatched emits, in build order, the build rows no probe row matched.
func (op *Operator) emitUnmatched(emit func(JoinedRow) error) error {
	if op.arg.JoinType != Right {
		return nil
	}
	ht := op.ctr.ht
	entries := make([]*hashtable.Entry, ht.Len())
	buckets := ht.Buckets()
	for i := range buckets {
		for j := 0; j < buckets[i].Len(); j++ {
			e := buckets[i].Entry(j)
			entries[e.ID] = e
		}
	}
	unmatched := roaring.Flip(op.ctr.matched, 0, uint64(len(entries)))
	it := unmatched.Iterator()
	for it.HasNext() {
		build, err := entries[it.Next()].Row.Values()
		if err != nil {
			return err
		}
		if err := emit(JoinedRow{Build: build}); err != nil {
			return err
		}
	}
	return nil
}

// Run builds from build, probes with probe and frees the table.
func (op *Operator) Run(ctx context.Context, build, probe RowSource, emit func(JoinedRow) error) error {
	defer func() {
		if err := op.Free(); err != nil {
			logutil.WarnCtx(ctx, "hash join free failed", zap.Error(err))
		}
	}()
	if err := op.Build(ctx, build); err != nil {
		return err
	}
	return op.Probe(ctx, probe, emit)
}

// Free closes the hash table. The operator cannot be built again.
func (op *Operator) Free() error {
	if op.ctr.ht == nil {
		return nil
	}
	op.ctr.keys = nil
	op.ctr.matched = nil
	return op.ctr.ht.Close()
}

func (op *Operator) Stats() hashtable.Stats {
	if op.ctr.ht == nil {
		return hashtable.Stats{}
	}
	return op.ctr.ht.Stats()
}
