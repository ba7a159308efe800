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

package hashtable

import (
	"context"
	"encoding/binary"
	"math"

	hll "github.com/axiomhq/hyperloglog"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/container/types"
	"github.com/matrixorigin/hashjoin/pkg/fileservice"
	"github.com/matrixorigin/hashjoin/pkg/logutil"
)

const (
	defaultInitialBuckets = 1024
	defaultMemBudget      = 64 << 20
	defaultNumKeys        = 1
)

// maxEntries bounds the entry count so that every Entry.ID fits in a uint32.
var maxEntries uint64 = math.MaxUint32 + 1

type Config struct {
	// InitialBuckets is the fixed size of the bucket array. Power of two
	// sizes place entries with a mask instead of a modulo.
	InitialBuckets int
	// MemBudget is the byte ceiling over the accounted size of all entries.
	// Independently of it, a table holds at most 1<<32 entries.
	MemBudget uint64
	// NumKeys is the number of join key columns.
	NumKeys int
	Nulls   NullEquality
}

func DefaultConfig() Config {
	return Config{
		InitialBuckets: defaultInitialBuckets,
		MemBudget:      defaultMemBudget,
		NumKeys:        defaultNumKeys,
		Nulls:          NullsEqual,
	}
}

func (c Config) Validate(ctx context.Context) error {
	if c.InitialBuckets <= 0 {
		return moerr.NewBadConfig(ctx, "hash table initial buckets must be positive, got %d", c.InitialBuckets)
	}
	if c.NumKeys <= 0 {
		return moerr.NewBadConfig(ctx, "hash table key count must be positive, got %d", c.NumKeys)
	}
	if c.Nulls != NullsEqual && c.Nulls != NullsNeverEqual {
		return moerr.NewBadConfig(ctx, "unknown null equality %d", c.Nulls)
	}
	return nil
}

type State uint8

const (
	StateBuilding State = iota
	StateProbing
	// StateSpilled is reserved for grace hash join. No transition enters it.
	StateSpilled
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "Building"
	case StateProbing:
		return "Probing"
	case StateSpilled:
		return "Spilled"
	case StateClosed:
		return "Closed"
	}
	return "Unknown"
}

// PendingIO is the continuation of an insert that is waiting for spill IO.
type PendingIO struct {
	Wait func(ctx context.Context) error
}

// IOResult is returned by Insert. IO is nil when the insert completed.
type IOResult struct {
	IO *PendingIO
}

func (r IOResult) Done() bool {
	return r.IO == nil
}

// HashTable is a chained hash index over the build side of a hash join.
//
// The table is not safe for concurrent use while Building. Once probing,
// it is read only and independent Cursors may be used from several
// goroutines; Probe and NextMatch share one table cursor and must not.
type HashTable struct {
	ctx     context.Context
	buckets []Bucket
	// mask is len(buckets)-1 if the count is a power of two, else 0.
	mask       uint64
	numEntries uint64
	memUsed    uint64
	memBudget  uint64
	numKeys    int
	nulls      NullEquality
	state      State
	distinct   *hll.Sketch

	fs    fileservice.FileService
	spill *tempFile

	probeKeys   []types.Value
	cursor      Cursor
	cursorValid bool
}

// New allocates the bucket array. fs is kept for spilling and no IO is
// performed.
func New(ctx context.Context, cfg Config, fs fileservice.FileService) (*HashTable, error) {
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	ht := &HashTable{
		ctx:       ctx,
		buckets:   make([]Bucket, cfg.InitialBuckets),
		memBudget: cfg.MemBudget,
		numKeys:   cfg.NumKeys,
		nulls:     cfg.Nulls,
		state:     StateBuilding,
		distinct:  hll.New(),
		fs:        fs,
	}
	if n := uint64(cfg.InitialBuckets); n&(n-1) == 0 {
		ht.mask = n - 1
	}
	return ht, nil
}

func (ht *HashTable) bucketIndex(hash uint64) int {
	if ht.mask != 0 || len(ht.buckets) == 1 {
		return int(hash & ht.mask)
	}
	return int(hash % uint64(len(ht.buckets)))
}

func (ht *HashTable) assertState(op string, want State) {
	if ht.state != want {
		panic(moerr.NewInvalidState(ht.ctx, "hash table %s requires %s, table is %s", op, want, ht.state))
	}
}

// Insert adds a build row. keys must hold NumKeys values. When the entry
// does not fit in the memory budget an ErrMemBudgetExceeded error is
// returned and the table is left untouched.
func (ht *HashTable) Insert(ctx context.Context, keys []types.Value, row types.Record) (IOResult, error) {
	ht.assertState("insert", StateBuilding)
	if len(keys) != ht.numKeys {
		return IOResult{}, moerr.NewInvalidArg(ctx, "hash join key count", len(keys))
	}
	if ht.numEntries >= maxEntries {
		return IOResult{}, moerr.NewNotSupported(ctx, "hash table with more than %d entries", maxEntries)
	}

	e := Entry{
		Hash: hashValues(keys),
		Keys: append([]types.Value(nil), keys...),
		Row:  row,
		ID:   uint32(ht.numEntries),
	}
	size := uint64(e.SizeBytes())
	if ht.memUsed+size > ht.memBudget {
		logutil.WarnCtx(ctx, "hash table memory budget exceeded",
			zap.Uint64("mem-used", ht.memUsed),
			zap.Uint64("entry-size", size),
			zap.Uint64("mem-budget", ht.memBudget),
			zap.Uint64("entries", ht.numEntries))
		return IOResult{}, moerr.NewMemBudgetExceeded(ctx,
			"%s used, %s entry, %s budget, grace hash join is not implemented",
			humanize.IBytes(ht.memUsed), humanize.IBytes(size), humanize.IBytes(ht.memBudget))
	}

	ht.buckets[ht.bucketIndex(e.Hash)].insert(e)
	ht.numEntries++
	ht.memUsed += size

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], e.Hash)
	ht.distinct.Insert(buf[:])
	return IOResult{}, nil
}

// FinalizeBuild ends the build phase. No insert is accepted afterwards.
func (ht *HashTable) FinalizeBuild() {
	ht.assertState("finalize build", StateBuilding)
	ht.state = StateProbing
	logutil.Debug("hash table build finalized", ht.Stats().Fields()...)
}

// Probe returns the first entry matching keys, or nil. A successful probe
// positions the table cursor for NextMatch; any previous position is lost.
func (ht *HashTable) Probe(keys []types.Value) *Entry {
	ht.assertState("probe", StateProbing)
	ht.probeKeys = types.CloneValues(keys)
	ht.cursor.reset(ht, types.Refs(ht.probeKeys))
	e := ht.cursor.Next()
	ht.cursorValid = e != nil
	return e
}

// NextMatch returns the next entry matching the keys of the last successful
// Probe. It keeps returning nil once the chain is exhausted.
func (ht *HashTable) NextMatch() *Entry {
	ht.assertState("next match", StateProbing)
	if !ht.cursorValid {
		return nil
	}
	return ht.cursor.Next()
}

// NewCursor returns an iterator over the entries matching keys that is
// independent of the table cursor and of other Cursors. keys are borrowed.
func (ht *HashTable) NewCursor(keys []types.ValueRef) *Cursor {
	ht.assertState("new cursor", StateProbing)
	c := &Cursor{}
	c.reset(ht, keys)
	return c
}

// FindMatches returns every entry matching keys in insertion order.
func (ht *HashTable) FindMatches(keys []types.ValueRef) []*Entry {
	if len(ht.buckets) == 0 {
		return nil
	}
	hash := HashJoinKey(keys)
	return ht.buckets[ht.bucketIndex(hash)].FindMatches(hash, keys, ht.nulls)
}

// Close releases all entries and removes the spill file, if any. It may be
// called in any state and more than once.
func (ht *HashTable) Close() error {
	if ht.state == StateClosed {
		return nil
	}
	if ht.numEntries > 0 {
		logutil.Debug("hash table closed",
			zap.String("state", ht.state.String()),
			zap.Uint64("entries", ht.numEntries),
			zap.Uint64("mem-used", ht.memUsed))
	}
	ht.state = StateClosed
	ht.buckets = nil
	ht.mask = 0
	ht.numEntries = 0
	ht.memUsed = 0
	ht.distinct = nil
	ht.probeKeys = nil
	ht.cursor = Cursor{}
	ht.cursorValid = false

	spill := ht.spill
	ht.spill = nil
	if spill != nil {
		return spill.remove(ht.ctx)
	}
	return nil
}

func (ht *HashTable) IsEmpty() bool {
	return ht.numEntries == 0
}

func (ht *HashTable) Len() int {
	return int(ht.numEntries)
}

func (ht *HashTable) State() State {
	return ht.state
}

func (ht *HashTable) NumKeys() int {
	return ht.numKeys
}

func (ht *HashTable) Nulls() NullEquality {
	return ht.nulls
}

// Buckets exposes the bucket array for diagnostics. Callers must not
// modify it.
func (ht *HashTable) Buckets() []Bucket {
	return ht.buckets
}
