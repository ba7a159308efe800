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
	"context"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/container/types"
	"github.com/matrixorigin/hashjoin/pkg/fileservice"
	"github.com/matrixorigin/hashjoin/pkg/vdbe/hashtable"
)

type JoinType uint8

const (
	Inner JoinType = iota
	// Left emits probe rows without a match with a nil build side.
	Left
	// Right emits build rows that matched no probe row after probing.
	Right
	Semi
	Anti
)

var joinTypeNames = map[JoinType]string{
	Inner: "inner",
	Left:  "left",
	Right: "right",
	Semi:  "semi",
	Anti:  "anti",
}

func (t JoinType) String() string {
	if name, ok := joinTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

func ParseJoinType(ctx context.Context, s string) (JoinType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range joinTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, moerr.NewInvalidArg(ctx, "join type", s)
}

// RowSource yields rows one at a time. The end of input is reported with
// moerr.GetOkExpectedEOF().
type RowSource interface {
	Next(ctx context.Context) ([]types.Value, error)
}

type SliceSource struct {
	rows [][]types.Value
	pos  int
}

func NewSliceSource(rows [][]types.Value) *SliceSource {
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next(ctx context.Context) ([]types.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		return nil, moerr.GetOkExpectedEOF()
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// JoinedRow is one output row. Build is nil for unmatched probe rows of a
// left join, Probe is nil for unmatched build rows of a right join. Semi
// and anti joins only fill Probe.
type JoinedRow struct {
	Probe []types.Value
	Build []types.Value
}

type Argument struct {
	JoinType JoinType
	// BuildKeys and ProbeKeys are the column positions of the equi-join
	// keys, pairwise.
	BuildKeys []int
	ProbeKeys []int
	Config    hashtable.Config
	// Workers bounds ProbeParallel. Zero or one probes sequentially.
	Workers int
	// FS backs the hash table spill slot. It may be nil.
	FS fileservice.FileService
	// PartitionBits sizes the partition histogram logged after the build.
	PartitionBits uint
}

type container struct {
	ht      *hashtable.HashTable
	keys    []types.Value
	matched *roaring.Bitmap
}

type Operator struct {
	arg Argument
	ctr container
}
