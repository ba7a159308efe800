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
	"github.com/matrixorigin/hashjoin/pkg/container/types"
)

// hashSize is the accounted footprint of the cached hash.
const hashSize = 8

// Entry is one build row. Entries are immutable once inserted.
type Entry struct {
	Hash uint64
	Keys []types.Value
	Row  types.Record
	// ID is the insertion ordinal, used by join operators to mark matched
	// build rows. It is not accounted.
	ID uint32
}

func keySize(v types.Value) int {
	switch v.Type() {
	case types.T_null:
		return 1
	case types.T_int64, types.T_float64:
		return 8
	default:
		return len(v.Bytes())
	}
}

// SizeBytes is the accounting estimate charged against the memory budget.
func (e *Entry) SizeBytes() int {
	size := hashSize + e.Row.Len()
	for i := range e.Keys {
		size += keySize(e.Keys[i])
	}
	return size
}

func (e *Entry) matches(hash uint64, keys []types.ValueRef, nulls NullEquality) bool {
	return e.Hash == hash && KeysEqual(e.Keys, keys, nulls)
}

// Bucket is an append only chain of entries.
type Bucket struct {
	entries []Entry
}

func (b *Bucket) insert(e Entry) {
	b.entries = append(b.entries, e)
}

// FindMatches scans the whole chain and returns every matching entry.
func (b *Bucket) FindMatches(hash uint64, keys []types.ValueRef, nulls NullEquality) []*Entry {
	var matches []*Entry
	for i := range b.entries {
		if b.entries[i].matches(hash, keys, nulls) {
			matches = append(matches, &b.entries[i])
		}
	}
	return matches
}

func (b *Bucket) Len() int {
	return len(b.entries)
}

func (b *Bucket) IsEmpty() bool {
	return len(b.entries) == 0
}

func (b *Bucket) SizeBytes() int {
	size := 0
	for i := range b.entries {
		size += b.entries[i].SizeBytes()
	}
	return size
}

// Entry returns the i-th entry in insertion order.
func (b *Bucket) Entry(i int) *Entry {
	return &b.entries[i]
}
