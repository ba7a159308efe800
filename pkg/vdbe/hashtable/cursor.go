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

// Cursor walks the entries of one bucket that match a probe key. Cursors
// created by NewCursor only read the table, so several of them may run at
// once while the table is probing.
type Cursor struct {
	table  *HashTable
	bucket *Bucket
	next   int
	hash   uint64
	keys   []types.ValueRef
}

func (c *Cursor) reset(ht *HashTable, keys []types.ValueRef) {
	c.table = ht
	c.hash = HashJoinKey(keys)
	c.bucket = &ht.buckets[ht.bucketIndex(c.hash)]
	c.next = 0
	c.keys = keys
}

// Reset repositions the cursor on a new probe key.
func (c *Cursor) Reset(keys []types.ValueRef) {
	c.table.assertState("cursor reset", StateProbing)
	c.reset(c.table, keys)
}

// Next returns the next matching entry, or nil once the bucket is
// exhausted.
func (c *Cursor) Next() *Entry {
	c.table.assertState("cursor next", StateProbing)
	for c.next < len(c.bucket.entries) {
		e := &c.bucket.entries[c.next]
		c.next++
		if e.matches(c.hash, c.keys, c.table.nulls) {
			return e
		}
	}
	return nil
}

func (c *Cursor) Hash() uint64 {
	return c.hash
}
