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
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type Stats struct {
	NumBuckets int
	NumEntries uint64
	MemUsed    uint64
	MemBudget  uint64
	Spilled    bool
	// chain lengths over non-empty buckets
	MaxChainLength  int
	AvgChainLength  float64
	NumEmptyBuckets int
	// DistinctKeys is a HyperLogLog estimate of distinct key hashes.
	DistinctKeys uint64
}

// Stats walks the bucket array. It never changes the table.
func (ht *HashTable) Stats() Stats {
	s := Stats{
		NumBuckets: len(ht.buckets),
		NumEntries: ht.numEntries,
		MemUsed:    ht.memUsed,
		MemBudget:  ht.memBudget,
		Spilled:    ht.state == StateSpilled,
	}
	total, nonEmpty := 0, 0
	for i := range ht.buckets {
		n := ht.buckets[i].Len()
		if n == 0 {
			s.NumEmptyBuckets++
			continue
		}
		nonEmpty++
		total += n
		if n > s.MaxChainLength {
			s.MaxChainLength = n
		}
	}
	if nonEmpty > 0 {
		s.AvgChainLength = float64(total) / float64(nonEmpty)
	}
	if ht.distinct != nil && ht.numEntries > 0 {
		s.DistinctKeys = ht.distinct.Estimate()
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("buckets=%d entries=%d mem=%s/%s spilled=%v max-chain=%d avg-chain=%.2f empty=%d distinct~%d",
		s.NumBuckets, s.NumEntries, humanize.IBytes(s.MemUsed), humanize.IBytes(s.MemBudget),
		s.Spilled, s.MaxChainLength, s.AvgChainLength, s.NumEmptyBuckets, s.DistinctKeys)
}

// Fields renders the snapshot as log fields.
func (s Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("buckets", s.NumBuckets),
		zap.Uint64("entries", s.NumEntries),
		zap.Uint64("mem-used", s.MemUsed),
		zap.Uint64("mem-budget", s.MemBudget),
		zap.Bool("spilled", s.Spilled),
		zap.Int("max-chain", s.MaxChainLength),
		zap.Float64("avg-chain", s.AvgChainLength),
		zap.Int("empty-buckets", s.NumEmptyBuckets),
		zap.Uint64("distinct-keys", s.DistinctKeys),
	}
}
