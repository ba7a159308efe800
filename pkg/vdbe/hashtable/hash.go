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
	"bytes"

	"github.com/matrixorigin/hashjoin/pkg/container/types"
)

// FNV-1a 64 bit parameters.
const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
)

const negativeZeroBits uint64 = 1 << 63

// NullEquality decides whether two Null key columns match.
type NullEquality uint8

const (
	// NullsEqual treats Null as equal to Null.
	NullsEqual NullEquality = iota
	// NullsNeverEqual follows SQL: a Null key column never matches.
	NullsNeverEqual
)

func (n NullEquality) String() string {
	switch n {
	case NullsEqual:
		return "equal"
	case NullsNeverEqual:
		return "never"
	}
	return "unknown"
}

// HashJoinKey folds every value of the tuple into one FNV-1a accumulator.
//
//	Null           one zero byte
//	Integer/Float  8 little endian bytes of the bit pattern
//	Text/Blob      raw bytes
//
// -0.0 is folded as +0.0 so that keys equal under IEEE == share a bucket.
func HashJoinKey(keys []types.ValueRef) uint64 {
	h := fnvOffsetBasis
	for i := range keys {
		h = hashValue(h, keys[i])
	}
	return h
}

func hashValues(keys []types.Value) uint64 {
	h := fnvOffsetBasis
	for i := range keys {
		h = hashValue(h, keys[i].Ref())
	}
	return h
}

func hashValue(h uint64, v types.ValueRef) uint64 {
	switch v.Type() {
	case types.T_null:
		h *= fnvPrime
	case types.T_int64, types.T_float64:
		bits := v.Bits()
		if v.Type() == types.T_float64 && bits == negativeZeroBits {
			bits = 0
		}
		for i := 0; i < 8; i++ {
			h ^= bits & 0xff
			h *= fnvPrime
			bits >>= 8
		}
	default:
		for _, b := range v.Bytes() {
			h ^= uint64(b)
			h *= fnvPrime
		}
	}
	return h
}

// ValuesEqual compares two scalars positionally. Values of different types
// never match. Floats use IEEE ==, so NaN matches nothing.
func ValuesEqual(a, b types.ValueRef, nulls NullEquality) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case types.T_null:
		return nulls == NullsEqual
	case types.T_int64:
		return a.Bits() == b.Bits()
	case types.T_float64:
		return a.Float() == b.Float()
	default:
		return bytes.Equal(a.Bytes(), b.Bytes())
	}
}

// KeysEqual compares a stored key tuple with a probe tuple.
func KeysEqual(a []types.Value, b []types.ValueRef, nulls NullEquality) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValuesEqual(a[i].Ref(), b[i], nulls) {
			return false
		}
	}
	return true
}

func KeyRefsEqual(a, b []types.ValueRef, nulls NullEquality) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValuesEqual(a[i], b[i], nulls) {
			return false
		}
	}
	return true
}
