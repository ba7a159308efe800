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

package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// T is the tag of a scalar value.
type T uint8

const (
	T_null T = iota
	T_int64
	T_float64
	T_text
	T_blob
)

func (t T) String() string {
	switch t {
	case T_null:
		return "NULL"
	case T_int64:
		return "INTEGER"
	case T_float64:
		return "REAL"
	case T_text:
		return "TEXT"
	case T_blob:
		return "BLOB"
	}
	return fmt.Sprintf("unexpected type %d", uint8(t))
}

// Value is an owned scalar. Text and blob bytes belong to the value and are
// never shared with the caller that built it.
type Value struct {
	typ  T
	num  uint64
	data []byte
}

// ValueRef is a borrowed view of a scalar. Its text and blob bytes alias the
// owner and must not be modified or retained past the owner's lifetime.
type ValueRef struct {
	typ  T
	num  uint64
	data []byte
}

func NullValue() Value {
	return Value{typ: T_null}
}

func IntValue(v int64) Value {
	return Value{typ: T_int64, num: uint64(v)}
}

func FloatValue(v float64) Value {
	return Value{typ: T_float64, num: math.Float64bits(v)}
}

func TextValue(v string) Value {
	return Value{typ: T_text, data: []byte(v)}
}

// BlobValue copies v.
func BlobValue(v []byte) Value {
	data := make([]byte, len(v))
	copy(data, v)
	return Value{typ: T_blob, data: data}
}

func (v Value) Type() T { return v.typ }
func (v Value) IsNull() bool { return v.typ == T_null }
func (v Value) Int() int64 { return int64(v.num) }
func (v Value) Float() float64 { return math.Float64frombits(v.num) }
func (v Value) Bits() uint64 { return v.num }
func (v Value) Text() string { return string(v.data) }
func (v Value) Bytes() []byte { return v.data }
func (v Value) Ref() ValueRef { return ValueRef(v) }
func (v Value) String() string { return v.Ref().String() }

// Equal reports whether v and o carry the same tag and the same bits.
// It is an identity check, not SQL comparison.
func (v Value) Equal(o Value) bool {
	return v.typ == o.typ && v.num == o.num && string(v.data) == string(o.data)
}

// Refs returns borrowed views over values without copying their bytes.
func Refs(values []Value) []ValueRef {
	refs := make([]ValueRef, len(values))
	for i := range values {
		refs[i] = values[i].Ref()
	}
	return refs
}

// CloneValues deep-copies values.
func CloneValues(values []Value) []Value {
	out := make([]Value, len(values))
	for i := range values {
		out[i] = values[i].Ref().ToOwned()
	}
	return out
}

func NullRef() ValueRef { return ValueRef{typ: T_null} }
func IntRef(v int64) ValueRef { return ValueRef{typ: T_int64, num: uint64(v)} }
func FloatRef(v float64) ValueRef { return ValueRef{typ: T_float64, num: math.Float64bits(v)} }
func TextRef(v []byte) ValueRef { return ValueRef{typ: T_text, data: v} }
func BlobRef(v []byte) ValueRef { return ValueRef{typ: T_blob, data: v} }

func (r ValueRef) Type() T { return r.typ }
func (r ValueRef) IsNull() bool { return r.typ == T_null }
func (r ValueRef) Int() int64 { return int64(r.num) }
func (r ValueRef) Float() float64 { return math.Float64frombits(r.num) }
func (r ValueRef) Bits() uint64 { return r.num }
func (r ValueRef) Bytes() []byte { return r.data }

// ToOwned copies the view into an owned Value.
func (r ValueRef) ToOwned() Value {
	v := Value{typ: r.typ, num: r.num}
	if r.data != nil {
		v.data = make([]byte, len(r.data))
		copy(v.data, r.data)
	}
	return v
}

func (r ValueRef) String() string {
	switch r.typ {
	case T_null:
		return "NULL"
	case T_int64:
		return strconv.FormatInt(r.Int(), 10)
	case T_float64:
		return strconv.FormatFloat(r.Float(), 'g', -1, 64)
	case T_text:
		return strconv.Quote(string(r.data))
	case T_blob:
		return fmt.Sprintf("x'%x'", r.data)
	}
	return r.typ.String()
}

// TupleString renders values as (v1,v2,...).
func TupleString(values []Value) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
