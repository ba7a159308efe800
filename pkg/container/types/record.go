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
	"encoding/binary"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
)

/*
 * Record is an immutable encoded row. The layout is
 *
 *    uvarint(column count) | serial type per column (uvarint) | body
 *
 * serial types:
 *    0           NULL, no body bytes
 *    6           INTEGER, 8 bytes big endian
 *    7           REAL, 8 bytes big endian IEEE 754 bits
 *    N*2+12      BLOB of N bytes
 *    N*2+13      TEXT of N bytes
 */
type Record struct {
	payload []byte
}

const (
	serialNull  = 0
	serialInt   = 6
	serialFloat = 7
	serialBlob  = 12
	serialText  = 13
)

// NewRecord encodes values into a record.
func NewRecord(values []Value) Record {
	size := binary.MaxVarintLen64
	for _, v := range values {
		size += binary.MaxVarintLen64 + len(v.data)
		if v.typ == T_int64 || v.typ == T_float64 {
			size += 8
		}
	}
	buf := make([]byte, 0, size)
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	for _, v := range values {
		buf = binary.AppendUvarint(buf, serialType(v))
	}
	for _, v := range values {
		switch v.typ {
		case T_int64, T_float64:
			buf = binary.BigEndian.AppendUint64(buf, v.num)
		case T_text, T_blob:
			buf = append(buf, v.data...)
		}
	}
	return Record{payload: buf}
}

// RecordFromPayload wraps an already encoded payload. The payload is not
// copied and not validated until Values is called.
func RecordFromPayload(payload []byte) Record {
	return Record{payload: payload}
}

func serialType(v Value) uint64 {
	switch v.typ {
	case T_int64:
		return serialInt
	case T_float64:
		return serialFloat
	case T_text:
		return uint64(len(v.data))*2 + serialText
	case T_blob:
		return uint64(len(v.data))*2 + serialBlob
	}
	return serialNull
}

// Payload returns the encoded bytes.
func (r Record) Payload() []byte {
	return r.payload
}

// Len returns the encoded byte length.
func (r Record) Len() int {
	return len(r.payload)
}

// Values decodes the record.
func (r Record) Values() ([]Value, error) {
	buf := r.payload
	count, n := binary.Uvarint(buf)
	if n <= 0 || count > uint64(len(buf)) {
		return nil, moerr.NewInvalidInputNoCtx("corrupt record header")
	}
	buf = buf[n:]
	serials := make([]uint64, count)
	for i := range serials {
		st, n := binary.Uvarint(buf)
		if n <= 0 {
			return nil, moerr.NewInvalidInputNoCtx("corrupt record serial type at column %d", i)
		}
		serials[i] = st
		buf = buf[n:]
	}
	values := make([]Value, count)
	for i, st := range serials {
		switch {
		case st == serialNull:
			values[i] = NullValue()
		case st == serialInt || st == serialFloat:
			if len(buf) < 8 {
				return nil, moerr.NewInvalidInputNoCtx("truncated record at column %d", i)
			}
			typ := T_int64
			if st == serialFloat {
				typ = T_float64
			}
			values[i] = Value{typ: typ, num: binary.BigEndian.Uint64(buf)}
			buf = buf[8:]
		case st >= serialBlob:
			size := (st - serialBlob) / 2
			if uint64(len(buf)) < size {
				return nil, moerr.NewInvalidInputNoCtx("truncated record at column %d", i)
			}
			data := make([]byte, size)
			copy(data, buf[:size])
			typ := T_blob
			if st%2 == 1 {
				typ = T_text
			}
			values[i] = Value{typ: typ, data: data}
			buf = buf[size:]
		default:
			return nil, moerr.NewInvalidInputNoCtx("unknown serial type %d at column %d", st, i)
		}
	}
	if len(buf) != 0 {
		return nil, moerr.NewInvalidInputNoCtx("%d trailing bytes in record", len(buf))
	}
	return values, nil
}

func (r Record) String() string {
	values, err := r.Values()
	if err != nil {
		return err.Error()
	}
	return TupleString(values)
}
