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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueAccessors(t *testing.T) {
	require.True(t, NullValue().IsNull())
	require.Equal(t, T_null, NullValue().Type())
	require.Equal(t, int64(-7), IntValue(-7).Int())
	require.Equal(t, 1.5, FloatValue(1.5).Float())
	require.Equal(t, math.Float64bits(1.5), FloatValue(1.5).Bits())
	require.Equal(t, "abc", TextValue("abc").Text())
	require.Equal(t, []byte{1, 2}, BlobValue([]byte{1, 2}).Bytes())
}

func TestBlobValueCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	v := BlobValue(src)
	src[0] = 9
	require.Equal(t, byte(1), v.Bytes()[0])
}

func TestRefAliasesAndToOwnedCopies(t *testing.T) {
	v := TextValue("hello")
	ref := v.Ref()
	require.Equal(t, T_text, ref.Type())
	require.Equal(t, &v.Bytes()[0], &ref.Bytes()[0])

	owned := ref.ToOwned()
	require.True(t, owned.Equal(v))
	require.NotEqual(t, &v.Bytes()[0], &owned.Bytes()[0])

	refs := Refs([]Value{IntValue(1), v})
	require.Len(t, refs, 2)
	require.Equal(t, int64(1), refs[0].Int())

	clones := CloneValues([]Value{v})
	require.True(t, clones[0].Equal(v))
	require.NotEqual(t, &v.Bytes()[0], &clones[0].Bytes()[0])
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NullValue(), "NULL"},
		{IntValue(42), "42"},
		{FloatValue(2.5), "2.5"},
		{TextValue("a"), `"a"`},
		{BlobValue([]byte{0xab}), "x'ab'"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.v.String())
	}
	require.Equal(t, `(1,"x",NULL)`, TupleString([]Value{IntValue(1), TextValue("x"), NullValue()}))
	require.Equal(t, "BLOB", T_blob.String())
}
