// Copyright 2022 Matrix Origin
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

package fileservice

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
)

func testFileService(
	t *testing.T,
	newFS func(name string) FileService,
) {

	t.Run("basic", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS("basic")

		err := fs.Write(ctx, IOVector{
			FilePath: "foo",
			Entries: []IOEntry{
				{
					Offset: 4,
					Size:   4,
					Data:   []byte("5678"),
				},
				{
					Offset: 0,
					Size:   4,
					Data:   []byte("1234"),
				},
				{
					Offset: 8,
					Size:   3,
					Data:   []byte("9ab"),
				},
			},
		})
		assert.Nil(t, err)

		buf := make([]byte, 4)
		vec := IOVector{
			FilePath: "foo",
			Entries: []IOEntry{
				0: {
					Offset: 2,
					Size:   2,
				},
				1: {
					Offset: 2,
					Size:   4,
					Data:   buf,
				},
				2: {
					Offset: 7,
					Size:   1,
				},
				3: {
					Offset: 0,
					Size:   -1,
				},
			},
		}
		err = fs.Read(ctx, &vec)
		assert.Nil(t, err)
		assert.Equal(t, []byte("34"), vec.Entries[0].Data)
		assert.Equal(t, []byte("3456"), vec.Entries[1].Data)
		assert.Equal(t, []byte("3456"), buf)
		assert.Equal(t, []byte("8"), vec.Entries[2].Data)
		assert.Equal(t, []byte("123456789ab"), vec.Entries[3].Data)
		assert.Equal(t, int64(11), vec.Entries[3].Size)
	})

	t.Run("write existed", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS("existed")
		vec := IOVector{
			FilePath: "foo",
			Entries: []IOEntry{
				{Offset: 0, Size: 1, Data: []byte("a")},
			},
		}
		assert.Nil(t, fs.Write(ctx, vec))
		err := fs.Write(ctx, vec)
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrFileAlreadyExists))
	})

	t.Run("write with hole", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS("hole")
		err := fs.Write(ctx, IOVector{
			FilePath: "foo",
			Entries: []IOEntry{
				{Offset: 1, Size: 1, Data: []byte("a")},
			},
		})
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrSizeNotMatch))
	})

	t.Run("read errors", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS("read")
		vec := IOVector{
			FilePath: "missing",
			Entries:  []IOEntry{{Offset: 0, Size: 1}},
		}
		assert.True(t, moerr.IsMoErrCode(fs.Read(ctx, &vec), moerr.ErrFileNotFound))

		assert.Nil(t, fs.Write(ctx, IOVector{
			FilePath: "short",
			Entries:  []IOEntry{{Offset: 0, Size: 2, Data: []byte("ab")}},
		}))
		vec = IOVector{
			FilePath: "short",
			Entries:  []IOEntry{{Offset: 1, Size: 5}},
		}
		assert.True(t, moerr.IsMoErrCode(fs.Read(ctx, &vec), moerr.ErrUnexpectedEOF))
		vec = IOVector{
			FilePath: "short",
			Entries:  []IOEntry{{Offset: 3, Size: 1}},
		}
		assert.True(t, moerr.IsMoErrCode(fs.Read(ctx, &vec), moerr.ErrEmptyRange))
	})

	t.Run("list and delete", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS("list")
		for i := 0; i < 3; i++ {
			assert.Nil(t, fs.Write(ctx, IOVector{
				FilePath: fmt.Sprintf("spill/%d.tmp", i),
				Entries:  []IOEntry{{Offset: 0, Size: int64(i + 1), Data: make([]byte, i+1)}},
			}))
		}
		assert.Nil(t, fs.Write(ctx, IOVector{
			FilePath: "top",
			Entries:  []IOEntry{{Offset: 0, Size: 1, Data: []byte("x")}},
		}))

		entries, err := fs.List(ctx, "spill")
		assert.Nil(t, err)
		assert.Equal(t, 3, len(entries))
		for i, entry := range entries {
			assert.Equal(t, fmt.Sprintf("%d.tmp", i), entry.Name)
			assert.Equal(t, int64(i+1), entry.Size)
			assert.False(t, entry.IsDir)
		}

		entries, err = fs.List(ctx, "")
		assert.Nil(t, err)
		assert.Equal(t, []DirEntry{
			{Name: "spill", IsDir: true},
			{Name: "top", Size: 1},
		}, clearDirSize(entries))

		assert.Nil(t, fs.Delete(ctx, "spill/0.tmp", "spill/1.tmp"))
		entries, err = fs.List(ctx, "spill")
		assert.Nil(t, err)
		assert.Equal(t, 1, len(entries))

		err = fs.Delete(ctx, "spill/0.tmp")
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))
	})

	t.Run("invalid path", func(t *testing.T) {
		ctx := context.Background()
		fs := newFS("path")
		err := fs.Write(ctx, IOVector{FilePath: ""})
		assert.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidPath))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fs := newFS("canceled")
		err := fs.Write(ctx, IOVector{FilePath: "foo"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// clearDirSize zeroes directory sizes, which differ between backends.
func clearDirSize(entries []DirEntry) []DirEntry {
	for i := range entries {
		if entries[i].IsDir {
			entries[i].Size = 0
		}
	}
	return entries
}
