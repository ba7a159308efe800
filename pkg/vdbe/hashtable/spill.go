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
	"path"

	"github.com/google/uuid"

	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
	"github.com/matrixorigin/hashjoin/pkg/fileservice"
)

// Grace hash join is not implemented. When it is, an over budget insert
// radix-partitions both inputs with PartitionOf, writes the partitions that
// do not fit through the file service and joins them one by one in a second
// pass. The table then moves to StateSpilled.

const spillDir = "hashjoin/spill"

var spillFileID = func() string {
	return uuid.New().String()
}

// tempFile is the scratch file slot of a spilling table.
type tempFile struct {
	fs      fileservice.FileService
	path    string
	written bool
}

func newTempFile(fs fileservice.FileService) *tempFile {
	return &tempFile{
		fs:   fs,
		path: path.Join(spillDir, spillFileID()+".tmp"),
	}
}

func (f *tempFile) write(ctx context.Context, data []byte) error {
	if f.written {
		return moerr.NewFileAlreadyExists(ctx, f.path)
	}
	err := f.fs.Write(ctx, fileservice.IOVector{
		FilePath: f.path,
		Entries: []fileservice.IOEntry{
			{Offset: 0, Size: int64(len(data)), Data: data},
		},
	})
	if err != nil {
		return err
	}
	f.written = true
	return nil
}

func (f *tempFile) remove(ctx context.Context) error {
	if !f.written {
		return nil
	}
	err := f.fs.Delete(ctx, f.path)
	if moerr.IsMoErrCode(err, moerr.ErrFileNotFound) {
		return nil
	}
	return err
}

// reserveTempFile attaches a scratch file to the table. It fails without a
// file service.
func (ht *HashTable) reserveTempFile() (*tempFile, error) {
	if ht.spill != nil {
		return ht.spill, nil
	}
	if ht.fs == nil {
		return nil, moerr.NewNotSupported(ht.ctx, "hash table spill without a file service")
	}
	ht.spill = newTempFile(ht.fs)
	return ht.spill, nil
}

// PartitionOf returns the grace join partition of hash using its top bits.
// bits is clamped to [0, 16].
func PartitionOf(hash uint64, bits uint) int {
	if bits == 0 {
		return 0
	}
	if bits > maxPartitionBits {
		bits = maxPartitionBits
	}
	return int(hash >> (64 - bits))
}

const maxPartitionBits = 16

// PartitionHistogram counts entries per partition for a 1<<bits way split.
func (ht *HashTable) PartitionHistogram(bits uint) []int {
	if bits > maxPartitionBits {
		bits = maxPartitionBits
	}
	hist := make([]int, 1<<bits)
	for i := range ht.buckets {
		for j := range ht.buckets[i].entries {
			hist[PartitionOf(ht.buckets[i].entries[j].Hash, bits)]++
		}
	}
	return hist
}
