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
	"sort"
)

// FileService is the pluggable storage provider handed to operators that may
// need scratch files, such as a hash table spilling partitions to disk.
type FileService interface {
	// Name returns the service name.
	Name() string
	// Write writes a new file. It fails if the file already exists.
	// Entries must cover [0, size) without holes.
	Write(ctx context.Context, vector IOVector) error
	// Read reads the ranges described by vector.Entries, filling Data.
	Read(ctx context.Context, vector *IOVector) error
	// List lists the files directly under dirPath, sorted by name.
	List(ctx context.Context, dirPath string) ([]DirEntry, error)
	// Delete removes the files. Missing files are an error.
	Delete(ctx context.Context, filePaths ...string) error
}

type IOVector struct {
	// FilePath is a slash-separated path relative to the service root.
	FilePath string
	Entries  []IOEntry
}

type IOEntry struct {
	Offset int64
	// Size of the range. -1 reads to the end of the file.
	Size int64
	Data []byte
}

type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// size returns the total length of a vector written through Write.
func (i *IOVector) size() int64 {
	if len(i.Entries) == 0 {
		return 0
	}
	last := i.Entries[len(i.Entries)-1]
	return last.Offset + last.Size
}

func (i *IOVector) sortEntries() {
	sort.Slice(i.Entries, func(a, b int) bool {
		return i.Entries[a].Offset < i.Entries[b].Offset
	})
}

// contiguous reports whether sorted entries cover [0, size) without holes or
// overlap, and whether every entry carries exactly Size bytes.
func (i *IOVector) contiguous() bool {
	var next int64
	for _, entry := range i.Entries {
		if entry.Offset != next || entry.Size < 0 || int64(len(entry.Data)) != entry.Size {
			return false
		}
		next += entry.Size
	}
	return true
}

// fill copies the requested ranges of content into vector entries.
func fill(vector *IOVector, content []byte) error {
	for i, entry := range vector.Entries {
		if entry.Offset < 0 || entry.Offset > int64(len(content)) {
			return moerrEmptyRange(vector.FilePath)
		}
		end := int64(len(content))
		if entry.Size >= 0 {
			end = entry.Offset + entry.Size
		}
		if end > int64(len(content)) {
			return moerrUnexpectedEOF(vector.FilePath)
		}
		data := content[entry.Offset:end]
		if int64(len(entry.Data)) >= int64(len(data)) && entry.Data != nil {
			copy(entry.Data, data)
			vector.Entries[i].Data = entry.Data[:len(data)]
		} else {
			buf := make([]byte, len(data))
			copy(buf, data)
			vector.Entries[i].Data = buf
		}
		vector.Entries[i].Size = int64(len(data))
	}
	return nil
}
