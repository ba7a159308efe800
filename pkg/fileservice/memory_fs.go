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
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryFS is an in-memory FileService implementation
type MemoryFS struct {
	name string
	sync.RWMutex
	files map[string][]byte
}

var _ FileService = new(MemoryFS)

func NewMemoryFS(name string) (*MemoryFS, error) {
	return &MemoryFS{
		name:  name,
		files: make(map[string][]byte),
	}, nil
}

func (m *MemoryFS) Name() string {
	return m.name
}

func (m *MemoryFS) Write(ctx context.Context, vector IOVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := cleanPath(vector.FilePath)
	if err != nil {
		return err
	}

	vector.sortEntries()
	if !vector.contiguous() {
		return moerrSizeNotMatch(filePath)
	}
	content := make([]byte, 0, vector.size())
	for _, entry := range vector.Entries {
		content = append(content, entry.Data...)
	}

	m.Lock()
	defer m.Unlock()
	if _, ok := m.files[filePath]; ok {
		return moerrFileAlreadyExists(filePath)
	}
	m.files[filePath] = content
	return nil
}

func (m *MemoryFS) Read(ctx context.Context, vector *IOVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := cleanPath(vector.FilePath)
	if err != nil {
		return err
	}
	m.RLock()
	content, ok := m.files[filePath]
	m.RUnlock()
	if !ok {
		return moerrFileNotFound(filePath)
	}
	return fill(vector, content)
}

func (m *MemoryFS) List(ctx context.Context, dirPath string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := strings.Trim(path.Clean("/"+dirPath), "/")
	if prefix != "" {
		prefix += "/"
	}

	m.RLock()
	defer m.RUnlock()
	seen := make(map[string]bool)
	var ret []DirEntry
	for filePath, content := range m.files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		rest := filePath[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			dir := rest[:i]
			if !seen[dir] {
				seen[dir] = true
				ret = append(ret, DirEntry{Name: dir, IsDir: true})
			}
			continue
		}
		ret = append(ret, DirEntry{Name: rest, Size: int64(len(content))})
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret, nil
}

func (m *MemoryFS) Delete(ctx context.Context, filePaths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	for _, p := range filePaths {
		filePath, err := cleanPath(p)
		if err != nil {
			return err
		}
		if _, ok := m.files[filePath]; !ok {
			return moerrFileNotFound(filePath)
		}
		delete(m.files, filePath)
	}
	return nil
}

// cleanPath normalizes a slash-separated service path. Paths escaping the
// root or naming the root itself are invalid.
func cleanPath(p string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" || strings.HasPrefix(p, "..") {
		return "", moerrInvalidPath(p)
	}
	return cleaned, nil
}
