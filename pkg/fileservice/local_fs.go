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
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const sentinelFileName = "thisisalocalfileservicedir"

// LocalFS is a FileService implementation backed by local file system
type LocalFS struct {
	name     string
	rootPath string
}

var _ FileService = new(LocalFS)

func NewLocalFS(name, rootPath string) (*LocalFS, error) {
	// ensure dir
	f, err := os.Open(rootPath)
	if os.IsNotExist(err) {
		// not exists, create
		if err := os.MkdirAll(rootPath, 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(rootPath, sentinelFileName), nil, 0644); err != nil {
			return nil, err
		}

	} else if err != nil {
		// stat error
		return nil, err

	} else {
		// existed, check if a real file service dir
		defer f.Close()
		entries, err := f.ReadDir(1)
		if len(entries) == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			// empty dir, claim it
			if err := os.WriteFile(filepath.Join(rootPath, sentinelFileName), nil, 0644); err != nil {
				return nil, err
			}
		} else {
			// not empty, check sentinel file
			_, err := os.Stat(filepath.Join(rootPath, sentinelFileName))
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%s is not a file service dir", rootPath)
			} else if err != nil {
				return nil, err
			}
		}
	}

	// create tmp dir
	if err := os.MkdirAll(filepath.Join(rootPath, ".tmp"), 0755); err != nil {
		return nil, err
	}

	return &LocalFS{
		name:     name,
		rootPath: rootPath,
	}, nil
}

func (l *LocalFS) Name() string {
	return l.name
}

func (l *LocalFS) Write(ctx context.Context, vector IOVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := cleanPath(vector.FilePath)
	if err != nil {
		return err
	}
	nativePath := l.toNativeFilePath(filePath)

	// check existence
	if _, err := os.Stat(nativePath); err == nil {
		return moerrFileAlreadyExists(filePath)
	}

	vector.sortEntries()
	if !vector.contiguous() {
		return moerrSizeNotMatch(filePath)
	}

	// write to a temp file first, then move into place
	f, err := os.CreateTemp(filepath.Join(l.rootPath, ".tmp"), "*.tmp")
	if err != nil {
		return err
	}
	for _, entry := range vector.Entries {
		if _, err := f.Write(entry.Data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	// ensure parent dir
	parentDir, _ := filepath.Split(nativePath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		os.Remove(f.Name())
		return err
	}

	// move
	if err := os.Rename(f.Name(), nativePath); err != nil {
		os.Remove(f.Name())
		return err
	}
	return nil
}

func (l *LocalFS) Read(ctx context.Context, vector *IOVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := cleanPath(vector.FilePath)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(l.toNativeFilePath(filePath))
	if os.IsNotExist(err) {
		return moerrFileNotFound(filePath)
	}
	if err != nil {
		return err
	}
	return fill(vector, content)
}

func (l *LocalFS) List(ctx context.Context, dirPath string) (ret []DirEntry, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirPath = strings.Trim(path.Clean("/"+dirPath), "/")
	nativePath := l.toNativeFilePath(dirPath)
	f, err := os.Open(nativePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == sentinelFileName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		ret = append(ret, DirEntry{
			Name:  name,
			IsDir: entry.IsDir(),
			Size:  info.Size(),
		})
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret, nil
}

func (l *LocalFS) Delete(ctx context.Context, filePaths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, p := range filePaths {
		filePath, err := cleanPath(p)
		if err != nil {
			return err
		}
		nativePath := l.toNativeFilePath(filePath)
		_, err = os.Stat(nativePath)
		if os.IsNotExist(err) {
			return moerrFileNotFound(filePath)
		}
		if err != nil {
			return err
		}
		if err := os.Remove(nativePath); err != nil {
			return err
		}
	}
	return nil
}

func (l *LocalFS) toNativeFilePath(filePath string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(filePath))
}
