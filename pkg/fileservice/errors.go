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
	"github.com/matrixorigin/hashjoin/pkg/common/moerr"
)

func moerrFileNotFound(path string) error {
	return moerr.NewFileNotFound(moerr.Context(), path)
}

func moerrFileAlreadyExists(path string) error {
	return moerr.NewFileAlreadyExists(moerr.Context(), path)
}

func moerrEmptyRange(path string) error {
	return moerr.NewEmptyRange(moerr.Context(), path)
}

func moerrUnexpectedEOF(path string) error {
	return moerr.NewUnexpectedEOF(moerr.Context(), path)
}

func moerrSizeNotMatch(path string) error {
	return moerr.NewSizeNotMatch(moerr.Context(), path)
}

func moerrInvalidPath(path string) error {
	return moerr.NewInvalidPath(moerr.Context(), path)
}
