// Copyright 2021 - 2022 Matrix Origin
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

package toml

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Duration is a toml-decodable time.Duration, written as "500ms", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ByteSize is a toml-decodable byte count, written as "64MiB", "1GB" or "1024".
type ByteSize uint64

// UnmarshalText implements encoding.TextUnmarshaler
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

// MarshalText implements encoding.TextMarshaler. Sizes that IBytes would
// round are written as a plain byte count.
func (b ByteSize) MarshalText() ([]byte, error) {
	text := humanize.IBytes(uint64(b))
	if n, err := humanize.ParseBytes(text); err == nil && n == uint64(b) {
		return []byte(text), nil
	}
	return []byte(strconv.FormatUint(uint64(b), 10)), nil
}
