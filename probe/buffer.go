// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package probe

import (
	"errors"
	"io"

	"github.com/hashicorp/golang-lru/simplelru"
)

// bufferCacheSize is the number of distinct reads kept around.
const bufferCacheSize = 64

type bufferKey struct {
	offset uint64
	length int
}

type hiddenRange struct {
	start, end uint64
}

// buffers caches reads from the device and masks hidden ranges with zeroes.
//
// Offsets are absolute (from the start of the file).
type buffers struct {
	r      io.ReaderAt
	lru    *simplelru.LRU
	hidden []hiddenRange
}

func newBuffers(r io.ReaderAt) (*buffers, error) {
	lru, err := simplelru.NewLRU(bufferCacheSize, nil)
	if err != nil {
		return nil, err
	}

	return &buffers{r: r, lru: lru}, nil
}

// read returns up to length bytes at offset.
//
// A short read returns the data read so far along with io.EOF.
func (b *buffers) read(offset uint64, length int) ([]byte, error) {
	key := bufferKey{offset: offset, length: length}

	var (
		data    []byte
		readErr error
	)

	if cached, ok := b.lru.Get(key); ok {
		data = cached.([]byte) //nolint:forcetypeassert
	} else {
		buf := make([]byte, length)

		n, err := readAt(b.r, buf, offset)
		if err != nil {
			return nil, err
		}

		buf = buf[:n]

		b.lru.Add(key, buf)
		data = buf
	}

	if len(data) < length {
		readErr = io.EOF
	}

	out := make([]byte, len(data))
	copy(out, data)

	b.mask(offset, out)

	return out, readErr
}

func (b *buffers) mask(offset uint64, buf []byte) {
	end := offset + uint64(len(buf))

	for _, h := range b.hidden {
		if h.end <= offset || h.start >= end {
			continue
		}

		from := max(h.start, offset) - offset
		to := min(h.end, end) - offset

		clear(buf[from:to])
	}
}

// hide masks [offset, offset+length) with zeroes for all further reads.
func (b *buffers) hide(offset, length uint64) {
	b.hidden = append(b.hidden, hiddenRange{start: offset, end: offset + length})
}

// purge drops cached data, hidden ranges are kept.
func (b *buffers) purge() {
	b.lru.Purge()
}

// reset drops cached data and hidden ranges.
func (b *buffers) reset() {
	b.lru.Purge()
	b.hidden = nil
}

// readAt reads as much of buf as available, io.EOF is not an error.
func readAt(r io.ReaderAt, buf []byte, offset uint64) (int, error) {
	n := 0

	for n < len(buf) {
		m, err := r.ReadAt(buf[n:], int64(offset)+int64(n))
		n += m

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return n, err
		}

		if m == 0 {
			break
		}
	}

	return n, nil
}
