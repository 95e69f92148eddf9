// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"encoding/binary"
	"io"
)

// Reader adapts the mixer to a byte stream of interleaved little-endian
// signed 16-bit PCM, the layout oto expects. It must be the only caller of
// OnGetData.
type Reader struct {
	m       *Mixer
	carry   []int16
	wrapped bool
	done    bool
}

// NewReader returns a stream that pulls chunks from OnGetData. Partial
// chunks are carried over between reads. Before Initialize it yields silence.
func (m *Mixer) NewReader() *Reader {
	return &Reader{m: m}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	n := 0
	for n+1 < len(p) {
		if len(r.carry) == 0 {
			if r.ended() {
				r.done = true
				break
			}
			r.fill(len(p) - n)
		}

		k := min(len(r.carry), (len(p)-n)/2)
		for i, s := range r.carry[:k] {
			binary.LittleEndian.PutUint16(p[n+2*i:], uint16(s))
		}
		r.carry = r.carry[k:]
		n += 2 * k
	}

	if n == 0 && r.done {
		return 0, io.EOF
	}

	return n, nil
}

// ended reports whether looping is off and the last chunk closed a global
// loop cycle.
func (r *Reader) ended() bool {
	return r.wrapped && !r.m.Loop()
}

func (r *Reader) fill(want int) {
	before := r.m.cycles
	buf, ok := r.m.OnGetData()
	r.wrapped = r.m.cycles != before
	if !ok {
		// not initialized: emit silence rather than an error
		r.carry = make([]int16, max(want/2, 1))
		return
	}

	r.carry = buf
}
