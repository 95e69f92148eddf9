// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audloop/audio"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const channels = 2

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// carry holds the first byte of a sample split across two reads.
	carry    byte
	hasCarry bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	offset := 0
	if s.hasCarry {
		s.buf[0] = s.carry
		s.hasCarry = false
		offset = 1
	}

	n, err := s.dec.Read(s.buf[offset:])
	n += offset
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		dst[i] = int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
	}

	if n%2 == 1 {
		s.carry = s.buf[n-1]
		s.hasCarry = true
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
