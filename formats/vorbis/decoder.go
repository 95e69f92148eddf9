// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/utils"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	frameBuf   []float32 // buffer for reading frames from decoder
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []int16) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.frameBuf) < len(dst) {
		s.frameBuf = make([]float32, len(dst))
	}
	s.frameBuf = s.frameBuf[:len(dst)]

	// oggvorbis reads whole frames and returns the number of samples written
	n, err := s.dec.Read(s.frameBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	for i := range n {
		dst[i] = utils.Float32ToInt16(s.frameBuf[i])
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		frameBuf:   make([]float32, 4096),
	}, nil
}
