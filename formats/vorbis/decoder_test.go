// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audloop/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32
	offset       int
	returnErrors bool
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	frames := min(len(buf), len(m.samples)-m.offset) / m.channels
	n := copy(buf[:frames*m.channels], m.samples[m.offset:])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not Ogg Vorbis data"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	mock := &mockOggVorbisReader{
		sampleRate: 48000,
		channels:   2,
		samples:    []float32{0, 1, -1, 0.5, 2, -2},
	}
	src := &source{dec: mock, sampleRate: 48000, channels: 2}

	buf := make([]int16, 4)
	n, err := src.ReadSamples(buf)
	if n != 4 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v), want (4, nil)", n, err)
	}

	want := []int16{0, 32767, -32767, 16383}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %d, want %d", i, buf[i], want[i])
		}
	}

	n, _ = src.ReadSamples(buf)
	if n != 2 || buf[0] != 32767 || buf[1] != -32767 {
		t.Errorf("clamped read = %d %v", n, buf[:n])
	}

	n, err = src.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("final ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_ReadSamples_Misaligned(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggVorbisReader{channels: 2}, channels: 2}

	if _, err := src.ReadSamples(make([]int16, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggVorbisReader{channels: 1, returnErrors: true}, channels: 1}

	if _, err := src.ReadSamples(make([]int16, 8)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}
