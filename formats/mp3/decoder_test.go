// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// mockMP3Reader simulates the gomp3.Decoder for testing.
// chunk limits how many bytes a single Read returns.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	offset     int
	chunk      int
}

func newMockMP3Reader(sampleRate, chunk int, samples []int16) *mockMP3Reader {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}

	return &mockMP3Reader{sampleRate: sampleRate, data: data, chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}

	end := min(len(m.data), m.offset+len(buf))
	if m.chunk > 0 {
		end = min(end, m.offset+m.chunk)
	}

	n := copy(buf, m.data[m.offset:end])
	m.offset += n

	return n, nil
}

func readAll(t *testing.T, src *source, bufSize int) []int16 {
	t.Helper()

	var out []int16
	buf := make([]int16, bufSize)
	for range 1000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("ReadSamples() never reached EOF")

	return nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not MP3 data"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: newMockMP3Reader(44100, 0, nil), sampleRate: 44100}

	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	want := []int16{0, 1, -1, 32767, -32768, 1000, -1000, 7}

	tests := []struct {
		name    string
		chunk   int
		bufSize int
	}{
		{"whole reads", 0, 64},
		{"small buffer", 0, 3},
		{"odd byte chunks", 3, 4},
		{"single byte chunks", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: newMockMP3Reader(44100, tt.chunk, want), sampleRate: 44100}
			got := readAll(t, src, tt.bufSize)

			if len(got) != len(want) {
				t.Fatalf("read %d samples, want %d (%v)", len(got), len(want), got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
				}
			}
		})
	}
}
