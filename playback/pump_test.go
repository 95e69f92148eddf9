// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is a bytes.Buffer safe for the pump goroutine and the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.buf.Bytes())
}

func pcm(n int, v int16) []byte {
	out := make([]byte, 2*n)
	for i := range n {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}

	return out
}

func waitDone(t *testing.T, p *Pump) {
	t.Helper()

	done := p.Done()
	if done == nil {
		return
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not finish")
	}
}

func TestPump_DrainsSource(t *testing.T) {
	t.Parallel()

	src := bytes.NewReader(pcm(1000, 1234))
	sink := &lockedBuffer{}

	p := NewPump(src, sink, 8000, 1, time.Millisecond)
	p.Play()
	waitDone(t, p)

	if err := p.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	if p.Written() != 2000 {
		t.Errorf("Written() = %d, want 2000", p.Written())
	}
	if !bytes.Equal(sink.Bytes(), pcm(1000, 1234)) {
		t.Error("sink does not hold the source stream")
	}
}

func TestPump_Volume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vol  float64
		want int16
	}{
		{"full", 1, 1000},
		{"half", 0.5, 500},
		{"clamped high", 3, 1000},
		{"muted", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := &lockedBuffer{}
			p := NewPump(bytes.NewReader(pcm(80, 1000)), sink, 8000, 1, time.Millisecond)
			p.SetVolume(tt.vol)
			p.Play()
			waitDone(t, p)

			out := sink.Bytes()
			if len(out) != 160 {
				t.Fatalf("sink holds %d bytes, want 160", len(out))
			}
			if got := int16(binary.LittleEndian.Uint16(out)); got != tt.want {
				t.Errorf("first sample = %d, want %d", got, tt.want)
			}
		})
	}
}

type endless struct{}

func (endless) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestPump_PauseResume(t *testing.T) {
	t.Parallel()

	p := NewPump(endless{}, nil, 8000, 2, time.Millisecond)

	p.Pause() // paused already, no-op
	p.Play()
	p.Play()
	time.Sleep(10 * time.Millisecond)
	p.Pause()

	written := p.Written()
	if written == 0 {
		t.Fatal("Written() = 0 after playing")
	}
	if written%4 != 0 {
		t.Errorf("Written() = %d, not whole stereo frames", written)
	}
	if p.Done() != nil {
		t.Error("Done() != nil while paused")
	}

	time.Sleep(5 * time.Millisecond)
	if p.Written() != written {
		t.Error("pump kept writing while paused")
	}

	p.Play()
	time.Sleep(5 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if p.Written() <= written {
		t.Error("pump did not resume")
	}
}

type failingWriter struct{}

var errSink = errors.New("sink closed")

func (failingWriter) Write([]byte) (int, error) { return 0, errSink }

func TestPump_SinkError(t *testing.T) {
	t.Parallel()

	p := NewPump(endless{}, failingWriter{}, 8000, 1, time.Millisecond)
	p.Play()
	waitDone(t, p)

	if !errors.Is(p.Err(), errSink) {
		t.Errorf("Err() = %v, want %v", p.Err(), errSink)
	}
}

func TestNewPump_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPump(io.LimitReader(endless{}, 0), nil, 44100, 2, 0)
	if p.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultInterval)
	}
	// 10ms of 44.1kHz stereo 16-bit
	if p.chunk != 441*2*2 {
		t.Errorf("chunk = %d, want %d", p.chunk, 441*2*2)
	}
	if p.Volume() != 1 {
		t.Errorf("Volume() = %v, want 1", p.Volume())
	}
}
