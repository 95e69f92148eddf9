// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"time"
)

// DefaultInterval is how often a Pump pulls from its source.
const DefaultInterval = 10 * time.Millisecond

// Pump pulls 16-bit little-endian PCM from a reader at the stream's real
// time rate and writes it, volume scaled, to a sink. It stands in for an audio
// device when there is none.
type Pump struct {
	src      io.Reader
	sink     io.Writer
	interval time.Duration
	chunk    int

	mu      sync.Mutex
	volume  float64
	stop    chan struct{}
	done    chan struct{}
	err     error
	written int64
}

// NewPump returns a paused pump. A nil sink discards the audio; an interval
// of zero means DefaultInterval.
func NewPump(src io.Reader, sink io.Writer, sampleRate, channels int, interval time.Duration) *Pump {
	if sink == nil {
		sink = io.Discard
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	frames := max(int(int64(sampleRate)*int64(interval)/int64(time.Second)), 1)

	return &Pump{
		src:      src,
		sink:     sink,
		interval: interval,
		chunk:    frames * channels * 2,
		volume:   1,
	}
}

// Play starts pulling. Calling Play on a running pump does nothing.
func (p *Pump) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		return
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
}

// Pause stops pulling and waits for the running pull to finish.
func (p *Pump) Pause() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
}

// Stop is Pause; a pump keeps no position to rewind.
func (p *Pump) Stop() { p.Pause() }

func (p *Pump) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = min(max(v, 0), 1)
}

func (p *Pump) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.volume
}

// Done is closed when the running pump ends, either through Pause or because
// the source is exhausted. It is nil while the pump is paused.
func (p *Pump) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done
}

// Err returns the error that ended the last run, nil for io.EOF.
func (p *Pump) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Written returns how many bytes reached the sink.
func (p *Pump) Written() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.written
}

// Close pauses the pump.
func (p *Pump) Close() error {
	p.Pause()
	return nil
}

func (p *Pump) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	buf := make([]byte, p.chunk)

	for {
		if err := p.pull(buf); err != nil {
			p.mu.Lock()
			if !errors.Is(err, io.EOF) {
				p.err = err
			}
			if p.done == done {
				p.stop, p.done = nil, nil
			}
			p.mu.Unlock()
			return
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (p *Pump) pull(buf []byte) error {
	n, err := io.ReadFull(p.src, buf)
	if n > 0 {
		p.scale(buf[:n])
		if _, werr := p.sink.Write(buf[:n]); werr != nil {
			return werr
		}

		p.mu.Lock()
		p.written += int64(n)
		p.mu.Unlock()
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}

	return err
}

func (p *Pump) scale(buf []byte) {
	v := p.Volume()
	if v == 1 {
		return
	}

	for i := 0; i+1 < len(buf); i += 2 {
		s := float64(int16(binary.LittleEndian.Uint16(buf[i:])))
		binary.LittleEndian.PutUint16(buf[i:], uint16(int16(math.Round(s*v))))
	}
}
