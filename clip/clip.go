// SPDX-License-Identifier: EPL-2.0

package clip

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audloop/audio"
)

const (
	// readChunk is the number of samples pulled from a Source per read.
	readChunk = 4096
	// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
	maxEmptyReads = 100
)

// Format describes the shape of a clip's sample data.
type Format struct {
	Channels   int
	SampleRate int
	// Len is the interleaved sample count.
	Len int
}

func (f Format) String() string {
	return fmt.Sprintf("%dch/%dHz/%d samples", f.Channels, f.SampleRate, f.Len)
}

// Clip is an immutable in-memory block of interleaved int16 samples.
type Clip struct {
	channels   int
	sampleRate int
	samples    []int16
}

// New wraps samples as a Clip. The slice is owned by the Clip afterwards and
// must not be modified by the caller.
func New(channels, sampleRate int, samples []int16) (*Clip, error) {
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidFormat, channels, sampleRate)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidFormat, len(samples), channels)
	}

	return &Clip{
		channels:   channels,
		sampleRate: sampleRate,
		samples:    samples,
	}, nil
}

// Read drains src into a new Clip. src is not closed.
func Read(src audio.Source) (*Clip, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	}

	var samples []int16
	buf := make([]int16, readChunk-readChunk%channels)
	empty := 0

	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}

		if n > 0 {
			empty = 0
			continue
		}
		empty++
		if empty >= maxEmptyReads {
			return nil, fmt.Errorf("reading samples: %w", io.ErrNoProgress)
		}
	}

	// drop a trailing partial frame
	samples = samples[:len(samples)-len(samples)%channels]

	return New(channels, src.SampleRate(), samples)
}

func (c *Clip) Channels() int   { return c.channels }
func (c *Clip) SampleRate() int { return c.sampleRate }

// Len returns the interleaved sample count.
func (c *Clip) Len() int { return len(c.samples) }

// Frames returns the number of multi-channel frames.
func (c *Clip) Frames() int { return len(c.samples) / c.channels }

// At returns sample i, wrapping around the end of the clip.
func (c *Clip) At(i int) int16 { return c.samples[i%len(c.samples)] }

// Samples exposes the backing slice. Callers must treat it as read-only.
func (c *Clip) Samples() []int16 { return c.samples }

func (c *Clip) Format() Format {
	return Format{Channels: c.channels, SampleRate: c.sampleRate, Len: len(c.samples)}
}
