// SPDX-License-Identifier: EPL-2.0

package audiotest

import "io"

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) int16
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
// waveform is a function that generates sample values given sample index and channel.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) int16) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value int16) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) int16 {
		return value
	})
}

// NewRampSource creates a mock source whose sample value equals its frame index
// plus base, wrapping within the int16 range.
func NewRampSource(sampleRate, channels, totalSamples int, base int16) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) int16 {
		return base + int16(sample)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) Close() error    { return nil }

func (m *MockSource) ReadSamples(dst []int16) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesRequested := len(dst) / m.channels
	framesToWrite := min(framesRequested, m.totalSamples-m.generated)

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}
