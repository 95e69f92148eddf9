//go:build !headless

// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error

	otoRate, otoChannels int
)

func openContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   20 * time.Millisecond,
		})
		if otoErr != nil {
			return
		}
		<-ready
		otoRate, otoChannels = sampleRate, channels
	})

	if otoErr != nil {
		return nil, fmt.Errorf("opening audio device: %w", otoErr)
	}
	if otoRate != sampleRate || otoChannels != channels {
		return nil, fmt.Errorf("%w: device open at %dch/%dHz", ErrDeviceFormat, otoChannels, otoRate)
	}

	return otoCtx, nil
}

// Device plays a 16-bit little-endian PCM stream on the default output.
type Device struct {
	mu     sync.Mutex
	player *oto.Player
}

// NewDevice opens the audio device and prepares a paused player reading r.
func NewDevice(r io.Reader, sampleRate, channels int) (*Device, error) {
	ctx, err := openContext(sampleRate, channels)
	if err != nil {
		return nil, err
	}

	return &Device{player: ctx.NewPlayer(r)}, nil
}

func (d *Device) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		d.player.Play()
	}
}

func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		d.player.Pause()
	}
}

// Stop pauses output. The stream is a live loop, so there is nothing to rewind.
func (d *Device) Stop() { d.Pause() }

func (d *Device) SetVolume(v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		d.player.SetVolume(min(max(v, 0), 1))
	}
}

func (d *Device) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return 0
	}

	return d.player.Volume()
}

// Err reports a playback error raised by the device.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}

	return d.player.Err()
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}

	err := d.player.Close()
	d.player = nil

	return err
}
