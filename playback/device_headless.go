//go:build headless

// SPDX-License-Identifier: EPL-2.0

package playback

import "io"

// Device consumes the stream in real time without an audio device.
type Device struct {
	*Pump
}

func NewDevice(r io.Reader, sampleRate, channels int) (*Device, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrDeviceFormat
	}

	return &Device{Pump: NewPump(r, io.Discard, sampleRate, channels, DefaultInterval)}, nil
}
