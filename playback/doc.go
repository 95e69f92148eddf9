// SPDX-License-Identifier: EPL-2.0

// Package playback drives audio output from a pull-based PCM stream such as
// mixer.Reader.
//
// Device plays through the system audio device with oto. Building with the
// headless tag swaps it for a Pump that consumes the stream in real time
// without touching any device, which suits CI and servers. Both satisfy
// mixer.Transport.
package playback
