// SPDX-License-Identifier: EPL-2.0

// Package audloop is a seamless loop launcher: it layers equal-length audio
// loops into tracks and swaps them at loop boundaries without clicks.
//
// The module is organised in layers:
//   - audio defines the Source and Decoder interfaces and a format Registry
//   - formats/wav, formats/aiff, formats/mp3 and formats/vorbis decode files
//     into 16-bit PCM sources
//   - clip turns sources into immutable clips and resolves clip names
//   - mixer renders tracks of clips and crossfades at every loop wrap
//   - playback feeds the rendered stream to an audio device through oto
//   - script drives a mixer from a Lua script
//
// # Quick Start
//
//	m := mixer.New(clip.NewFileLoader(nil))
//	err := m.Initialize(ctx, map[string][]string{
//		"drums": {"drums.wav", "drums2.wav"},
//		"bass":  {"bass.wav"},
//	})
//
//	device, err := playback.NewDevice(m.NewReader(), m.SampleRate(), m.Channels())
//	m.Attach(device)
//
//	m.UpdatePendingClips("drums.wav", "bass.wav")
//	err = m.Play()
//
// From then on, whenever m.NeedsAudio reports true, stage the clips for the
// next loop with UpdatePendingClips. The change lands together on every
// track at the next wrap of the longest track.
//
// # Offline Rendering
//
// Mixer.Bounce renders whole loop cycles into a WAV file through the same
// render path the device uses, which is handy for checking transitions
// without an audio device.
//
// # Sample Format
//
// Samples are interleaved signed 16-bit integers throughout. Clips are never
// resampled or remixed: every clip of a track must share channel count,
// sample rate and length, and all tracks must share channel count and sample
// rate.
package audloop
