// SPDX-License-Identifier: EPL-2.0

// Package mixer plays groups of equal-length loops and switches between them
// without clicks.
//
// A Mixer owns named Tracks. Every Track holds interchangeable clips of the
// same length; one of them is active. Callers stage the clips they want next
// with UpdatePendingClips. The staged set is applied to all tracks at once
// when the global loop (the longest track) wraps, and each track then swaps
// its active clip at its own next wrap, fading the tail of the outgoing clip
// over FadeDuration. Tracks without a staged clip fade to silence.
//
// # Threads
//
// There are two sides. The control side (any goroutine) calls Initialize,
// AddTrack, UpdatePendingClips and NeedsAudio. The render side (one goroutine,
// usually the audio device through a Reader) calls OnGetData. The only lock
// shared between them guards the staged requests; clip tables and track sets
// are published with atomic pointers.
//
// # Usage
//
//	m := mixer.New(clip.NewFileLoader(nil), mixer.WithLogger(log))
//	err := m.Initialize(ctx, map[string][]string{
//		"drums": {"drums.wav", "drums2.wav"},
//		"bass":  {"bass.wav"},
//	})
//	m.UpdatePendingClips("drums.wav", "bass.wav")
//	m.Attach(device) // e.g. playback.NewDevice(m.NewReader(), ...)
//	err = m.Play()
//
//	for range time.Tick(10 * time.Millisecond) {
//		if m.NeedsAudio() {
//			m.UpdatePendingClips(next()...)
//		}
//	}
package mixer
