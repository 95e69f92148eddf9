// SPDX-License-Identifier: EPL-2.0

// Package clip holds decoded, immutable audio clips and the loaders that
// produce them.
//
// A Clip is a fixed block of interleaved int16 samples with a channel count
// and sample rate. Clips are never resampled or remixed; code that combines
// clips checks their Format and reports a *MismatchError when they disagree.
//
// Loaders turn a clip name into a Clip. FileLoader treats the name as a path
// and picks a decoder from an audio.Registry by file extension:
//
//	loader := clip.NewFileLoader(nil) // wav, aiff, mp3, ogg
//	c, err := loader.Load(ctx, "loops/drums.wav")
//
// MemoryLoader serves clips built in code, which is handy for tests and for
// hosts that decode audio themselves.
package clip
