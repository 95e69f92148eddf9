// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 decoding through github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the returned audio.Source reports
// two channels even for mono files:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	buf := make([]int16, 4096)
//	n, err := src.ReadSamples(buf)
package mp3
