// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files. PCM data
// of 8, 16, 24 or 32 bits is rescaled to interleaved int16 samples:
//
//	decoder := aiff.Decoder{}
//	file, _ := os.Open("bass.aif")
//	source, err := decoder.Decode(file)
//
// go-audio needs an io.ReadSeeker; plain readers are buffered into memory
// first.
package aiff
