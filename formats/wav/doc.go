// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding goes through github.com/go-audio/wav and is limited to PCM 16-bit
// files with any channel count and sample rate:
//
//	decoder := wav.Decoder{}
//	file, _ := os.Open("drums.wav")
//	source, err := decoder.Decode(file)
//
// The returned audio.Source yields interleaved int16 samples exactly as
// stored in the file.
//
// WriteWAV16 writes interleaved 16-bit PCM with a canonical 44-byte header:
//
//	wav.WriteWAV16(out, 44100, 2, samples)
package wav
