// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding through
// github.com/jfreymuth/oggvorbis.
//
// Vorbis decodes to float32; samples are clamped and scaled to int16 with
// utils.Float32ToInt16. Reads must be sized in whole frames.
package vorbis
