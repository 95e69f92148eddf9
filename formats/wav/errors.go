// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrInvalidChannelCount   = errors.New("channel count must be positive")
	ErrSampleAlignment       = errors.New("sample count must be a multiple of channels")
)
