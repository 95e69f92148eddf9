// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrNoTracks           = errors.New("mixer has no playable tracks")
	ErrAlreadyInitialized = errors.New("mixer already initialized")
	ErrNotInitialized     = errors.New("mixer not initialized")
	ErrDuplicateTrack     = errors.New("track already exists")
	ErrTrackTooShort      = errors.New("shortest track is too short for a render chunk")
	ErrNilClip            = errors.New("nil clip")
	ErrInvalidCycles      = errors.New("cycle count must be positive")
)
