// SPDX-License-Identifier: EPL-2.0

package clip

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyClip     = errors.New("clip has no samples")
	ErrInvalidFormat = errors.New("invalid clip format")
	ErrUnknownFormat = errors.New("no decoder registered for format")
	ErrNotFound      = errors.New("clip not found")
)

// MismatchError reports a clip whose format disagrees with the clips it is
// meant to be mixed with.
type MismatchError struct {
	Name string
	Want Format
	Got  Format
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("clip %q: format %s does not match %s", e.Name, e.Got, e.Want)
}
