// SPDX-License-Identifier: EPL-2.0

package script

import "errors"

var (
	ErrMissingFunction = errors.New("script does not define function")
	ErrClosed          = errors.New("agent closed")
)
