// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var ErrDeviceFormat = errors.New("unsupported output format")
