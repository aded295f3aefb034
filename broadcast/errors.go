// SPDX-License-Identifier: MIT

package broadcast

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates path and observer shapes that cannot be
// aligned under the requested mode. It is never coerced silently.
var ErrConfiguration = errors.New("broadcast: unbroadcastable configuration")

const (
	opPlan    = "NewPlan"
	opGrid    = "NewGrid"
	opExpand  = "Expand"
	opCollect = "Collect"
)

func broadcastErrorf(tag string, err error) error {
	return fmt.Errorf("broadcast.%s: %w", tag, err)
}

// configErrorf wraps ErrConfiguration with a formatted reason.
func configErrorf(tag, format string, args ...any) error {
	return broadcastErrorf(tag, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConfiguration))
}
