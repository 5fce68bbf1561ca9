/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"errors"
	"fmt"
)

// Error definitions
var (
	ErrNotCanonical = errors.New("URI could not be canonized")
)

// FibUpdateRejected carries the code/message pair an external FIB updater
// reports when it refuses a batch, so callers can distinguish rejection
// reasons instead of matching on a formatted string.
type FibUpdateRejected struct {
	Code    uint32
	Message string
}

func (e *FibUpdateRejected) Error() string {
	return fmt.Sprintf("FIB update rejected (code=%d): %s", e.Code, e.Message)
}
