// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import (
	"errors"
)

// Boundary error taxonomy. A nil error is the only "Ok" value; every
// public entry point returns one of these (or nil) and never panics on
// caller error.

// ErrNullPointer is returned for a missing mandatory handle or callback.
var ErrNullPointer = errors.New("lptimer: null handle or callback")

// ErrInvalidParameter is returned for a domain violation: an invalid
// calendar date, a timestamp out of range for the target epoch format, or a
// millisecond value that would overflow its tick conversion.
var ErrInvalidParameter = errors.New("lptimer: invalid parameter")

// ErrInvalidState is returned when starting a periodic timer that is
// already running, or removing a handle that is not in the list.
var ErrInvalidState = errors.New("lptimer: invalid state")

// ErrNotReady is returned when starting a one-shot timer that is already
// running, or querying remaining time on a handle that isn't scheduled.
var ErrNotReady = errors.New("lptimer: not ready")

// ErrEmpty is returned by GetRemainingTimeOfFirst when no timer matches the
// requested option flags.
var ErrEmpty = errors.New("lptimer: empty")
