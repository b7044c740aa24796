// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package lptimer

import (
	"github.com/intuitivelabs/slog"
)

// Log is the package-wide logger. It follows the convention used
// throughout the intuitivelabs Go libraries: a single package-level
// slog.Logger, adjustable at runtime with slog.SetLevel(&Log, ...), with
// free functions below wrapping it so call sites read like plain log
// statements instead of method calls on a global.
var Log slog.Logger

func init() {
	Log.Init("lptimer")
}

// DBGon, ERRon and WARNon let call sites skip formatting work on the hot
// dispatch path when the corresponding level is disabled.
func DBGon() bool  { return Log.DBGon() }
func ERRon() bool  { return Log.ERRon() }
func WARNon() bool { return Log.WARNon() }

func DBG(f string, args ...interface{})  { Log.DBG(f, args...) }
func ERR(f string, args ...interface{})  { Log.ERR(f, args...) }
func WARN(f string, args ...interface{}) { Log.WARN(f, args...) }

// BUG logs an invariant violation. Unlike PANIC it does not stop execution:
// the scheduler tries to keep serving other timers even after logging a
// BUG, since a single corrupted handle should not take down a process that
// might be driving safety-relevant sleep timers for other handles.
func BUG(f string, args ...interface{}) { Log.BUG(f, args...) }

// PANIC logs and then panics. Reserved for states that make it unsafe to
// keep mutating the delta list (e.g. a handle that is reachable from two
// different lists at once).
func PANIC(f string, args ...interface{}) { Log.PANIC(f, args...) }
