/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "time"

// Version of the daemon.
var Version string

// BuildTime contains the timestamp of when this version was built.
var BuildTime string

// StartTimestamp is the time the daemon was started.
var StartTimestamp time.Time

// ShouldQuit signals every cooperative loop to exit.
var ShouldQuit bool
