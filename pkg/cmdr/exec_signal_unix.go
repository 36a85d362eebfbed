// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package cmdr

import (
	"os"

	"golang.org/x/sys/unix"
)

// forwardedSignals are relayed to a running executable subcommand.
var forwardedSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGTERM,
	unix.SIGHUP,
	unix.SIGUSR1,
	unix.SIGUSR2,
}
