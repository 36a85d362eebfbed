// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package cmdr

import "os"

// forwardedSignals are relayed to a running executable subcommand.
var forwardedSignals = []os.Signal{os.Interrupt}
