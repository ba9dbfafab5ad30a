// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
)

var buildTime, buildVersion string

func showVersion(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	if buildTime != "" && buildVersion != "" {
		fmt.Fprintf(w, "%s (built: %s)\n", buildVersion, buildTime)
	} else {
		fmt.Fprintln(w, "lcdctl: dev")
	}
}
