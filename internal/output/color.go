// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package output

import (
	"github.com/fatih/color"
)

// Shared color printers.
var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorFaint  = color.New(color.Faint)
)

// ColorStatus colors a batch status word by how it ended, or dims it while
// still running.
func ColorStatus(status string) string {
	switch status {
	case "failed", "expired":
		return colorRed.Sprint(status)
	case "cancelled", "cancelling":
		return colorYellow.Sprint(status)
	case "completed":
		return colorGreen.Sprint(status)
	case "validating", "in_progress", "finalizing":
		return colorFaint.Sprint(status)
	default:
		return status
	}
}
