//go:build !windows

package track

// LineSeparator terminates each report line.
const LineSeparator = "\n"
