//go:build linux

package debug

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// threadLabel names the OS thread the capture ran on.
func threadLabel() string {
	return fmt.Sprintf("pid=%d tid=%d", unix.Getpid(), unix.Gettid())
}
