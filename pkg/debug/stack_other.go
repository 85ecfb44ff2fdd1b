//go:build !linux

package debug

import (
	"fmt"
	"os"
)

func threadLabel() string {
	return fmt.Sprintf("pid=%d", os.Getpid())
}
