// Command weaktrack serves and controls weak pointer allocation tracking.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
