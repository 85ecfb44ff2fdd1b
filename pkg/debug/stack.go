// Package debug provides the stack capture used by weak pointer sampling.
package debug

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

// StackDumper writes the calling goroutine's stack to a writer.
type StackDumper struct {
	mu      sync.Mutex
	writer  io.Writer
	bufSize int
}

// NewStackDumper creates a dumper writing to w, or stderr if w is nil.
func NewStackDumper(w io.Writer) *StackDumper {
	if w == nil {
		w = defaultStackWriter()
	}
	return &StackDumper{
		writer:  w,
		bufSize: 16 << 10,
	}
}

// Capture prints a header naming the sampled key followed by the current stack.
func (d *StackDumper) Capture(key string, count uint64) {
	stack := d.stack()
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "[STACK %s] %s weak pointer #%d (%s)\n%s\n",
		time.Now().Format("15:04:05.000"), key, count, threadLabel(), stack)
}

// stack returns the current goroutine's stack, growing the buffer until it fits.
func (d *StackDumper) stack() []byte {
	buf := make([]byte, d.bufSize)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

// defaultStackWriter returns stderr for stack output.
func defaultStackWriter() io.Writer {
	return os.Stderr
}
