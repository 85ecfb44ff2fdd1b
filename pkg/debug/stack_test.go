package debug

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackDumperCapture(t *testing.T) {
	var buf bytes.Buffer
	d := NewStackDumper(&buf)
	d.Capture("example.com/pkg.Foo", 300)

	out := buf.String()
	assert.Contains(t, out, "example.com/pkg.Foo weak pointer #300")
	assert.Contains(t, out, "pid=")
	assert.Contains(t, out, "TestStackDumperCapture")
}

func TestStackDumperGrowsBuffer(t *testing.T) {
	var buf bytes.Buffer
	d := NewStackDumper(&buf)
	d.bufSize = 16
	d.Capture("k", 1)
	assert.Contains(t, buf.String(), "goroutine ")
}

func TestStackDumperConcurrent(t *testing.T) {
	var buf bytes.Buffer
	d := NewStackDumper(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Capture("k", 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, bytes.Count(buf.Bytes(), []byte("[STACK ")))
}
