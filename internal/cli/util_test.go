package cli_test

import (
	"bytes"
	"io"
	"sync"
	"time"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func ioPipe() (io.Reader, io.Writer) {
	return io.Pipe()
}
