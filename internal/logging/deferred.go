package logging

import (
	"bytes"
	"io"
	"sync"
)

// Deferred holds log output while a full-screen view owns the terminal.
type Deferred struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (d *Deferred) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Flush writes everything held so far to w and empties the buffer.
func (d *Deferred) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.buf.WriteTo(w)
	return err
}
