package builder

import (
	"bytes"
	"sync"

	"github.com/melih/dockgen/internal/core/ports"
)

// lineWriter turns an output stream into newline-terminated chunks.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	sink ports.LogSink
}

func newLineWriter(sink ports.LogSink) *lineWriter {
	return &lineWriter{sink: sink}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			return len(p), nil
		}
		w.sink(string(w.buf.Next(i + 1)))
	}
}

// Flush emits a trailing line that had no newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.sink(w.buf.String())
		w.buf.Reset()
	}
}
