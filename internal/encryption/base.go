package encryption

import (
	"bytes"
	"sync"
)

// maxPooledBuffer caps the capacity of buffers returned to the pool so one
// large file does not pin its memory for the life of the process
const maxPooledBuffer = 1 << 20

// bufferPool is a shared pool of scratch buffers for the compression stage
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// getBuffer gets an empty buffer from the pool
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}

// detach copies the buffer contents so the buffer itself can be pooled again
func detach(buf *bytes.Buffer) []byte {
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
