// Package bytespool recycles scratch buffers for hashing.
package bytespool

import (
	"bytes"
	"sync"
)

const maxCap = 64 << 10

var pool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

func Get() *bytes.Buffer {
	return pool.Get().(*bytes.Buffer)
}

// Put resets b and returns it to the pool unless it grew past maxCap.
func Put(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxCap {
		return
	}
	b.Reset()
	pool.Put(b)
}
