// Package strpool recycles the builders reports are rendered into.
package strpool

import (
	"strings"
	"sync"
)

// builders grown past this are left to the garbage collector
const maxCap = 64 << 10

var pool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func Get() *strings.Builder {
	return pool.Get().(*strings.Builder)
}

// Put resets b and returns it to the pool. Callers must not use b afterwards.
func Put(b *strings.Builder) {
	if b == nil || b.Cap() > maxCap {
		return
	}
	b.Reset()
	pool.Put(b)
}
