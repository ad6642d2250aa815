package hashutil

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/bloops-games/wordlebot/internal/bytespool"
)

// Sha1Parts hashes parts in order. Parts are separated so that
// ["ab", "c"] and ["a", "bc"] differ.
func Sha1Parts(parts []string) string {
	buf := bytespool.Get()
	defer bytespool.Put(buf)

	for _, p := range parts {
		buf.WriteString(p)
		buf.WriteByte(0)
	}

	sum := sha1.Sum(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
