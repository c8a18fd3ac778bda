package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Key builds "prefix:hash" from the query parameters that shape the result.
// The prefix stays readable so InvalidatePrefix can target it; the rest is
// hashed so arbitrary search strings can't bloat or collide keys.
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix + ":all"
	}
	raw := strings.Join(parts, "|")
	sum := md5.Sum([]byte(raw))
	return prefix + ":" + hex.EncodeToString(sum[:])
}
