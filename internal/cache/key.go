package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// DocumentKey derives a cache key from a file's absolute path and
// modification time, so edits to the file invalidate its cached parse.
func DocumentKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	keyStr := abs
	if info, err := os.Stat(path); err == nil {
		keyStr = fmt.Sprintf("%s:%d:%d", abs, info.ModTime().UnixNano(), info.Size())
	}

	sum := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(sum[:])
}
