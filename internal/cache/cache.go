package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Dir returns the cache directory path, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".smartanalyzer", "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Key computes a unique key filename using inputs (e.g., file hash + tag).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load decodes the cached value for key into out; the second return
// is false on any miss or decode failure.
func Load(key string, out any) bool {
	dir, err := Dir()
	if err != nil {
		return false
	}
	b, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		return false
	}
	return msgpack.Unmarshal(b, out) == nil
}

// Store encodes value under key. Failures are not fatal to a scan.
func Store(key string, value any) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	b, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, key), b, 0o644)
}
