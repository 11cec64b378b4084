package modcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKey derives a filesystem-safe directory name for moduleName. It is
// a storage key only, never consulted to decide whether a module's
// insertion is stale.
func StorageKey(moduleName string) string {
	sum := sha256.Sum256([]byte(moduleName))
	return hex.EncodeToString(sum[:])
}
