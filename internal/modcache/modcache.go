// Package modcache mirrors module output files so a build that skips a
// MODULE step can resurrect its outputs without re-running the module's
// assembler: copies of each module's output files kept under the cache
// directory's "artifacts" folder, one subfolder per module storage key,
// generalized from a source-hash keyed build cache.
//
// The cache this was generalized from keyed build artifacts by a SHA-256 of
// source file content, using the hash itself as a change-detection signal.
// That is a content-hash staleness check, which this project's build
// decision never performs (mtime and configuration policy decide staleness
// exclusively, in the quick builder). modcache keeps bbolt and the
// artifact-copy machinery but the hash here is only a filesystem-safe
// storage key derived from the module's name, never consulted to decide
// whether a module is stale.
package modcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "modules"

// Cache is an on-disk mirror of module output files, keyed by module name.
type Cache struct {
	db   *bbolt.DB
	root string
}

// Open opens (creating if necessary) the module cache rooted at cacheDir.
func Open(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "modcache.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open module cache database: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create module cache bucket: %w", err)
	}

	return &Cache{db: db, root: cacheDir}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Store mirrors every path in outputs (relative to outputDir) into the
// cache under moduleName's storage key, and records the mirrored paths for
// later restore.
func (c *Cache) Store(moduleName, outputDir string, outputs []string) error {
	key := StorageKey(moduleName)
	artifactDir := c.artifactDir(key)

	if err := CopyArtifacts(outputDir, artifactDir, outputs); err != nil {
		return fmt.Errorf("failed to mirror outputs of module %s: %w", moduleName, err)
	}

	entry := Entry{
		ModuleName: moduleName,
		Outputs:    outputs,
		Timestamp:  time.Now(),
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// Restore copies moduleName's mirrored outputs back into destDir. Returns
// ok=false if nothing was ever mirrored for this module.
func (c *Cache) Restore(moduleName, destDir string) (ok bool, err error) {
	key := StorageKey(moduleName)

	var entry Entry
	found := false
	err = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	if err := RestoreArtifacts(c.artifactDir(key), destDir, entry.Outputs); err != nil {
		return false, fmt.Errorf("failed to restore outputs of module %s: %w", moduleName, err)
	}
	return true, nil
}

// Clear removes every mirrored module and its metadata.
func (c *Cache) Clear() error {
	if err := c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	}); err != nil {
		return err
	}

	artifactsDir := filepath.Join(c.root, "artifacts")
	if err := os.RemoveAll(artifactsDir); err != nil {
		return fmt.Errorf("failed to remove mirrored artifacts: %w", err)
	}
	return nil
}

// Stats reports the number of mirrored modules and the total size of their
// mirrored artifacts, exercised by "callisto cache stats".
func (c *Cache) Stats() (count int, totalSize int64, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	artifactsDir := filepath.Join(c.root, "artifacts")
	_ = filepath.Walk(artifactsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		totalSize += info.Size()
		return nil
	})

	return count, totalSize, nil
}

func (c *Cache) artifactDir(key string) string {
	return filepath.Join(c.root, "artifacts", key)
}
