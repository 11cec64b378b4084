package config

import (
	"os"
	"path/filepath"
)

// ConfigStem is the dotfile basename local and global configuration files
// share, e.g. ".callisto.yml".
const ConfigStem = "callisto"

// ConfigExtensions are the file extensions config lookup accepts, tried in
// this order wherever a config file is searched for by stem alone.
var ConfigExtensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig walks up from dir looking for a dotfile named
// "."+stem+"."+ext for each of ConfigExtensions, returning the first match's
// path or "" if none is found all the way to the filesystem root. Generalized
// over stem so callers other than the project-local lookup (a future
// per-module override file, say) can reuse the same walk without
// duplicating it.
func FindLocalConfig(dir, stem string) string {
	for {
		for _, ext := range ConfigExtensions {
			path := filepath.Join(dir, "."+stem+"."+ext)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
