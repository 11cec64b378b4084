package modcache

import "time"

// Entry records what was mirrored for a single module.
type Entry struct {
	ModuleName string    `json:"module_name"`
	Outputs    []string  `json:"outputs"`
	Timestamp  time.Time `json:"timestamp"`
}
