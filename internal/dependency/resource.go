package dependency

import (
	"encoding/json"
	"os"
)

// ResourceDependency records a file an insertable consumed and the mtime it
// observed at the time it recorded this dependency. LastWriteTime is a
// platform-neutral 64-bit token normalised to Unix nanoseconds so a report
// is portable across the host OSes Go supports. HasLastWriteTime is false
// iff the file did not exist when this dependency was recorded.
type ResourceDependency struct {
	Path             string
	Policy           Policy
	HasLastWriteTime bool
	LastWriteTime    int64
}

// resourceDependencyJSON is the on-disk shape: last_write_time is omitted
// entirely when the file did not exist at record time.
type resourceDependencyJSON struct {
	Path          string `json:"path"`
	Policy        Policy `json:"policy"`
	LastWriteTime *int64 `json:"last_write_time,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r ResourceDependency) MarshalJSON() ([]byte, error) {
	out := resourceDependencyJSON{Path: r.Path, Policy: r.Policy}
	if r.HasLastWriteTime {
		out.LastWriteTime = &r.LastWriteTime
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ResourceDependency) UnmarshalJSON(data []byte) error {
	var in resourceDependencyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	r.Path = in.Path
	r.Policy = in.Policy
	if in.LastWriteTime != nil {
		r.HasLastWriteTime = true
		r.LastWriteTime = *in.LastWriteTime
	} else {
		r.HasLastWriteTime = false
		r.LastWriteTime = 0
	}
	return nil
}

// Equal reports equality over (path, policy, last_write_time).
func (r ResourceDependency) Equal(other ResourceDependency) bool {
	return r.Path == other.Path &&
		r.Policy == other.Policy &&
		r.HasLastWriteTime == other.HasLastWriteTime &&
		(!r.HasLastWriteTime || r.LastWriteTime == other.LastWriteTime)
}

// ObserveResource stats path and returns the ResourceDependency an insertable
// would record for it right now, under the given policy. A missing file is
// not an error: it is recorded as HasLastWriteTime=false.
func ObserveResource(path string, policy Policy) (ResourceDependency, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ResourceDependency{Path: path, Policy: policy}, nil
		}
		return ResourceDependency{}, err
	}

	return ResourceDependency{
		Path:             path,
		Policy:           policy,
		HasLastWriteTime: true,
		LastWriteTime:    info.ModTime().UnixNano(),
	}, nil
}

// Changed reports whether the file at r.Path currently has a different
// existence/mtime state than the one r recorded. Absence and presence are
// treated as distinct states.
func (r ResourceDependency) Changed() (bool, error) {
	current, err := ObserveResource(r.Path, r.Policy)
	if err != nil {
		return false, err
	}
	return current.HasLastWriteTime != r.HasLastWriteTime ||
		(r.HasLastWriteTime && current.LastWriteTime != r.LastWriteTime), nil
}
