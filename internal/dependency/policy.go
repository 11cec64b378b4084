// Package dependency holds the two dependency record kinds an insertable can
// report against the state it consumed: resources (files) and configuration
// keys, each tagged with a blast-radius Policy.
package dependency

import (
	"encoding/json"
	"fmt"
)

// Policy tags the blast radius of a dependency change.
type Policy int

const (
	// Rebuild means a difference forces a full rebuild; no quick path.
	Rebuild Policy = iota
	// Reinsert means a difference re-runs only the owning step.
	Reinsert
	// Remain means the recorded state is informational and never forces work.
	Remain
)

func (p Policy) String() string {
	switch p {
	case Rebuild:
		return "REBUILD"
	case Reinsert:
		return "REINSERT"
	case Remain:
		return "REMAIN"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// MarshalJSON renders the policy as its canonical uppercase name.
func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a policy from its canonical uppercase name.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParsePolicy(s)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// ParsePolicy converts a policy's canonical name back into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "REBUILD":
		return Rebuild, nil
	case "REINSERT":
		return Reinsert, nil
	case "REMAIN":
		return Remain, nil
	default:
		return 0, fmt.Errorf("unknown dependency policy %q", s)
	}
}
