// Package builder implements the quick and full build decision procedures:
// the engine that decides, for each descriptor in the build order, whether
// a step can be skipped, reinserted, or forces a full rebuild.
package builder

import "github.com/mellonpizza/callisto/internal/report"

// HijacksGoneBad reports whether re-running a PATCH step has shrunk its
// hijacked address range since the prior build. old and new are the
// (address, length) pairs recorded before and after re-insertion. Growth
// is fine; any address present in old but absent from new means the bytes
// it used to own are now stale, and the ROM is corrupt unless a full
// rebuild happens.
func HijacksGoneBad(old, new []report.Hijack) bool {
	newAddrs := expandHijacks(new)
	for _, addr := range expandAddressList(old) {
		if !newAddrs[addr] {
			return true
		}
	}
	return false
}

// expandHijacks flattens a set of (address, length) pairs into the set of
// individual byte addresses they cover.
func expandHijacks(hijacks []report.Hijack) map[int]bool {
	set := make(map[int]bool)
	for _, addr := range expandAddressList(hijacks) {
		set[addr] = true
	}
	return set
}

func expandAddressList(hijacks []report.Hijack) []int {
	var addrs []int
	for _, h := range hijacks {
		for i := 0; i < h.Length; i++ {
			addrs = append(addrs, h.Address+i)
		}
	}
	return addrs
}
