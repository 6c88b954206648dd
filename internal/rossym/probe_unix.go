//go:build unix

package rossym

import "golang.org/x/sys/unix"

// fileReadable probes whether path exists and can be read, used only by the
// path-chop heuristic in lineiter.go. Best-effort: the probe is a side
// effect on the host filesystem, not a correctness requirement.
func fileReadable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
