//go:build !unix

package rossym

import "os"

// fileReadable is the non-unix fallback for the path-chop probe in
// lineiter.go.
func fileReadable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
