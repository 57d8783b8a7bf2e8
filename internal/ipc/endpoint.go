package ipc

import (
	"fmt"
	"os"
	"path/filepath"
)

const socketName = "commander.sock"

// DefaultEndpoint returns the current user's socket path. It prefers
// $XDG_RUNTIME_DIR and falls back to a uid-scoped directory under the temp dir.
func DefaultEndpoint() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "commander", socketName)
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("commander-%d", os.Getuid()), socketName)
}

// LockPath is the single-instance lock kept next to the socket.
func LockPath(endpoint string) string { return endpoint + ".lock" }
