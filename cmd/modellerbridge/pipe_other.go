//go:build !windows

package main

import (
	"io"
	"os"
	"path/filepath"
)

// channelPath maps an outbound channel id to a FIFO or file. Absolute paths
// are used as-is; bare ids live in the temp directory.
func channelPath(id string) string {
	if filepath.IsAbs(id) {
		return id
	}
	return filepath.Join(os.TempDir(), id)
}

func openChannel(id string) (io.WriteCloser, error) {
	return os.OpenFile(channelPath(id), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
}
