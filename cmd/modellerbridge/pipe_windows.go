//go:build windows

package main

import (
	"io"
	"os"
)

// channelPath maps an outbound channel id to its named pipe.
func channelPath(id string) string {
	return `\\.\pipe\` + id
}

func openChannel(id string) (io.WriteCloser, error) {
	return os.OpenFile(channelPath(id), os.O_WRONLY, 0)
}
