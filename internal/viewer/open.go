// Package viewer opens rendered artifacts in the browser and serves them
// over HTTP alongside the run history API.
package viewer

import (
	"os/exec"
	"runtime"

	"github.com/rotisserie/eris"
)

// Open launches the OS default application for the given path or URL.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default: // Linux and others
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return eris.Wrapf(err, "viewer: open %s", path)
	}
	return nil
}
