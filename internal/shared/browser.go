package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the platform launcher for opening url.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	default:
		return nil, fmt.Errorf("%w: no browser launcher for %s", ErrInvalidArgument, goos)
	}
}

// OpenBrowser opens the default browser at url so the user can approve the
// authorization request. The launcher is started, not waited on.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
