// Package browser opens post links in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	name, args := command(runtime.GOOS, isWSL(), rawURL)
	if err := start(name, args...); err != nil {
		return fmt.Errorf("opening %s: %w", rawURL, err)
	}
	return nil
}

func command(goos string, wsl bool, rawURL string) (string, []string) {
	switch {
	case goos == "darwin":
		return "open", []string{rawURL}
	case goos == "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	case wsl:
		// Linux tools cannot reach the Windows browser from inside WSL.
		return "rundll32.exe", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

// isWSL reports whether we run under the Windows Subsystem for Linux.
func isWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	release, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(release)), "microsoft")
}
