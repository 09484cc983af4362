package ui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// Opener hands a URL to the desktop.
type Opener func(url string) error

// Copier puts text on the clipboard.
type Copier func(text string) error

// OpenURL opens a URL in the default browser.
// Set WB_NO_BROWSER=1 to suppress browser opening (useful for tests).
func OpenURL(url string) error {
	if os.Getenv("WB_NO_BROWSER") != "" || os.Getenv("WB_TEST_MODE") != "" {
		return nil
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// CopyText writes text to the system clipboard.
func CopyText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
