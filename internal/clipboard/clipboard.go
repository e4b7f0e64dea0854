// Package clipboard copies rendered letters to the system clipboard.
package clipboard

import (
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"
)

// ClipboardError represents an error when no clipboard utility is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a ClipboardError with installation instructions
func NewClipboardError() *ClipboardError {
	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: "no clipboard utility found. " + GetInstallInstructions(),
	}
}

// Clipboard writes text through a backend. The zero value is not usable;
// use System or New.
type Clipboard struct {
	write     func(string) error
	available func() bool
}

// New builds a Clipboard over custom functions.
func New(write func(string) error, available func() bool) *Clipboard {
	return &Clipboard{write: write, available: available}
}

// System is the clipboard of the running desktop session.
var System = New(clipboard.WriteAll, func() bool { return !clipboard.Unsupported })

// Copy copies text to the clipboard
func (c *Clipboard) Copy(text string) error {
	if !c.available() {
		return NewClipboardError()
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// CopyWithFallback copies text and returns a status message on success.
// Missing utilities surface as a *ClipboardError.
func (c *Clipboard) CopyWithFallback(text string) (string, error) {
	if err := c.Copy(text); err != nil {
		return "", err
	}
	return "Copied to clipboard!", nil
}

// Available reports whether a clipboard backend is usable
func (c *Clipboard) Available() bool {
	return c.available()
}

// Copy copies text to the system clipboard
func Copy(text string) error {
	return System.Copy(text)
}

// CopyWithFallback copies text to the system clipboard
func CopyWithFallback(text string) (string, error) {
	return System.CopyWithFallback(text)
}

// IsClipboardAvailable checks if the system clipboard is usable
func IsClipboardAvailable() bool {
	return System.Available()
}

// GetInstallInstructions returns installation instructions for clipboard utilities
func GetInstallInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", runtime.GOOS)
	}
}
