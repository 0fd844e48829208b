// Package clipboard provides cross-platform clipboard access via shell commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when clipboard access is not available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// command is one clipboard writer that reads the text on stdin.
type command struct {
	name string
	args []string
}

// candidates lists writers per platform in order of preference.
var candidates = map[string][]command{
	"darwin": {
		{name: "pbcopy"},
	},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
	"windows": {
		{name: "clip"},
	},
}

// findCommand returns the first available writer for goos.
func findCommand(goos string, lookPath func(string) (string, error)) (command, error) {
	for _, c := range candidates[goos] {
		if _, err := lookPath(c.name); err == nil {
			return c, nil
		}
	}
	return command{}, ErrClipboardUnavailable
}

// IsAvailable checks if clipboard functionality is available on this system.
func IsAvailable() bool {
	_, err := findCommand(runtime.GOOS, exec.LookPath)
	return err == nil
}

// Copy copies the given text to the system clipboard.
// Returns ErrClipboardUnavailable if clipboard access is not available.
func Copy(text string) error {
	c, err := findCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}

	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", c.name, err)
	}
	return nil
}
