// Package editor opens files in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoEditor is returned when $VISUAL and $EDITOR are unset and no fallback
// editor is installed.
var ErrNoEditor = errors.New("no editor found; set $EDITOR")

var fallbacks = []string{"nano", "vi"}

// Command builds the command that edits path. $VISUAL wins over $EDITOR and
// either may carry arguments, e.g. "code --wait".
func Command(path string) (*exec.Cmd, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return exec.Command(fields[0], append(fields[1:], path)...), nil
		}
	}
	for _, name := range fallbacks {
		if bin, err := exec.LookPath(name); err == nil {
			return exec.Command(bin, path), nil
		}
	}
	return nil, ErrNoEditor
}

// EditFile runs the editor on path attached to the current terminal and
// waits for it to exit.
func EditFile(path string) error {
	cmd, err := Command(path)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return nil
}
