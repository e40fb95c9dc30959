//go:build !windows

package util

// IsRunFromGUI reports whether the process was started by double-click.
// Outside Windows the binary is always started from a shell.
func IsRunFromGUI() bool {
	return false
}
