package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "Lever"

// DefaultDataDir returns the per-user directory the state document lives in:
// ~/Library/Application Support/Lever on macOS, %AppData%\Lever on Windows,
// and $XDG_DATA_HOME/Lever (or ~/.local/share/Lever) elsewhere.
func DefaultDataDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, appDirName)
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appDirName)
	}
	return filepath.Join(home, ".local", "share", appDirName)
}
