// Package paths centralizes path resolution for zj-sidebar's config,
// shared state, and runtime files.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/zj-sidebar/config.yaml  (override: ZJ_SIDEBAR_CONFIG_DIR)
//	State:   ~/.local/state/zj-sidebar/        (override: ZJ_SIDEBAR_STATE_DIR)
//	Runtime: /tmp/zj-sidebar-*                 (sockets, pidfiles, logs)
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	configDirOnce   sync.Once
	configDirCached string

	stateDirOnce   sync.Once
	stateDirCached string
)

// ConfigDir resolves the config directory.
// Priority: ZJ_SIDEBAR_CONFIG_DIR env > ~/.config/zj-sidebar/
func ConfigDir() string {
	configDirOnce.Do(func() {
		if env := os.Getenv("ZJ_SIDEBAR_CONFIG_DIR"); env != "" {
			configDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				configDirCached = "."
			} else {
				configDirCached = filepath.Join(home, ".config", "zj-sidebar")
			}
		}
	})
	return configDirCached
}

// StateDir resolves the shared state directory.
// Priority: ZJ_SIDEBAR_STATE_DIR env > ~/.local/state/zj-sidebar/
func StateDir() string {
	stateDirOnce.Do(func() {
		if env := os.Getenv("ZJ_SIDEBAR_STATE_DIR"); env != "" {
			stateDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				stateDirCached = "."
			} else {
				stateDirCached = filepath.Join(home, ".local", "state", "zj-sidebar")
			}
		}
	})
	return stateDirCached
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// CollapsePath returns the shared collapse-record slot for a session.
// All instances of the session rendezvous on this one file.
func CollapsePath(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return filepath.Join(StateDir(), fmt.Sprintf("collapse-%s.json", sessionID))
}

// SocketPath returns the per-session bus socket path.
func SocketPath(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return fmt.Sprintf("/tmp/zj-sidebar-%s.sock", sessionID)
}

// PidPath returns the per-session bus pidfile path.
func PidPath(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return fmt.Sprintf("/tmp/zj-sidebar-%s.pid", sessionID)
}

// EnsureStateDir creates the state directory if it doesn't exist and
// returns its path.
func EnsureStateDir() (string, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return dir, nil
}

// ResetForTest clears cached values so tests can re-run resolution
// logic. Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	stateDirOnce = sync.Once{}
	stateDirCached = ""
}
