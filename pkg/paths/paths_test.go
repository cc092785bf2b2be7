package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestDirs(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("ZJ_SIDEBAR_CONFIG_DIR", "")
	t.Setenv("ZJ_SIDEBAR_STATE_DIR", "")
	t.Setenv("HOME", tmp)
	ResetForTest()
	return tmp
}

func TestConfigDir_EnvOverride(t *testing.T) {
	tmp := setupTestDirs(t)
	override := filepath.Join(tmp, "custom-config")
	os.MkdirAll(override, 0755)
	t.Setenv("ZJ_SIDEBAR_CONFIG_DIR", override)
	ResetForTest()

	if got := ConfigDir(); got != override {
		t.Errorf("ConfigDir() = %q, want %q", got, override)
	}
}

func TestConfigDir_Default(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".config", "zj-sidebar")
	if got := ConfigDir(); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestStateDir_EnvOverride(t *testing.T) {
	tmp := setupTestDirs(t)
	override := filepath.Join(tmp, "custom-state")
	os.MkdirAll(override, 0755)
	t.Setenv("ZJ_SIDEBAR_STATE_DIR", override)
	ResetForTest()

	if got := StateDir(); got != override {
		t.Errorf("StateDir() = %q, want %q", got, override)
	}
}

func TestConfigPath(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".config", "zj-sidebar", "config.yaml")
	if got := ConfigPath(); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestCollapsePath(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".local", "state", "zj-sidebar", "collapse-dev.json")
	if got := CollapsePath("dev"); got != want {
		t.Errorf("CollapsePath(\"dev\") = %q, want %q", got, want)
	}
	if got := CollapsePath(""); !strings.HasSuffix(got, "collapse-default.json") {
		t.Errorf("CollapsePath(\"\") = %q, want default slot", got)
	}
}

func TestSocketAndPidPaths(t *testing.T) {
	if got := SocketPath("dev"); got != "/tmp/zj-sidebar-dev.sock" {
		t.Errorf("SocketPath(\"dev\") = %q", got)
	}
	if got := PidPath(""); got != "/tmp/zj-sidebar-default.pid" {
		t.Errorf("PidPath(\"\") = %q", got)
	}
}

func TestEnsureStateDir_Creates(t *testing.T) {
	tmp := setupTestDirs(t)
	expected := filepath.Join(tmp, ".local", "state", "zj-sidebar")

	dir, err := EnsureStateDir()
	if err != nil {
		t.Fatalf("EnsureStateDir() error: %v", err)
	}
	if dir != expected {
		t.Errorf("EnsureStateDir() = %q, want %q", dir, expected)
	}
	info, err := os.Stat(expected)
	if err != nil || !info.IsDir() {
		t.Errorf("EnsureStateDir() did not create directory %q", expected)
	}
}
