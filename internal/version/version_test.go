package version_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/ludo-technologies/lshdedup/internal/version"
)

func TestShort(t *testing.T) {
	if version.Short() == "" {
		t.Error("Short() should return non-empty string")
	}
}

func TestInfo(t *testing.T) {
	info := version.Info()

	if !strings.HasPrefix(info, "lshdedup ") {
		t.Errorf("Info() should start with the binary name, got %q", info)
	}
	if !strings.Contains(info, runtime.Version()) {
		t.Errorf("Info() should contain Go version %s", runtime.Version())
	}

	expectedArch := runtime.GOOS + "/" + runtime.GOARCH
	if !strings.Contains(info, expectedArch) {
		t.Errorf("Info() should contain OS/Arch %s", expectedArch)
	}

	for _, field := range []string{"Commit:", "Built:", "Go:", "OS/Arch:"} {
		if !strings.Contains(info, field) {
			t.Errorf("Info() should contain %s field", field)
		}
	}
}

func TestGet_LdflagsOverride(t *testing.T) {
	orig := version.Version
	defer func() { version.Version = orig }()

	version.Version = "v1.2.3"
	if got := version.Get().Version; got != "v1.2.3" {
		t.Errorf("Get().Version = %q, want v1.2.3", got)
	}
}
