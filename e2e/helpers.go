package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildBinary compiles cmd/lshdedup into a temporary directory
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "lshdedup")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/lshdedup")

	// Build from the project root, one level up from the e2e directory
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build lshdedup binary: %v\n%s", err, out)
	}
	return binaryPath
}

// runBinary executes the binary with CI set so no progress bar is drawn
func runBinary(t *testing.T, binary, dir string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "CI=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// writeFile creates a file below dir, creating parent directories
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// createTestConfigFile writes a .lshdedup.toml directing reports to outputDir
func createTestConfigFile(t *testing.T, testDir, outputDir string) {
	t.Helper()
	content := fmt.Sprintf("[output]\ndirectory = %q\n", outputDir)
	writeFile(t, testDir, ".lshdedup.toml", content)
}
