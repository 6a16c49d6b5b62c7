package testutils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/gocaf/internal/constants"
)

// RandomString generates a random hex string of n bytes
func RandomString(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// RandomHash generates a random 40-character SHA-1 hash
func RandomHash() string {
	return RandomString(constants.HashByteLength)
}

// SetupTestRepoWithObjectsDir creates a temporary directory with .caf/objects structure.
// This is useful for tests that need the object store but not full initialization.
func SetupTestRepoWithObjectsDir(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	objectsDir := filepath.Join(repoPath, constants.RepoDir, constants.Objects)

	if err := os.MkdirAll(objectsDir, constants.DirPerms); err != nil {
		t.Fatalf("Failed to create %s/%s: %v", constants.RepoDir, constants.Objects, err)
	}

	return repoPath
}

// SetupTestRepoWithInit creates a fully initialized .caf repository structure by hand.
// This includes objects/, refs/heads/, refs/tags/, HEAD, the unborn default branch and config.toml.
func SetupTestRepoWithInit(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	repoDir := filepath.Join(repoPath, constants.RepoDir)

	dirs := []string{
		filepath.Join(repoDir, constants.Objects),
		filepath.Join(repoDir, constants.Refs, constants.Heads),
		filepath.Join(repoDir, constants.Refs, constants.Tags),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	headContent := []byte(constants.DefaultRefPrefix + constants.DefaultBranch + "\n")
	CreateTestFile(t, repoDir, constants.Head, headContent)
	CreateTestFile(t, filepath.Join(repoDir, constants.Refs, constants.Heads), constants.DefaultBranch, nil)
	CreateTestFile(t, repoDir, constants.ConfigFile, []byte(
		"[core]\n"+
			"default_branch = \""+constants.DefaultBranch+"\"\n"+
			"storage = \""+constants.StorageLoose+"\"\n"+
			"format_version = 1\n"))

	return repoPath
}

// CreateTestFile creates a file with given content in the specified directory.
// Missing parent directories are created. Returns the full path to the created file.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(filePath), constants.DirPerms); err != nil {
		t.Fatalf("Failed to create parent directory for %s: %v", filename, err)
	}
	if err := os.WriteFile(filePath, content, constants.FilePerms); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}

	return filePath
}

// ReadTestFile returns file content and fails the test on error.
func ReadTestFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(content)
}

// AssertFileExists checks that a file exists at the given path.
// Fails the test if the file doesn't exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected file to exist at %s", path)
	}
}

// AssertFileNotExists checks that a file does NOT exist at the given path.
// Fails the test if the file exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Lstat(path); err == nil {
		t.Errorf("Expected file to NOT exist at %s", path)
	}
}

// AssertFileContent checks the file at path holds exactly expected.
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("Failed to read %s: %v", path, err)
		return
	}
	if string(content) != expected {
		t.Errorf("%s content = %q, want %q", path, content, expected)
	}
}

// AssertDirExists checks that a directory exists at the given path.
// Fails the test if the directory doesn't exist.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected directory to exist at %s", path)
		return
	}
	if err != nil {
		t.Errorf("Failed to stat directory %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory, but it's a file", path)
	}
}

// AssertRepositoryStructure validates complete .caf directory structure.
// Verifies objects/, refs/heads/, refs/tags/ and config.toml exist, HEAD names the
// expected branch and the branch file is present but unborn.
func AssertRepositoryStructure(t *testing.T, repoPath, branch string) {
	t.Helper()

	repoDir := filepath.Join(repoPath, constants.RepoDir)
	AssertDirExists(t, repoDir)

	expectedDirs := []string{
		constants.Objects,
		constants.Refs,
		filepath.Join(constants.Refs, constants.Heads),
		filepath.Join(constants.Refs, constants.Tags),
	}
	for _, dir := range expectedDirs {
		AssertDirExists(t, filepath.Join(repoDir, dir))
	}

	AssertFileExists(t, filepath.Join(repoDir, constants.ConfigFile))

	headPath := filepath.Join(repoDir, constants.Head)
	AssertFileContent(t, headPath, constants.DefaultRefPrefix+branch+"\n")

	AssertFileContent(t, filepath.Join(repoDir, constants.Refs, constants.Heads, branch), "")
}
