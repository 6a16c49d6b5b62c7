package repository

import (
	"context"
	"testing"
	"time"

	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/testutils"
)

// setupRepo initializes and opens a repository in a fresh temp dir.
func setupRepo(t *testing.T, opts ...InitOption) *Repository {
	t.Helper()

	repoPath := t.TempDir()
	if err := InitRepository(repoPath, opts...); err != nil {
		t.Fatalf("InitRepository failed: %v", err)
	}

	repo, err := Open(repoPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func testAuthor() objects.Author {
	return objects.Author{
		Name:      "Test User",
		Email:     "test@example.com",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

// writeWorkFile writes content to a path relative to the working directory.
func writeWorkFile(t *testing.T, repo *Repository, relPath, content string) string {
	t.Helper()
	return testutils.CreateTestFile(t, repo.WorkDir(), relPath, []byte(content))
}

// commitAll commits the working directory and returns the commit hash.
func commitAll(t *testing.T, repo *Repository, message string) string {
	t.Helper()

	commit, err := repo.CommitWorkingDir(context.Background(), testAuthor(), message)
	if err != nil {
		t.Fatalf("CommitWorkingDir(%q) failed: %v", message, err)
	}
	return commit.Hash()
}

// assertHeadCommit verifies HEAD resolves to expected.
func assertHeadCommit(t *testing.T, repo *Repository, expected string) {
	t.Helper()

	head, err := repo.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if head != expected {
		t.Fatalf("HEAD = %s, want %s", head, expected)
	}
}
