package objects

import (
	"testing"
	"time"

	"github.com/KostasZigo/gocaf/testutils"
	"github.com/KostasZigo/gocaf/utils"
)

// assertBlobHash verifies blob hash matches expected value for given content.
func assertBlobHash(t *testing.T, blob *Blob, content []byte) {
	t.Helper()

	expectedHash, err := utils.ComputeHash(content, utils.BlobObjectType)
	if err != nil {
		t.Fatalf("Hash computation failed: %v", err)
	}

	if blob.Hash() != expectedHash {
		t.Fatalf("Expected hash [%s], got [%s]", expectedHash, blob.Hash())
	}
}

// assertBlobContent verifies blob stores exact content and correct size.
func assertBlobContent(t *testing.T, blob *Blob, expectedContent []byte) {
	t.Helper()

	if blob.Size() != len(expectedContent) {
		t.Fatalf("Expected size %d, got %d", len(expectedContent), blob.Size())
	}

	if string(blob.Content()) != string(expectedContent) {
		t.Fatalf("Expected content [%q], got [%q]", expectedContent, blob.Content())
	}
}

// createTreeEntry creates tree entry and fails test on error.
func createTreeEntry(t *testing.T, mode FileMode, name, hash string) TreeEntry {
	t.Helper()

	entry, err := NewTreeEntry(mode, name, hash)
	if err != nil {
		t.Fatalf("Failed to create tree entry: %v", err)
	}

	return *entry
}

// createTree creates tree from entries and fails test on error.
func createTree(t *testing.T, entries []TreeEntry) *Tree {
	t.Helper()

	tree, err := NewTree(entries)
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}

	return tree
}

// createAndStoreTree creates tree from entries, stores it, and returns tree.
func createAndStoreTree(t *testing.T, store *ObjectStore, entries []TreeEntry) *Tree {
	t.Helper()

	tree := createTree(t, entries)
	if err := store.Store(tree); err != nil {
		t.Fatalf("Failed to store tree: %v", err)
	}

	return tree
}

// assertTreeEntryEqual verifies two tree entries match.
func assertTreeEntryEqual(t *testing.T, actual, expected TreeEntry) {
	t.Helper()

	if actual.Name() != expected.Name() {
		t.Errorf("Entry name mismatch: expected %s, got %s", expected.Name(), actual.Name())
	}
	if actual.Hash() != expected.Hash() {
		t.Errorf("Entry hash mismatch: expected %s, got %s", expected.Hash(), actual.Hash())
	}
	if actual.Mode() != expected.Mode() {
		t.Errorf("Entry mode mismatch: expected %s, got %s", expected.Mode(), actual.Mode())
	}
}

// createTestAuthor returns test author with UTC timezone.
func createTestAuthor(name, email string) Author {
	return Author{
		Name:      name,
		Email:     email,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

// createAndStoreInitialCommit creates initial commit, stores it, and returns commit.
func createAndStoreInitialCommit(t *testing.T, store *ObjectStore) *Commit {
	t.Helper()

	author := createTestAuthor(testutils.RandomString(10), testutils.RandomString(20))
	commit, err := NewInitialCommit(testutils.RandomHash(), testutils.RandomString(50), author)
	if err != nil {
		t.Fatalf("Failed to create initial commit: %v", err)
	}

	if err := store.Store(commit); err != nil {
		t.Fatalf("Failed to store commit: %v", err)
	}

	return commit
}

// createAndStoreCommit creates commit, stores it, and returns commit.
func createAndStoreCommit(t *testing.T, parentHash string, store *ObjectStore) *Commit {
	t.Helper()

	author := createTestAuthor(testutils.RandomString(10), testutils.RandomString(20))
	commit, err := NewCommit(testutils.RandomHash(), parentHash, testutils.RandomString(50), author)
	if err != nil {
		t.Fatalf("Failed to create commit: %v", err)
	}

	if err := store.Store(commit); err != nil {
		t.Fatalf("Failed to store commit: %v", err)
	}

	return commit
}

// assertCommitEqual verifies two commits match in all fields.
func assertCommitEqual(t *testing.T, actual, expected *Commit) {
	t.Helper()

	if actual.hash != expected.hash {
		t.Errorf("Hash mismatch: expected [%s], got [%s]", expected.hash, actual.hash)
	}

	if actual.treeHash != expected.treeHash {
		t.Errorf("Tree hash mismatch: expected [%s], got [%s]", expected.treeHash, actual.treeHash)
	}

	if actual.parentHash != expected.parentHash {
		t.Errorf("Parent hash mismatch: expected [%s], got [%s]", expected.parentHash, actual.parentHash)
	}

	if actual.message != expected.message {
		t.Errorf("Message mismatch: expected [%s], got [%s]", expected.message, actual.message)
	}

	if actual.author.String() != expected.author.String() {
		t.Errorf("Author mismatch: expected [%s], got [%s]", expected.author.String(), actual.author.String())
	}

	if !actual.author.Timestamp.Equal(expected.author.Timestamp) {
		t.Errorf("Author timestamp mismatch: expected [%s], got [%s]",
			expected.author.Timestamp.Format("2006-01-02 15:04:05 -0700"),
			actual.author.Timestamp.Format("2006-01-02 15:04:05 -0700"))
	}
}

// createAnnotatedTag creates annotated tag and fails test on error.
func createAnnotatedTag(t *testing.T, name, target, message string) *Tag {
	t.Helper()

	tag, err := NewAnnotatedTag(name, target, createTestAuthor("Tagger", "tagger@example.com"), message)
	if err != nil {
		t.Fatalf("Failed to create annotated tag: %v", err)
	}

	return tag
}

// setupStore returns a loose object store over a fresh repository layout.
func setupStore(t *testing.T) (*ObjectStore, string) {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithObjectsDir(t)
	return NewObjectStore(repoPath), repoPath
}
