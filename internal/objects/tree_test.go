package objects

import (
	"strings"
	"testing"

	"github.com/KostasZigo/gocaf/testutils"
	"github.com/KostasZigo/gocaf/utils"
)

// TREE ENTRY TESTS

func TestNewTreeEntry(t *testing.T) {
	hash := testutils.RandomHash()
	entry, err := NewTreeEntry(ModeRegularFile, "test.txt", hash)

	if err != nil {
		t.Fatalf("Expected New Tree Entry to be created: %v", err)
	}

	if entry.Mode() != ModeRegularFile {
		t.Errorf("Expected mode %s, got %s", ModeRegularFile, entry.Mode())
	}

	if entry.Name() != "test.txt" {
		t.Errorf("Expected name 'test.txt', got %s", entry.Name())
	}

	if entry.Hash() != hash {
		t.Errorf("Expected hash %s, got %s", hash, entry.Hash())
	}
}

func TestNewTreeEntry_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mode      FileMode
		entryName string
		hash      string
	}{
		{"invalid mode", FileMode("777777"), "a.txt", testutils.RandomHash()},
		{"empty name", ModeRegularFile, "", testutils.RandomHash()},
		{"name with slash", ModeRegularFile, "a/b", testutils.RandomHash()},
		{"dot dot", ModeDirectory, "..", testutils.RandomHash()},
		{"short hash", ModeRegularFile, "a.txt", "abc123"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewTreeEntry(test.mode, test.entryName, test.hash); err == nil {
				t.Fatal("Expected error for invalid tree entry")
			}
		})
	}
}

func TestTreeEntry_IsDirectory(t *testing.T) {
	dirEntry := createTreeEntry(t, ModeDirectory, "src", testutils.RandomHash())
	fileEntry := createTreeEntry(t, ModeRegularFile, "main.go", testutils.RandomHash())

	if !dirEntry.IsDirectory() {
		t.Fatal("Expected directory entry to be identified as directory")
	}

	if fileEntry.IsDirectory() {
		t.Fatal("Expected file entry not to be identified as directory")
	}
}

// TREE TESTS

func TestNewTree_EmptyTree(t *testing.T) {
	tree := createTree(t, []TreeEntry{})

	// Hash for empty tree
	expectedHash, err := utils.ComputeHash([]byte(""), utils.TreeObjectType)
	if err != nil {
		t.Fatal("Expected hash to be computed")
	}

	if tree.Hash() != expectedHash {
		t.Errorf("Expected empty tree hash %s, got %s", expectedHash, tree.Hash())
	}
	if tree.Hash() != "4b825dc642cb6eb9a060e54bf8d69288fbee4904" {
		t.Errorf("Empty tree hash = %s", tree.Hash())
	}
}

func TestNewTree_SingleEntry(t *testing.T) {
	blob := NewBlob([]byte("test content\n"))
	tree := createTree(t, []TreeEntry{createTreeEntry(t, ModeRegularFile, "test.txt", blob.Hash())})

	if tree.Hash() == "" {
		t.Error("Tree hash should not be empty")
	}

	if len(tree.Entries()) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(tree.Entries()))
	}
}

func TestNewTree_SortsEntries(t *testing.T) {
	// Add entries in wrong order
	entries := []TreeEntry{
		createTreeEntry(t, ModeRegularFile, "z.txt", testutils.RandomHash()),
		createTreeEntry(t, ModeRegularFile, "a.txt", testutils.RandomHash()),
		createTreeEntry(t, ModeRegularFile, "m.txt", testutils.RandomHash()),
	}

	tree := createTree(t, entries)
	sortedEntries := tree.Entries()

	// Should be sorted alphabetically
	for i, expected := range []string{"a.txt", "m.txt", "z.txt"} {
		if sortedEntries[i].Name() != expected {
			t.Errorf("Expected entry %d to be %q, got %s", i, expected, sortedEntries[i].Name())
		}
	}
}

// TestNewTree_OrderIndependentHash verifies input order never changes the hash.
func TestNewTree_OrderIndependentHash(t *testing.T) {
	first := createTreeEntry(t, ModeRegularFile, "a.txt", testutils.RandomHash())
	second := createTreeEntry(t, ModeDirectory, "b", testutils.RandomHash())

	tree1 := createTree(t, []TreeEntry{first, second})
	tree2 := createTree(t, []TreeEntry{second, first})

	if tree1.Hash() != tree2.Hash() {
		t.Fatalf("Tree hash depends on entry order: %s != %s", tree1.Hash(), tree2.Hash())
	}
}

// TestNewTree_DirectorySortsWithSlash verifies "foo" dir sorts after "foo.txt".
func TestNewTree_DirectorySortsWithSlash(t *testing.T) {
	tree := createTree(t, []TreeEntry{
		createTreeEntry(t, ModeDirectory, "foo", testutils.RandomHash()),
		createTreeEntry(t, ModeRegularFile, "foo.txt", testutils.RandomHash()),
	})

	entries := tree.Entries()
	if entries[0].Name() != "foo.txt" || entries[1].Name() != "foo" {
		t.Errorf("Unexpected order: %s, %s", entries[0].Name(), entries[1].Name())
	}
}

func TestNewTree_DuplicateNames(t *testing.T) {
	_, err := NewTree([]TreeEntry{
		createTreeEntry(t, ModeRegularFile, "a", testutils.RandomHash()),
		createTreeEntry(t, ModeRegularFile, "a.txt", testutils.RandomHash()),
		createTreeEntry(t, ModeDirectory, "a", testutils.RandomHash()),
	})

	if err == nil || !strings.Contains(err.Error(), "duplicate tree entry name") {
		t.Fatalf("Expected duplicate name error, got %v", err)
	}
}

func TestTree_NestedStructure(t *testing.T) {
	mainBlob := NewBlob([]byte("package main\n"))
	readmeBlob := NewBlob([]byte("# Project\n"))

	// Create subtree for src/ directory
	srcTree := createTree(t, []TreeEntry{createTreeEntry(t, ModeRegularFile, "main.go", mainBlob.Hash())})

	rootTree := createTree(t, []TreeEntry{
		createTreeEntry(t, ModeRegularFile, "README.md", readmeBlob.Hash()),
		createTreeEntry(t, ModeDirectory, "src", srcTree.Hash()),
	})

	if len(rootTree.Entries()) != 2 {
		t.Errorf("Expected 2 entries in root tree, got %d", len(rootTree.Entries()))
	}

	srcEntry, found := rootTree.FindEntry("src")
	if !found {
		t.Fatal("Should find 'src' directory")
	}
	if !srcEntry.IsDirectory() {
		t.Error("'src' should be identified as directory")
	}
	if srcEntry.Hash() != srcTree.Hash() {
		t.Error("src entry hash should match src tree hash")
	}

	if _, found := rootTree.FindEntry("missing"); found {
		t.Error("Should not find missing entry")
	}
}

// TestTree_ParseRoundTrip verifies parsed tree bytes reproduce the same hash.
func TestTree_ParseRoundTrip(t *testing.T) {
	tree := createTree(t, []TreeEntry{
		createTreeEntry(t, ModeExecutable, "run.sh", testutils.RandomHash()),
		createTreeEntry(t, ModeSymlink, "link", testutils.RandomHash()),
		createTreeEntry(t, ModeDirectory, "lib", testutils.RandomHash()),
	})

	parsed, err := ParseObject(tree.Data())
	if err != nil {
		t.Fatalf("ParseObject failed: %v", err)
	}

	parsedTree, ok := parsed.(*Tree)
	if !ok {
		t.Fatalf("Expected *Tree, got %T", parsed)
	}
	if parsedTree.Hash() != tree.Hash() {
		t.Fatalf("Round-trip hash mismatch: %s != %s", parsedTree.Hash(), tree.Hash())
	}
	for i, entry := range parsedTree.Entries() {
		assertTreeEntryEqual(t, entry, tree.Entries()[i])
	}
}
