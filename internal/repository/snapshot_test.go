package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/objects"
)

func TestSaveFile(t *testing.T) {
	repo := setupRepo(t)
	path := writeWorkFile(t, repo, "notes.txt", "remember the milk")

	blob, err := repo.SaveFile(path)
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	stored, err := repo.Store().ReadBlob(blob.Hash())
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if string(stored.Content()) != "remember the milk" {
		t.Errorf("Stored content = %q", stored.Content())
	}
}

func TestSaveDir_StoresEveryObject(t *testing.T) {
	repo := setupRepo(t)
	writeWorkFile(t, repo, "README.md", "readme")
	writeWorkFile(t, repo, "src/main.go", "package main")
	writeWorkFile(t, repo, "src/lib/util.go", "package lib")

	rootHash, err := repo.SaveDir(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("SaveDir failed: %v", err)
	}

	root, err := repo.Store().ReadTree(rootHash)
	if err != nil {
		t.Fatalf("ReadTree(root) failed: %v", err)
	}
	if len(root.Entries()) != 2 {
		t.Fatalf("Expected 2 root entries, got %d", len(root.Entries()))
	}

	src, ok := root.FindEntry("src")
	if !ok || !src.IsDirectory() {
		t.Fatalf("Expected src directory entry, got %v", src)
	}
	srcTree, err := repo.Store().ReadTree(src.Hash())
	if err != nil {
		t.Fatalf("ReadTree(src) failed: %v", err)
	}

	lib, ok := srcTree.FindEntry("lib")
	if !ok {
		t.Fatal("Expected lib entry under src")
	}
	libTree, err := repo.Store().ReadTree(lib.Hash())
	if err != nil {
		t.Fatalf("ReadTree(lib) failed: %v", err)
	}

	util, ok := libTree.FindEntry("util.go")
	if !ok {
		t.Fatal("Expected util.go entry under src/lib")
	}
	blob, err := repo.Store().ReadBlob(util.Hash())
	if err != nil {
		t.Fatalf("ReadBlob(util.go) failed: %v", err)
	}
	if string(blob.Content()) != "package lib" {
		t.Errorf("util.go content = %q", blob.Content())
	}
}

func TestSaveDir_SkipsRepoDir(t *testing.T) {
	repo := setupRepo(t)
	writeWorkFile(t, repo, "a.txt", "a")

	rootHash, err := repo.SaveDir(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("SaveDir failed: %v", err)
	}
	root, err := repo.Store().ReadTree(rootHash)
	if err != nil {
		t.Fatalf("ReadTree failed: %v", err)
	}

	if _, ok := root.FindEntry(constants.RepoDir); ok {
		t.Errorf("%s must not be part of the snapshot", constants.RepoDir)
	}
}

func TestBuildTree_DoesNotStore(t *testing.T) {
	repo := setupRepo(t)
	writeWorkFile(t, repo, "dir/file.txt", "unsaved")

	snapshot, err := repo.BuildTree(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	if repo.Store().Exists(snapshot.Root.Hash()) {
		t.Error("BuildTree must not store the root tree")
	}

	dir, ok := snapshot.Root.FindEntry("dir")
	if !ok {
		t.Fatal("Expected dir entry")
	}
	if _, ok := snapshot.Tree(dir.Hash()); !ok {
		t.Error("Snapshot should keep subtrees in memory")
	}

	saved, err := repo.SaveDir(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("SaveDir failed: %v", err)
	}
	if saved != snapshot.Root.Hash() {
		t.Errorf("SaveDir hash %s differs from BuildTree hash %s", saved, snapshot.Root.Hash())
	}
}

func TestSaveDir_FileModes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("File modes are not tracked on windows")
	}

	repo := setupRepo(t)
	script := writeWorkFile(t, repo, "run.sh", "#!/bin/sh\necho hi\n")
	if err := os.Chmod(script, 0o755); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	writeWorkFile(t, repo, "target.txt", "target")
	if err := os.Symlink("target.txt", filepath.Join(repo.WorkDir(), "link")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	snapshot, err := repo.BuildTree(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	tests := []struct {
		name string
		mode objects.FileMode
	}{
		{"run.sh", objects.ModeExecutable},
		{"target.txt", objects.ModeRegularFile},
		{"link", objects.ModeSymlink},
	}
	for _, test := range tests {
		entry, ok := snapshot.Root.FindEntry(test.name)
		if !ok {
			t.Errorf("Missing entry %s", test.name)
			continue
		}
		if entry.Mode() != test.mode {
			t.Errorf("%s mode = %s, want %s", test.name, entry.Mode(), test.mode)
		}
	}

	link, _ := snapshot.Root.FindEntry("link")
	if link.Hash() != objects.NewBlob([]byte("target.txt")).Hash() {
		t.Error("Symlink entry should hash the link target")
	}
}

func TestSaveDir_EmptyDirectory(t *testing.T) {
	repo := setupRepo(t)
	if err := os.MkdirAll(filepath.Join(repo.WorkDir(), "empty"), constants.DirPerms); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	rootHash, err := repo.SaveDir(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("SaveDir failed: %v", err)
	}
	root, err := repo.Store().ReadTree(rootHash)
	if err != nil {
		t.Fatalf("ReadTree failed: %v", err)
	}

	entry, ok := root.FindEntry("empty")
	if !ok || !entry.IsDirectory() {
		t.Fatal("Expected empty directory entry")
	}
	emptyTree, err := objects.NewTree(nil)
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	if entry.Hash() != emptyTree.Hash() {
		t.Errorf("Empty directory hash = %s, want %s", entry.Hash(), emptyTree.Hash())
	}
}

func TestSaveDir_ManyFiles(t *testing.T) {
	repo := setupRepo(t)
	names := make([]string, 0, 50)
	for i := range 50 {
		name := filepath.Join("bulk", "file"+string(rune('a'+i%26))+string(rune('a'+i/26))+".txt")
		writeWorkFile(t, repo, name, name)
		names = append(names, filepath.Base(name))
	}

	first, err := repo.BuildTree(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	second, err := repo.BuildTree(context.Background(), repo.WorkDir())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	if first.Root.Hash() != second.Root.Hash() {
		t.Error("Concurrent hashing must be deterministic")
	}

	bulk, _ := first.Root.FindEntry("bulk")
	bulkTree, ok := first.Tree(bulk.Hash())
	if !ok {
		t.Fatal("Expected bulk subtree in snapshot")
	}
	if len(bulkTree.Entries()) != len(names) {
		t.Errorf("Expected %d entries, got %d", len(names), len(bulkTree.Entries()))
	}
}

func TestSaveDir_Cancelled(t *testing.T) {
	repo := setupRepo(t)
	writeWorkFile(t, repo, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.SaveDir(ctx, repo.WorkDir()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestSaveDir_NotADirectory(t *testing.T) {
	repo := setupRepo(t)
	path := writeWorkFile(t, repo, "file.txt", "x")

	if _, err := repo.SaveDir(context.Background(), path); err == nil {
		t.Error("Expected error for a file path")
	}
}
