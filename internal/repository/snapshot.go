package repository

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/objects"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the tree of a directory built in memory.
type Snapshot struct {
	Root  *objects.Tree
	trees map[string]*objects.Tree
}

// Tree returns a tree of the snapshot by hash.
func (s *Snapshot) Tree(hash string) (*objects.Tree, bool) {
	tree, ok := s.trees[hash]
	return tree, ok
}

// SaveFile stores the content of a file as a blob.
func (r *Repository) SaveFile(path string) (*objects.Blob, error) {
	blob, err := objects.NewBlobFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := r.store.Store(blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// SaveDir stores every file and directory under path and returns the root tree hash.
func (r *Repository) SaveDir(ctx context.Context, path string) (string, error) {
	snapshot, err := r.snapshot(ctx, path, true)
	if err != nil {
		return "", err
	}
	return snapshot.Root.Hash(), nil
}

// BuildTree hashes path like SaveDir without writing anything to the store.
func (r *Repository) BuildTree(ctx context.Context, path string) (*Snapshot, error) {
	return r.snapshot(ctx, path, false)
}

func (r *Repository) snapshot(ctx context.Context, path string, persist bool) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}

	builder := &snapshotBuilder{
		store: r.store,
		trees: make(map[string]*objects.Tree),
		save:  persist,
	}
	root, err := builder.buildDir(ctx, path)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Root: root, trees: builder.trees}, nil
}

type snapshotBuilder struct {
	store *objects.ObjectStore
	trees map[string]*objects.Tree
	save  bool
}

// buildDir builds the tree of dir bottom-up. Subdirectories are handled in order,
// files of a single directory are hashed concurrently.
func (b *snapshotBuilder) buildDir(ctx context.Context, dir string) (*objects.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []fs.DirEntry
	entries := make([]objects.TreeEntry, 0, len(dirEntries))

	for _, dirEntry := range dirEntries {
		if dirEntry.Name() == constants.RepoDir {
			continue
		}

		switch {
		case dirEntry.IsDir():
			subtree, err := b.buildDir(ctx, filepath.Join(dir, dirEntry.Name()))
			if err != nil {
				return nil, err
			}
			entry, err := objects.NewTreeEntry(objects.ModeDirectory, dirEntry.Name(), subtree.Hash())
			if err != nil {
				return nil, err
			}
			entries = append(entries, *entry)
		case dirEntry.Type().IsRegular() || dirEntry.Type()&fs.ModeSymlink != 0:
			files = append(files, dirEntry)
		default:
			slog.Debug("Skipping unsupported file type",
				"path", filepath.Join(dir, dirEntry.Name()),
				"mode", dirEntry.Type().String())
		}
	}

	fileEntries, err := b.hashFiles(ctx, dir, files)
	if err != nil {
		return nil, err
	}
	entries = append(entries, fileEntries...)

	tree, err := objects.NewTree(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree for %s: %w", dir, err)
	}
	if b.save {
		if err := b.store.Store(tree); err != nil {
			return nil, err
		}
	}
	b.trees[tree.Hash()] = tree
	return tree, nil
}

func (b *snapshotBuilder) hashFiles(ctx context.Context, dir string, files []fs.DirEntry) ([]objects.TreeEntry, error) {
	if len(files) == 0 {
		return nil, nil
	}

	// Each goroutine writes only its own index
	results := make([]objects.TreeEntry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(files)))

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			entry, err := b.hashFile(filepath.Join(dir, file.Name()))
			if err != nil {
				return err
			}
			results[i] = *entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *snapshotBuilder) hashFile(path string) (*objects.TreeEntry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var (
		blob *objects.Blob
		mode = objects.ModeRegularFile
	)

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read link %s: %w", path, err)
		}
		blob = objects.NewBlob([]byte(target))
		mode = objects.ModeSymlink
	} else {
		blob, err = objects.NewBlobFromFile(path)
		if err != nil {
			return nil, err
		}
		if info.Mode().Perm()&0o111 != 0 {
			mode = objects.ModeExecutable
		}
	}

	if b.save {
		if err := b.store.Store(blob); err != nil {
			return nil, err
		}
	}

	return objects.NewTreeEntry(mode, info.Name(), blob.Hash())
}
