package repository

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/diff"
	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/refs"
	"github.com/KostasZigo/gocaf/utils"
	"github.com/google/renameio"
)

// Checkout replaces the working directory with the tree of target and moves HEAD.
// A branch makes HEAD symbolic; a tag or hash detaches it. Branches win over tags of the same name.
func (r *Repository) Checkout(ctx context.Context, target string) error {
	clean, err := r.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("cannot checkout: %w", ErrDirtyWorkingTree)
	}

	ref, err := r.checkoutRef(target)
	if err != nil {
		return err
	}

	targetCommit, err := r.resolve(ref, 0)
	if err != nil {
		return err
	}
	if targetCommit == "" {
		return fmt.Errorf("cannot checkout %s: no commits yet", target)
	}

	headCommit, err := r.HeadCommit()
	if err != nil {
		return err
	}

	cache := r.newTreeCache()
	headTree, err := r.commitTree(headCommit, cache)
	if err != nil {
		return err
	}
	targetTree, err := r.commitTree(targetCommit, cache)
	if err != nil {
		return fmt.Errorf("cannot resolve checkout target tree for %s: %w", target, err)
	}

	diffs, err := diff.Compare(headTree, targetTree, cache.load)
	if err != nil {
		return err
	}

	if err := r.applyDiffs(ctx, diffs, cache); err != nil {
		return err
	}

	if sym, ok := ref.(refs.SymRef); ok && sym.IsBranch() {
		return refs.WriteRef(r.headPath(), sym)
	}
	return refs.WriteRef(r.headPath(), refs.HashRef(targetCommit))
}

// checkoutRef resolves a checkout target by location so branches and tags can be told apart.
func (r *Repository) checkoutRef(target string) (refs.Ref, error) {
	explicit, isExplicit := r.explicitRef(target)

	switch {
	case utils.IsValidHash(target):
		return refs.HashRef(target), nil
	case isExplicit:
		return explicit, nil
	case r.BranchExists(target):
		return refs.BranchRef(target), nil
	case r.TagExists(target):
		return refs.TagRef(target), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, target)
	}
}

// applyDiffs updates the working directory in a fixed order: moves, removals
// (deepest first), added directories, added files, then modifications.
func (r *Repository) applyDiffs(ctx context.Context, diffs []*diff.Diff, cache *treeCache) error {
	var added, removed, modified, movedFrom []*diff.Diff

	for _, d := range diff.Flatten(diffs) {
		switch d.Kind {
		case diff.Added:
			added = append(added, d)
		case diff.Removed:
			removed = append(removed, d)
		case diff.Modified:
			modified = append(modified, d)
		case diff.MovedFrom:
			movedFrom = append(movedFrom, d)
		}
	}

	byDepth := func(a, b *diff.Diff) int {
		return cmp.Compare(depth(a), depth(b))
	}

	slices.SortStableFunc(movedFrom, byDepth)
	for _, d := range movedFrom {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Counterpart == nil {
			continue
		}
		oldPath := r.workPath(diff.Path(d.Counterpart))
		newPath := r.workPath(diff.Path(d))

		if _, err := os.Lstat(oldPath); err != nil {
			return fmt.Errorf("cannot move missing path %s: %w", diff.Path(d.Counterpart), err)
		}
		if err := os.MkdirAll(filepath.Dir(newPath), constants.DirPerms); err != nil {
			return err
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("failed to move %s to %s: %w", diff.Path(d.Counterpart), diff.Path(d), err)
		}
		slog.Debug("Moved path",
			"from", diff.Path(d.Counterpart),
			"to", diff.Path(d))
	}

	slices.SortStableFunc(removed, func(a, b *diff.Diff) int { return byDepth(b, a) })
	for _, d := range removed {
		if err := os.RemoveAll(r.workPath(diff.Path(d))); err != nil {
			return fmt.Errorf("failed to remove %s: %w", diff.Path(d), err)
		}
	}

	slices.SortStableFunc(added, byDepth)
	for _, d := range added {
		if d.Entry.IsDirectory() {
			if err := os.MkdirAll(r.workPath(diff.Path(d)), constants.DirPerms); err != nil {
				return fmt.Errorf("failed to add directory %s: %w", diff.Path(d), err)
			}
		}
	}
	for _, d := range added {
		if !d.Entry.IsDirectory() {
			if err := r.writeEntry(r.workPath(diff.Path(d)), d.Entry); err != nil {
				return fmt.Errorf("failed to add file %s: %w", diff.Path(d), err)
			}
		}
	}

	slices.SortStableFunc(modified, byDepth)
	for _, d := range modified {
		path := r.workPath(diff.Path(d))
		oldIsDir, newIsDir := d.Entry.IsDirectory(), d.Next.IsDirectory()

		switch {
		case oldIsDir && newIsDir:
			if err := os.MkdirAll(path, constants.DirPerms); err != nil {
				return err
			}
		case oldIsDir || newIsDir:
			// A file replaced a directory or the reverse: rebuild the path from the target
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("failed to replace %s: %w", diff.Path(d), err)
			}
			if err := r.materialize(path, d.Next, cache); err != nil {
				return fmt.Errorf("failed to replace %s: %w", diff.Path(d), err)
			}
		default:
			if err := r.writeEntry(path, d.Next); err != nil {
				return fmt.Errorf("failed to modify file %s: %w", diff.Path(d), err)
			}
		}
	}

	return nil
}

func depth(d *diff.Diff) int {
	return strings.Count(diff.Path(d), "/")
}

func (r *Repository) workPath(slashPath string) string {
	return filepath.Join(r.workDir, filepath.FromSlash(slashPath))
}

// writeEntry writes a file or symlink entry to path.
func (r *Repository) writeEntry(path string, entry objects.TreeEntry) error {
	blob, err := r.store.ReadBlob(entry.Hash())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerms); err != nil {
		return err
	}

	if entry.Mode() == objects.ModeSymlink {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
		return os.Symlink(string(blob.Content()), path)
	}

	perms := constants.FilePerms
	if entry.IsExecutable() {
		perms = constants.ExecPerms
	}
	return renameio.WriteFile(path, blob.Content(), perms)
}

// materialize writes entry and, for directories, everything beneath it.
func (r *Repository) materialize(path string, entry objects.TreeEntry, cache *treeCache) error {
	if !entry.IsDirectory() {
		return r.writeEntry(path, entry)
	}

	tree, err := cache.load(entry.Hash())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, constants.DirPerms); err != nil {
		return err
	}
	for _, child := range tree.Entries() {
		if err := r.materialize(filepath.Join(path, child.Name()), child, cache); err != nil {
			return err
		}
	}
	return nil
}
