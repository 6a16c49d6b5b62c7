package repository

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/diff"
	"github.com/KostasZigo/gocaf/internal/objects"
)

// Target is one side of a diff: a ref or a directory on disk.
type Target interface {
	isTarget()
}

// RefTarget names a commit through anything ResolveRef accepts.
type RefTarget string

func (RefTarget) isTarget() {}

// PathTarget is a directory whose current content is compared.
type PathTarget string

func (PathTarget) isTarget() {}

// treeCache serves trees from memory before falling back to the store.
type treeCache struct {
	store *objects.ObjectStore
	trees map[string]*objects.Tree
}

func (r *Repository) newTreeCache() *treeCache {
	return &treeCache{store: r.store, trees: make(map[string]*objects.Tree)}
}

func (c *treeCache) load(hash string) (*objects.Tree, error) {
	if tree, ok := c.trees[hash]; ok {
		return tree, nil
	}
	tree, err := c.store.ReadTree(hash)
	if err != nil {
		return nil, err
	}
	c.trees[hash] = tree
	return tree, nil
}

// Diff compares two targets.
func (r *Repository) Diff(ctx context.Context, from, to Target) ([]*diff.Diff, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("both diff targets must be given")
	}

	cache := r.newTreeCache()

	fromTree, err := r.resolveTarget(ctx, from, cache)
	if err != nil {
		return nil, err
	}
	toTree, err := r.resolveTarget(ctx, to, cache)
	if err != nil {
		return nil, err
	}

	return diff.Compare(fromTree, toTree, cache.load)
}

// Status compares HEAD with the working directory.
func (r *Repository) Status(ctx context.Context) ([]*diff.Diff, error) {
	return r.Diff(ctx, RefTarget(constants.Head), PathTarget(r.workDir))
}

// IsClean reports whether the working directory matches HEAD.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	diffs, err := r.Status(ctx)
	if err != nil {
		return false, err
	}
	return len(diffs) == 0, nil
}

func (r *Repository) resolveTarget(ctx context.Context, target Target, cache *treeCache) (*objects.Tree, error) {
	switch target := target.(type) {
	case PathTarget:
		path := string(target)
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.workDir, path)
		}
		snapshot, err := r.BuildTree(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to build tree from %s: %w", target, err)
		}
		for hash, tree := range snapshot.trees {
			cache.trees[hash] = tree
		}
		return snapshot.Root, nil
	case RefTarget:
		commitHash, err := r.ResolveRef(string(target))
		if err != nil {
			return nil, err
		}
		return r.commitTree(commitHash, cache)
	default:
		return nil, fmt.Errorf("unsupported diff target %T", target)
	}
}

// commitTree loads the root tree of a commit. An unborn commit ("") has an empty tree.
func (r *Repository) commitTree(commitHash string, cache *treeCache) (*objects.Tree, error) {
	if commitHash == "" {
		return objects.NewTree(nil)
	}

	commit, err := r.store.ReadCommit(commitHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", commitHash, err)
	}
	return cache.load(commit.TreeHash())
}
