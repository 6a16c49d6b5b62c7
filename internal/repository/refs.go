package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/refs"
	"github.com/KostasZigo/gocaf/utils"
)

// maxSymRefDepth bounds chains of symbolic refs.
const maxSymRefDepth = 5

// HeadRef returns the content of HEAD: a branch SymRef, a detached HashRef or nil.
func (r *Repository) HeadRef() (refs.Ref, error) {
	return refs.ReadRef(r.headPath())
}

// HeadCommit returns the commit HEAD resolves to, or "" when the current branch has no commits.
func (r *Repository) HeadCommit() (string, error) {
	head, err := r.HeadRef()
	if err != nil {
		return "", err
	}
	return r.resolve(head, 0)
}

// CurrentBranch returns the branch HEAD points at, or "" when HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.HeadRef()
	if err != nil {
		return "", err
	}
	if sym, ok := head.(refs.SymRef); ok && sym.IsBranch() {
		return sym.ShortName(), nil
	}
	return "", nil
}

// ResolveRef turns a user supplied name into a commit hash.
// It tries HEAD, explicit refs/ paths, branch names, tag names and finally a full hash.
// Tags pointing at tag objects are peeled to their commit. An unborn branch yields "".
func (r *Repository) ResolveRef(name string) (string, error) {
	ref, err := r.lookupRef(name)
	if err != nil {
		return "", err
	}
	return r.resolve(ref, 0)
}

// lookupRef maps a name onto the ref it denotes without following it.
func (r *Repository) lookupRef(name string) (refs.Ref, error) {
	name = strings.TrimSpace(name)
	explicit, isExplicit := r.explicitRef(name)

	switch {
	case strings.EqualFold(name, constants.Head):
		return r.HeadRef()
	case isExplicit:
		return explicit, nil
	case r.BranchExists(name):
		return refs.BranchRef(name), nil
	case r.TagExists(name):
		return refs.TagRef(name), nil
	case utils.IsValidHash(name):
		return refs.HashRef(name), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, name)
	}
}

func (r *Repository) resolve(ref refs.Ref, depth int) (string, error) {
	if depth > maxSymRefDepth {
		return "", fmt.Errorf("symbolic ref chain too deep at %s", ref)
	}

	switch ref := ref.(type) {
	case nil:
		return "", nil
	case refs.HashRef:
		return string(ref), nil
	case refs.SymRef:
		target, err := refs.ReadRef(r.refPath(ref))
		if err != nil {
			return "", err
		}
		if hash, ok := target.(refs.HashRef); ok && ref.IsTag() {
			return r.peelTag(string(hash))
		}
		return r.resolve(target, depth+1)
	default:
		return "", fmt.Errorf("unsupported ref %T", ref)
	}
}

// peelTag follows a tag object to its commit. Lightweight tags already name the commit.
func (r *Repository) peelTag(hash string) (string, error) {
	obj, err := r.store.Read(hash)
	if err != nil {
		return "", fmt.Errorf("failed to load tag target %s: %w", hash, err)
	}
	if tag, ok := obj.(*objects.Tag); ok {
		return tag.Target(), nil
	}
	return hash, nil
}

// UpdateRef points an existing ref at hash.
func (r *Repository) UpdateRef(ref refs.SymRef, hash string) error {
	path := r.refPath(ref)
	if !r.isRefFile(ref) {
		return fmt.Errorf("reference %q does not exist", ref)
	}
	return refs.WriteRef(path, refs.HashRef(hash))
}

// explicitRef reports whether name spells out an existing ref file such as refs/heads/main.
// Names that would leave the refs directory are rejected.
func (r *Repository) explicitRef(name string) (refs.SymRef, bool) {
	rest, ok := strings.CutPrefix(name, constants.Refs+"/")
	if !ok || refs.ValidateName(rest) != nil {
		return "", false
	}
	ref := refs.SymRef(name)
	return ref, r.isRefFile(ref)
}

func (r *Repository) isRefFile(ref refs.SymRef) bool {
	info, err := os.Stat(r.refPath(ref))
	return err == nil && info.Mode().IsRegular()
}

// Branches returns all branch names in sorted order.
func (r *Repository) Branches() ([]string, error) {
	return listRefNames(r.headsDir())
}

// BranchExists reports whether refs/heads/<name> exists.
func (r *Repository) BranchExists(name string) bool {
	if refs.ValidateName(name) != nil {
		return false
	}
	return r.isRefFile(refs.BranchRef(name))
}

// AddBranch creates a branch at HEAD's commit. The branch is unborn if HEAD is.
func (r *Repository) AddBranch(name string) error {
	if err := refs.ValidateName(name); err != nil {
		return err
	}
	if r.BranchExists(name) {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}

	head, err := r.HeadCommit()
	if err != nil {
		return err
	}

	var target refs.Ref
	if head != "" {
		target = refs.HashRef(head)
	}
	return r.writeNewRef(refs.BranchRef(name), target)
}

// DeleteBranch removes a branch. The current branch and the last branch cannot be deleted.
func (r *Repository) DeleteBranch(name string) error {
	if err := refs.ValidateName(name); err != nil {
		return err
	}
	if !r.BranchExists(name) {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}

	branches, err := r.Branches()
	if err != nil {
		return err
	}
	if len(branches) == 1 {
		return fmt.Errorf("cannot delete the last branch %q", name)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return fmt.Errorf("cannot delete the current branch %q", name)
	}

	if err := os.Remove(r.refPath(refs.BranchRef(name))); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// writeNewRef creates the ref file and any namespace directories above it.
func (r *Repository) writeNewRef(ref refs.SymRef, target refs.Ref) error {
	path := r.refPath(ref)
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", ref, err)
	}
	return refs.WriteRef(path, target)
}

// listRefNames walks a refs namespace and returns slash separated names.
func listRefNames(dir string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		// renameio temp files never become refs
		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list refs in %s: %w", dir, err)
	}

	slices.Sort(names)
	return names, nil
}
