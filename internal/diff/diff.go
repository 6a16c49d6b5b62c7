// Package diff compares two trees and reports added, removed, modified and moved entries.
package diff

import (
	"fmt"
	"path"
	"slices"

	"github.com/KostasZigo/gocaf/internal/objects"
)

type Kind int

const (
	Added Kind = iota
	Removed
	Modified
	// MovedTo marks the old location of an entry found elsewhere in the new tree.
	MovedTo
	// MovedFrom marks the new location of an entry that existed elsewhere in the old tree.
	MovedFrom
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	case MovedTo:
		return "moved to"
	case MovedFrom:
		return "moved from"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diff is one node of the change tree.
//
// Entry is taken from the old tree for Removed, Modified and MovedTo, and from the
// new tree for Added and MovedFrom. Modified nodes also carry the new entry in Next.
// Counterpart links the two halves of a move.
type Diff struct {
	Kind        Kind
	Entry       objects.TreeEntry
	Next        objects.TreeEntry
	Parent      *Diff
	Children    []*Diff
	Counterpart *Diff
}

// IsDirectory reports whether the diff concerns a subtree.
func (d *Diff) IsDirectory() bool {
	return d.Entry.IsDirectory()
}

// Loader returns the tree stored under hash.
type Loader func(hash string) (*objects.Tree, error)

type frame struct {
	oldTree *objects.Tree
	newTree *objects.Tree
	parent  *Diff
}

type comparer struct {
	load Loader

	potentiallyAdded   map[string]*Diff
	potentiallyRemoved map[string]*Diff
	// dropped holds nodes whose subtree turned out to be part of a move
	dropped map[*Diff]bool
}

// Compare returns the top-level diffs turning oldTree into newTree.
// Subtrees are walked iteratively. An entry whose hash or mode differs is Modified.
// An entry removed in one place and added with the same hash and mode in another
// becomes a MovedTo/MovedFrom pair.
func Compare(oldTree, newTree *objects.Tree, load Loader) ([]*Diff, error) {
	if oldTree == nil || newTree == nil {
		return nil, fmt.Errorf("both trees are required for diff")
	}
	if oldTree.Hash() == newTree.Hash() {
		return nil, nil
	}

	c := &comparer{
		load:               load,
		potentiallyAdded:   make(map[string]*Diff),
		potentiallyRemoved: make(map[string]*Diff),
		dropped:            make(map[*Diff]bool),
	}

	root := &Diff{Kind: Modified}
	stack := []frame{{oldTree: oldTree, newTree: newTree, parent: root}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c.skip(current.parent) {
			continue
		}

		pushed, err := c.compareLevel(current)
		if err != nil {
			return nil, err
		}
		stack = append(stack, pushed...)
	}

	for _, child := range root.Children {
		child.Parent = nil
	}
	return root.Children, nil
}

// skip reports whether a pending frame belongs to a subtree that no longer needs walking.
func (c *comparer) skip(parent *Diff) bool {
	return parent.Kind == MovedTo || parent.Kind == MovedFrom || c.dropped[parent]
}

func (c *comparer) compareLevel(f frame) ([]frame, error) {
	var (
		oldEntries, newEntries []objects.TreeEntry
		pushed                 []frame
	)
	if f.oldTree != nil {
		oldEntries = f.oldTree.Entries()
	}
	if f.newTree != nil {
		newEntries = f.newTree.Entries()
	}

	oldByName := indexByName(oldEntries)
	newByName := indexByName(newEntries)

	for _, oldEntry := range oldEntries {
		newEntry, found := newByName[oldEntry.Name()]
		if !found {
			removed := &Diff{Kind: Removed, Entry: oldEntry, Parent: f.parent}
			f.parent.Children = append(f.parent.Children, removed)

			if added, ok := c.potentiallyAdded[moveKey(oldEntry)]; ok {
				delete(c.potentiallyAdded, moveKey(oldEntry))
				c.pair(removed, added)
				continue
			}

			c.potentiallyRemoved[moveKey(oldEntry)] = removed
			if oldEntry.IsDirectory() {
				subtree, err := c.load(oldEntry.Hash())
				if err != nil {
					return nil, fmt.Errorf("failed to load subtree %s: %w", oldEntry.Name(), err)
				}
				pushed = append(pushed, frame{oldTree: subtree, parent: removed})
			}
			continue
		}

		if oldEntry.Hash() == newEntry.Hash() && oldEntry.Mode() == newEntry.Mode() {
			continue
		}

		modified := &Diff{Kind: Modified, Entry: oldEntry, Next: newEntry, Parent: f.parent}
		f.parent.Children = append(f.parent.Children, modified)

		if oldEntry.IsDirectory() && newEntry.IsDirectory() {
			oldSubtree, err := c.load(oldEntry.Hash())
			if err != nil {
				return nil, fmt.Errorf("failed to load subtree %s: %w", oldEntry.Name(), err)
			}
			newSubtree, err := c.load(newEntry.Hash())
			if err != nil {
				return nil, fmt.Errorf("failed to load subtree %s: %w", newEntry.Name(), err)
			}
			pushed = append(pushed, frame{oldTree: oldSubtree, newTree: newSubtree, parent: modified})
		}
	}

	for _, newEntry := range newEntries {
		if _, found := oldByName[newEntry.Name()]; found {
			continue
		}

		added := &Diff{Kind: Added, Entry: newEntry, Parent: f.parent}
		f.parent.Children = append(f.parent.Children, added)

		if removed, ok := c.potentiallyRemoved[moveKey(newEntry)]; ok {
			delete(c.potentiallyRemoved, moveKey(newEntry))
			c.pair(removed, added)
			continue
		}

		c.potentiallyAdded[moveKey(newEntry)] = added
		if newEntry.IsDirectory() {
			subtree, err := c.load(newEntry.Hash())
			if err != nil {
				return nil, fmt.Errorf("failed to load subtree %s: %w", newEntry.Name(), err)
			}
			pushed = append(pushed, frame{newTree: subtree, parent: added})
		}
	}

	return pushed, nil
}

// pair turns a removal and an addition of the same content into a move.
// Anything already discovered beneath either side is identical content and is discarded.
func (c *comparer) pair(removed, added *Diff) {
	c.forget(removed)
	c.forget(added)

	removed.Kind = MovedTo
	added.Kind = MovedFrom
	removed.Counterpart = added
	added.Counterpart = removed
}

func (c *comparer) forget(d *Diff) {
	stack := slices.Clone(d.Children)
	d.Children = nil

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.dropped[node] = true

		key := moveKey(node.Entry)
		if c.potentiallyAdded[key] == node {
			delete(c.potentiallyAdded, key)
		}
		if c.potentiallyRemoved[key] == node {
			delete(c.potentiallyRemoved, key)
		}

		// A move that reached into the discarded subtree falls back to a plain change
		if other := node.Counterpart; other != nil {
			other.Counterpart = nil
			if other.Kind == MovedTo {
				other.Kind = Removed
			} else {
				other.Kind = Added
			}
		}

		stack = append(stack, node.Children...)
	}
}

// moveKey identifies content for move pairing. A move never changes the mode.
func moveKey(entry objects.TreeEntry) string {
	return string(entry.Mode()) + " " + entry.Hash()
}

func indexByName(entries []objects.TreeEntry) map[string]objects.TreeEntry {
	index := make(map[string]objects.TreeEntry, len(entries))
	for _, entry := range entries {
		index[entry.Name()] = entry
	}
	return index
}

// Flatten lists every diff in depth-first order, parents before children.
func Flatten(diffs []*Diff) []*Diff {
	var result []*Diff

	stack := slices.Clone(diffs)
	slices.Reverse(stack)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, node)

		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return result
}

// Path returns the slash separated path of d from the compared root.
func Path(d *Diff) string {
	var parts []string
	for node := d; node != nil; node = node.Parent {
		parts = append(parts, node.Entry.Name())
	}
	slices.Reverse(parts)
	return path.Join(parts...)
}

// Summary counts file level changes. Directory containers and the MovedTo half of moves are not counted.
type Summary struct {
	Added    int
	Removed  int
	Modified int
	Moved    int
}

func (s Summary) Total() int {
	return s.Added + s.Removed + s.Modified + s.Moved
}

func Counts(diffs []*Diff) Summary {
	var summary Summary
	for _, d := range Flatten(diffs) {
		switch d.Kind {
		case Added:
			summary.Added++
		case Removed:
			summary.Removed++
		case Modified:
			if !(d.Entry.IsDirectory() && d.Next.IsDirectory()) {
				summary.Modified++
			}
		case MovedFrom:
			summary.Moved++
		}
	}
	return summary
}
