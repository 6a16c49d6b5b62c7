package objects

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/utils"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "040000" // Directory (tree)
	ModeSubmodule   FileMode = "160000" // Submodule
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeSymlink, ModeDirectory, ModeSubmodule:
		return true
	default:
		return false
	}
}

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	mode FileMode
	name string
	hash string // hex hash of the blob or subtree the entry points to
}

func NewTreeEntry(mode FileMode, name string, hash string) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid file mode: %s", mode)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\x00") {
		return nil, fmt.Errorf("invalid tree entry name: %q", name)
	}
	if err := utils.ValidateHash(hash); err != nil {
		return nil, fmt.Errorf("invalid tree entry %s: %w", name, err)
	}
	return &TreeEntry{
		mode: mode,
		name: name,
		hash: hash,
	}, nil
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) Hash() string {
	return e.hash
}

func (treeEntry *TreeEntry) IsDirectory() bool {
	return treeEntry.mode == ModeDirectory
}

func (treeEntry *TreeEntry) IsExecutable() bool {
	return treeEntry.mode == ModeExecutable
}

// Tree represents a directory snapshot
type Tree struct {
	entries []TreeEntry
	hash    string
}

// NewTree creates a tree object from the list of Tree Entries
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	// Entries are kept sorted by name in ascending order so the hash is order independent
	entries := slices.Clone(treeEntries)
	slices.SortStableFunc(entries, compareTreeEntries)

	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, exists := names[entry.name]; exists {
			return nil, fmt.Errorf("duplicate tree entry name: %s", entry.name)
		}
		names[entry.name] = struct{}{}
	}

	return &Tree{
		entries: entries,
		hash:    computeHash(buildTreeContent(entries), utils.TreeObjectType),
	}, nil
}

// compareTreeEntries implements the tree entry sorting rules:
// - Entries are sorted by name
// - Directory names are treated as if they have a trailing "/" for comparison
// - This ensures correct ordering when directories and files have similar names
func compareTreeEntries(a, b TreeEntry) int {
	nameA := getSortableName(a)
	nameB := getSortableName(b)
	return strings.Compare(nameA, nameB)
}

// getSortableName returns the name used for sorting.
// For directories, appends "/".
func getSortableName(entry TreeEntry) string {
	if entry.IsDirectory() {
		return entry.Name() + "/"
	}
	return entry.Name()
}

// buildTreeContent creates the raw tree content
// <mode> <name>\0<20-byte binary SHA> , ex:
// 100644 README.md\0[binary SHA for README blob]
// 100644 main.go\0[binary SHA for main.go blob]
// 040000 src\0[binary SHA for src/ tree]
func buildTreeContent(entries []TreeEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		buf.WriteString(string(entry.Mode()))
		buf.WriteByte(' ')
		buf.WriteString(entry.Name())
		buf.WriteByte(constants.NullByte)

		// Entry hashes are validated on construction
		hashBytes, _ := hex.DecodeString(entry.Hash())
		buf.Write(hashBytes)
	}

	return buf.Bytes()
}

// parseTree decodes tree content produced by buildTreeContent.
func parseTree(content []byte) (*Tree, error) {
	var entries []TreeEntry

	for len(content) > 0 {
		space := bytes.IndexByte(content, ' ')
		if space < 0 {
			return nil, fmt.Errorf("%w: tree entry has no mode separator", ErrMalformedObject)
		}
		mode := FileMode(content[:space])
		content = content[space+1:]

		null := bytes.IndexByte(content, constants.NullByte)
		if null < 0 {
			return nil, fmt.Errorf("%w: tree entry has no name terminator", ErrMalformedObject)
		}
		name := string(content[:null])
		content = content[null+1:]

		if len(content) < constants.HashByteLength {
			return nil, fmt.Errorf("%w: tree entry %s has truncated hash", ErrMalformedObject, name)
		}
		hash := hex.EncodeToString(content[:constants.HashByteLength])
		content = content[constants.HashByteLength:]

		entry, err := NewTreeEntry(mode, name, hash)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
		}
		entries = append(entries, *entry)
	}

	tree, err := NewTree(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}
	return tree, nil
}

// Hash returns the SHA-1 hash of the tree
func (t *Tree) Hash() string {
	return t.hash
}

func (t *Tree) Type() utils.ObjectType {
	return utils.TreeObjectType
}

// Entries returns all tree entries in canonical order
func (t *Tree) Entries() []TreeEntry {
	return slices.Clone(t.entries)
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(buildTreeContent(t.entries))
}

// Content returns the raw tree content
func (t *Tree) Content() []byte {
	return buildTreeContent(t.entries)
}

// Header returns the object header
func (t *Tree) Header() string {
	return utils.ObjectHeader(utils.TreeObjectType, t.Size())
}

func (t *Tree) Data() []byte {
	return buildData(utils.TreeObjectType, t.Content())
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.hash, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	for _, entry := range t.entries {
		if entry.Name() == name {
			return &entry, true
		}
	}
	return nil, false
}

func (t *Tree) sealed() {}
