// Package refs reads and writes reference files under .caf.
//
// A reference file holds either "ref: <path>\n" (symbolic, path relative to .caf)
// or "<hash>\n". An empty file is an unborn reference.
package refs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"unicode"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/utils"
	"github.com/google/renameio"
)

// ErrInvalidRefName is returned for branch or tag names that cannot be stored as ref files.
var ErrInvalidRefName = errors.New("invalid ref name")

// Ref is a HashRef or a SymRef. A nil Ref means unborn.
type Ref interface {
	fmt.Stringer
	isRef()
}

// HashRef points directly at an object.
type HashRef string

func (h HashRef) String() string { return string(h) }
func (HashRef) isRef()           {}

// SymRef points at another ref file, for example "refs/heads/main".
type SymRef string

func (s SymRef) String() string { return string(s) }
func (SymRef) isRef()           {}

// IsBranch reports whether the symbolic ref lives under refs/heads/.
func (s SymRef) IsBranch() bool {
	return strings.HasPrefix(string(s), headsPrefix)
}

// IsTag reports whether the symbolic ref lives under refs/tags/.
func (s SymRef) IsTag() bool {
	return strings.HasPrefix(string(s), tagsPrefix)
}

// ShortName strips the refs/heads/ or refs/tags/ prefix.
func (s SymRef) ShortName() string {
	name := strings.TrimPrefix(string(s), headsPrefix)
	return strings.TrimPrefix(name, tagsPrefix)
}

var (
	headsPrefix = path.Join(constants.Refs, constants.Heads) + "/"
	tagsPrefix  = path.Join(constants.Refs, constants.Tags) + "/"
)

// BranchRef returns the symbolic ref for a branch name.
func BranchRef(name string) SymRef {
	return SymRef(headsPrefix + name)
}

// TagRef returns the symbolic ref for a tag name.
func TagRef(name string) SymRef {
	return SymRef(tagsPrefix + name)
}

// ValidateName checks a branch or tag name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRefName)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	case strings.Contains(name, ".."), strings.Contains(name, "//"):
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	case strings.IndexFunc(name, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0:
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidRefName, name)
	case strings.ContainsAny(name, `\:~^?*[`):
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidRefName, name)
	}
	return nil
}

// Parse decodes ref file content.
func Parse(content string) (Ref, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	if target, ok := strings.CutPrefix(content, constants.SymRefPrefix); ok {
		target = strings.TrimSpace(target)
		if target == "" {
			return nil, errors.New("symbolic ref has no target")
		}
		return SymRef(target), nil
	}

	if !utils.IsValidHash(content) {
		return nil, fmt.Errorf("invalid ref content %q", content)
	}
	return HashRef(content), nil
}

// Encode renders ref as file content.
func Encode(ref Ref) string {
	switch r := ref.(type) {
	case nil:
		return ""
	case SymRef:
		return constants.SymRefPrefix + string(r) + "\n"
	case HashRef:
		return string(r) + "\n"
	default:
		panic("refs: unknown ref implementation")
	}
}

// ReadRef reads the ref file at filePath.
func ReadRef(filePath string) (Ref, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ref %s: %w", filePath, err)
	}

	ref, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ref %s: %w", filePath, err)
	}
	return ref, nil
}

// WriteRef atomically replaces the ref file at filePath.
func WriteRef(filePath string, ref Ref) error {
	if hash, ok := ref.(HashRef); ok {
		if err := utils.ValidateHash(string(hash)); err != nil {
			return err
		}
	}

	if err := renameio.WriteFile(filePath, []byte(Encode(ref)), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write ref %s: %w", filePath, err)
	}
	return nil
}
