package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
)

// ErrInvalidHash is returned when a string is not a 40-character hex object hash.
var ErrInvalidHash = errors.New("invalid object hash")

type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
	TagObjectType    ObjectType = "tag"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType, TagObjectType:
		return true
	default:
		return false
	}
}

// ObjectHeader returns the "<type> <size>\0" prefix that discriminates object types before hashing.
func ObjectHeader(objectType ObjectType, size int) string {
	return fmt.Sprintf("%s %d%c", objectType, size, constants.NullByte)
}

// ComputeHash calculates SHA-1 hash for Object content
func ComputeHash(content []byte, objectType ObjectType) (string, error) {
	if !objectType.IsValid() {
		return "", fmt.Errorf("invalid object type: %s - hash not computed", objectType)
	}

	// format: "ObjectType <size>\0<content>"
	h := sha1.New()
	h.Write([]byte(ObjectHeader(objectType, len(content))))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsValidHash reports whether hash is a full lowercase hex SHA-1.
func IsValidHash(hash string) bool {
	if len(hash) != constants.HashStringLength {
		return false
	}
	for _, c := range hash {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// ValidateHash wraps ErrInvalidHash with the offending value.
func ValidateHash(hash string) error {
	if !IsValidHash(hash) {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return nil
}

// BuildDirPath constructs os-agnostic display direcotry path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}
