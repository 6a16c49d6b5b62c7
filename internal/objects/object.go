package objects

import (
	"errors"

	"github.com/KostasZigo/gocaf/utils"
)

var (
	// ErrObjectNotFound is returned when no object with the requested hash is stored.
	ErrObjectNotFound = errors.New("object not found")

	// ErrUnexpectedType is returned when a stored object is not of the requested type.
	ErrUnexpectedType = errors.New("unexpected object type")

	// ErrMalformedObject is returned when object bytes do not follow the canonical encoding.
	ErrMalformedObject = errors.New("malformed object")
)

// Object represents any record that can be hashed and stored.
// The set is closed: only Blob, Tree, Commit and Tag implement it.
type Object interface {
	// Hash returns the SHA-1 hash of the object
	Hash() string

	// Type returns the object type used in the header
	Type() utils.ObjectType

	// Content returns the canonical encoding without header
	Content() []byte

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte

	sealed()
}

// HashObject derives the content hash of any object.
// The result depends on both the type and the canonical content.
func HashObject(obj Object) string {
	switch o := obj.(type) {
	case *Blob:
		return computeHash(o.Content(), utils.BlobObjectType)
	case *Tree:
		return computeHash(o.Content(), utils.TreeObjectType)
	case *Commit:
		return computeHash(o.Content(), utils.CommitObjectType)
	case *Tag:
		return computeHash(o.Content(), utils.TagObjectType)
	default:
		panic("objects: unknown object implementation")
	}
}

// computeHash hashes content for one of the known object types, which cannot fail.
func computeHash(content []byte, objectType utils.ObjectType) string {
	hash, _ := utils.ComputeHash(content, objectType)
	return hash
}

// buildData prefixes content with its type header.
func buildData(objectType utils.ObjectType, content []byte) []byte {
	header := utils.ObjectHeader(objectType, len(content))
	data := make([]byte, 0, len(header)+len(content))
	data = append(data, header...)
	return append(data, content...)
}
