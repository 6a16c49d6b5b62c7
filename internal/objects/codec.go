package objects

import (
	"bytes"
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/utils"
)

// ParseObject decodes full object data ("<type> <size>\0<content>") into its record.
func ParseObject(data []byte) (Object, error) {
	objectType, content, err := splitHeader(data)
	if err != nil {
		return nil, err
	}

	switch objectType {
	case utils.BlobObjectType:
		return NewBlob(content), nil
	case utils.TreeObjectType:
		return parseTree(content)
	case utils.CommitObjectType:
		return parseCommit(content)
	case utils.TagObjectType:
		return parseTag(content)
	default:
		return nil, fmt.Errorf("%w: unknown object type %q", ErrMalformedObject, objectType)
	}
}

// splitHeader validates the header and returns the declared type and the content after it.
func splitHeader(data []byte) (utils.ObjectType, []byte, error) {
	// Find null byte separator
	nullByteIndex := bytes.IndexByte(data, constants.NullByte)
	if nullByteIndex == -1 {
		return "", nil, fmt.Errorf("%w: no null byte found", ErrMalformedObject)
	}

	header := data[:nullByteIndex]
	content := data[nullByteIndex+1:]

	spaceIndex := bytes.IndexByte(header, ' ')
	if spaceIndex == -1 {
		return "", nil, fmt.Errorf("%w: header %q has no size", ErrMalformedObject, header)
	}

	objectType := utils.ObjectType(header[:spaceIndex])
	if !objectType.IsValid() {
		return "", nil, fmt.Errorf("%w: unknown object type %q", ErrMalformedObject, objectType)
	}

	declared, err := strconv.ParseUint(string(header[spaceIndex+1:]), 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid size in header %q", ErrMalformedObject, header)
	}
	size, err := safecast.Conv[int](declared)
	if err != nil {
		return "", nil, fmt.Errorf("%w: size %d out of range", ErrMalformedObject, declared)
	}
	if size != len(content) {
		return "", nil, fmt.Errorf("%w: header declares %d bytes, found %d", ErrMalformedObject, size, len(content))
	}

	return objectType, content, nil
}
