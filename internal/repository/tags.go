package repository

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/refs"
	"github.com/KostasZigo/gocaf/utils"
)

// TagExists reports whether refs/tags/<name> exists.
func (r *Repository) TagExists(name string) bool {
	if refs.ValidateName(name) != nil {
		return false
	}
	return r.isRefFile(refs.TagRef(name))
}

// Tags loads every tag sorted by name. Refs naming a commit directly are
// returned as lightweight tags.
func (r *Repository) Tags() ([]*objects.Tag, error) {
	names, err := listRefNames(r.tagsDir())
	if err != nil {
		return nil, err
	}

	tags := make([]*objects.Tag, 0, len(names))
	for _, name := range names {
		tag, err := r.loadTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *Repository) loadTag(name string) (*objects.Tag, error) {
	ref, err := refs.ReadRef(r.refPath(refs.TagRef(name)))
	if err != nil {
		return nil, err
	}
	hash, ok := ref.(refs.HashRef)
	if !ok {
		return nil, fmt.Errorf("tag %s does not point at an object", name)
	}

	obj, err := r.store.Read(string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to load tag %s: %w", name, err)
	}

	switch obj := obj.(type) {
	case *objects.Tag:
		return obj, nil
	case *objects.Commit:
		return objects.NewTag(name, obj.Hash())
	default:
		return nil, fmt.Errorf("%w: tag %s points at a %s", objects.ErrUnexpectedType, name, obj.Type())
	}
}

// CreateTag tags an existing commit. With an annotation a tag object is stored and the
// ref points at it; without one the ref points at the commit.
func (r *Repository) CreateTag(name, commitHash string, annotation *objects.TagAnnotation) (*objects.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("tag name is required")
	}
	if err := refs.ValidateName(name); err != nil {
		return nil, err
	}
	if err := utils.ValidateHash(commitHash); err != nil {
		return nil, fmt.Errorf("invalid commit hash: %w", err)
	}

	if _, err := r.store.ReadCommit(commitHash); err != nil {
		if errors.Is(err, objects.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s does not exist: %w", commitHash, err)
		}
		return nil, err
	}

	if r.TagExists(name) {
		return nil, fmt.Errorf("%w: %s", ErrTagExists, name)
	}

	var (
		tag *objects.Tag
		err error
	)
	if annotation != nil {
		tagger := annotation.Tagger
		if tagger.Timestamp.IsZero() {
			tagger.Timestamp = time.Now().Truncate(time.Second)
		}
		tag, err = objects.NewAnnotatedTag(name, commitHash, tagger, annotation.Message)
	} else {
		tag, err = objects.NewTag(name, commitHash)
	}
	if err != nil {
		return nil, err
	}

	refTarget := commitHash
	if tag.IsAnnotated() {
		if err := r.store.Store(tag); err != nil {
			return nil, err
		}
		refTarget = tag.Hash()
	}

	if err := r.writeNewRef(refs.TagRef(name), refs.HashRef(refTarget)); err != nil {
		return nil, fmt.Errorf("failed to write tag %s: %w", name, err)
	}
	return tag, nil
}

// DeleteTag removes the tag ref. A stored tag object stays in the store.
func (r *Repository) DeleteTag(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("tag name is required")
	}
	if !r.TagExists(name) {
		return fmt.Errorf("%w: %s", ErrTagNotFound, name)
	}

	if err := os.Remove(r.refPath(refs.TagRef(name))); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}
	return nil
}
