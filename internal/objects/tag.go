package objects

import (
	"fmt"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/utils"
)

// TagAnnotation carries the optional metadata of an annotated tag.
type TagAnnotation struct {
	Tagger  Author
	Message string
}

// Tag names a commit. A tag without annotation is lightweight.
type Tag struct {
	name       string
	target     string
	annotation *TagAnnotation
	hash       string
}

// NewTag creates a lightweight tag pointing at target.
func NewTag(name, target string) (*Tag, error) {
	return newTag(name, target, nil)
}

// NewAnnotatedTag creates a tag carrying tagger identity, time and message.
func NewAnnotatedTag(name, target string, tagger Author, message string) (*Tag, error) {
	if err := tagger.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tagger: %w", err)
	}
	return newTag(name, target, &TagAnnotation{Tagger: tagger, Message: message})
}

func newTag(name, target string, annotation *TagAnnotation) (*Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("tag name is required")
	}
	if strings.ContainsAny(name, "\n\x00") {
		return nil, fmt.Errorf("tag name %q contains forbidden characters", name)
	}
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("tag target is required")
	}
	if strings.ContainsAny(target, "\n\x00") {
		return nil, fmt.Errorf("tag target %q contains forbidden characters", target)
	}

	tag := &Tag{
		name:       name,
		target:     target,
		annotation: annotation,
	}
	tag.hash = computeHash(tag.Content(), utils.TagObjectType)
	return tag, nil
}

// buildTagContent renders
//
//	object <target>
//	type commit
//	tag <name>
//	[tagger <identity>
//
//	<message>]
func buildTagContent(t *Tag) []byte {
	var buf strings.Builder

	buf.WriteString(constants.TagObjectPrefix + t.target + "\n")
	buf.WriteString(constants.TagTypePrefix + string(utils.CommitObjectType) + "\n")
	buf.WriteString(constants.TagNamePrefix + t.name + "\n")

	if t.annotation != nil {
		buf.WriteString(constants.TagTaggerPrefix + t.annotation.Tagger.encode() + "\n")
		buf.WriteByte('\n')
		appendMessage(&buf, t.annotation.Message)
	}

	return []byte(buf.String())
}

// parseTag decodes tag content produced by buildTagContent.
func parseTag(content []byte) (*Tag, error) {
	text := string(content)
	headers, message, annotated := strings.Cut(text, "\n\n")
	if !annotated {
		headers = strings.TrimSuffix(text, "\n")
	}

	var (
		name, target string
		tagger       *Author
	)

	for line := range strings.SplitSeq(headers, "\n") {
		switch {
		case strings.HasPrefix(line, constants.TagObjectPrefix):
			target = strings.TrimPrefix(line, constants.TagObjectPrefix)
		case strings.HasPrefix(line, constants.TagTypePrefix):
			if objectType := strings.TrimPrefix(line, constants.TagTypePrefix); objectType != string(utils.CommitObjectType) {
				return nil, fmt.Errorf("%w: unsupported tag target type %q", ErrMalformedObject, objectType)
			}
		case strings.HasPrefix(line, constants.TagNamePrefix):
			name = strings.TrimPrefix(line, constants.TagNamePrefix)
		case strings.HasPrefix(line, constants.TagTaggerPrefix):
			author, err := parseAuthor(strings.TrimPrefix(line, constants.TagTaggerPrefix))
			if err != nil {
				return nil, err
			}
			tagger = &author
		default:
			return nil, fmt.Errorf("%w: unknown tag header %q", ErrMalformedObject, line)
		}
	}

	var (
		tag *Tag
		err error
	)
	switch {
	case annotated && tagger != nil:
		tag, err = NewAnnotatedTag(name, target, *tagger, parseMessage(message))
	case !annotated && tagger == nil:
		tag, err = NewTag(name, target)
	default:
		return nil, fmt.Errorf("%w: tag annotation is incomplete", ErrMalformedObject)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}
	return tag, nil
}

func (t *Tag) Hash() string {
	return t.hash
}

func (t *Tag) Type() utils.ObjectType {
	return utils.TagObjectType
}

func (t *Tag) Name() string {
	return t.name
}

// Target returns the hash of the commit the tag names.
func (t *Tag) Target() string {
	return t.target
}

func (t *Tag) IsAnnotated() bool {
	return t.annotation != nil
}

// Annotation returns a copy of the annotation, or nil for lightweight tags.
func (t *Tag) Annotation() *TagAnnotation {
	if t.annotation == nil {
		return nil
	}
	annotation := *t.annotation
	return &annotation
}

func (t *Tag) Content() []byte {
	return buildTagContent(t)
}

func (t *Tag) Size() int {
	return len(t.Content())
}

func (t *Tag) Header() string {
	return utils.ObjectHeader(utils.TagObjectType, t.Size())
}

func (t *Tag) Data() []byte {
	return buildData(utils.TagObjectType, t.Content())
}

func (t *Tag) String() string {
	if t.annotation == nil {
		return fmt.Sprintf("Tag{hash: %s, name: %s, target: %s}", t.hash, t.name, t.target)
	}
	return fmt.Sprintf("Tag{hash: %s, name: %s, target: %s, tagger: %s, message: %q}",
		t.hash, t.name, t.target, t.annotation.Tagger.String(), t.annotation.Message)
}

func (t *Tag) sealed() {}
