package objects

import (
	"fmt"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/utils"
)

// Represents a snapshot of the repository
type Commit struct {
	hash       string
	treeHash   string
	parentHash string
	author     Author
	committer  Author
	message    string
}

func NewCommit(treeHash, parentHash, message string, author Author) (*Commit, error) {
	return newCommit(treeHash, parentHash, message, author, author)
}

func NewInitialCommit(treeHash, message string, author Author) (*Commit, error) {
	return NewCommit(treeHash, "", message, author)
}

func newCommit(treeHash, parentHash, message string, author, committer Author) (*Commit, error) {
	if err := utils.ValidateHash(treeHash); err != nil {
		return nil, fmt.Errorf("invalid commit tree: %w", err)
	}
	if parentHash != "" {
		if err := utils.ValidateHash(parentHash); err != nil {
			return nil, fmt.Errorf("invalid commit parent: %w", err)
		}
	}
	if err := author.Validate(); err != nil {
		return nil, fmt.Errorf("invalid commit author: %w", err)
	}
	if err := committer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid commit committer: %w", err)
	}

	commit := &Commit{
		treeHash:   treeHash,
		parentHash: parentHash,
		author:     author,
		committer:  committer,
		message:    message,
	}
	commit.hash = computeHash(commit.Content(), utils.CommitObjectType)
	return commit, nil
}

func buildCommitContent(c *Commit) []byte {
	var buf strings.Builder

	// Tree reference
	buf.WriteString(constants.CommitTreePrefix + c.treeHash + "\n")

	// Parent reference, absent for the initial commit
	if c.parentHash != "" {
		buf.WriteString(constants.CommitParentPrefix + c.parentHash + "\n")
	}

	buf.WriteString(constants.CommitAuthorPrefix + c.author.encode() + "\n")
	buf.WriteString(constants.CommitCommitterPrefix + c.committer.encode() + "\n")

	// Blank line before message
	buf.WriteByte('\n')

	appendMessage(&buf, c.message)

	return []byte(buf.String())
}

// parseCommit decodes commit content produced by buildCommitContent.
func parseCommit(content []byte) (*Commit, error) {
	headers, message, found := strings.Cut(string(content), "\n\n")
	if !found {
		return nil, fmt.Errorf("%w: commit has no message separator", ErrMalformedObject)
	}

	var (
		treeHash, parentHash string
		author, committer    Author
		seenAuthor           bool
		seenCommitter        bool
	)

	for line := range strings.SplitSeq(headers, "\n") {
		var err error
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			treeHash = strings.TrimPrefix(line, constants.CommitTreePrefix)
		case strings.HasPrefix(line, constants.CommitParentPrefix):
			if parentHash != "" {
				return nil, fmt.Errorf("%w: commit has more than one parent", ErrMalformedObject)
			}
			parentHash = strings.TrimPrefix(line, constants.CommitParentPrefix)
		case strings.HasPrefix(line, constants.CommitAuthorPrefix):
			author, err = parseAuthor(strings.TrimPrefix(line, constants.CommitAuthorPrefix))
			seenAuthor = true
		case strings.HasPrefix(line, constants.CommitCommitterPrefix):
			committer, err = parseAuthor(strings.TrimPrefix(line, constants.CommitCommitterPrefix))
			seenCommitter = true
		default:
			return nil, fmt.Errorf("%w: unknown commit header %q", ErrMalformedObject, line)
		}
		if err != nil {
			return nil, err
		}
	}

	if !seenAuthor || !seenCommitter {
		return nil, fmt.Errorf("%w: commit is missing author or committer", ErrMalformedObject)
	}

	commit, err := newCommit(treeHash, parentHash, parseMessage(message), author, committer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}
	return commit, nil
}

func (c *Commit) Hash() string {
	return c.hash
}

func (c *Commit) Type() utils.ObjectType {
	return utils.CommitObjectType
}

func (c *Commit) TreeHash() string {
	return c.treeHash
}

func (c *Commit) ParentHash() string {
	return c.parentHash
}

func (c *Commit) Author() Author {
	return c.author
}

func (c *Commit) Committer() Author {
	return c.committer
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Content() []byte {
	return buildCommitContent(c)
}

func (c *Commit) Size() int {
	return len(c.Content())
}

func (c *Commit) Header() string {
	return utils.ObjectHeader(utils.CommitObjectType, c.Size())
}

func (c *Commit) Data() []byte {
	return buildData(utils.CommitObjectType, c.Content())
}

func (c *Commit) IsInitialCommit() bool {
	return c.parentHash == ""
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parent: %s, author: %s, message: %q}",
		c.hash, c.treeHash, c.parentHash, c.author.String(), c.message)
}

func (c *Commit) sealed() {}
