package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/refs"
)

// LogEntry is one commit in the history walk.
type LogEntry struct {
	Hash   string
	Commit *objects.Commit
}

// CommitWorkingDir snapshots the working directory and records it as a commit on top of HEAD.
// The current branch advances to the new commit; a detached HEAD moves to it directly.
func (r *Repository) CommitWorkingDir(ctx context.Context, author objects.Author, message string) (*objects.Commit, error) {
	if strings.TrimSpace(author.Name) == "" {
		return nil, errors.New("author is required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("commit message is required")
	}
	if author.Timestamp.IsZero() {
		author.Timestamp = time.Now().Truncate(time.Second)
	}

	head, err := r.HeadRef()
	if err != nil {
		return nil, err
	}
	parent, err := r.resolve(head, 0)
	if err != nil {
		return nil, err
	}

	treeHash, err := r.SaveDir(ctx, r.workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot working directory: %w", err)
	}

	commit, err := objects.NewCommit(treeHash, parent, message, author)
	if err != nil {
		return nil, err
	}
	if err := r.store.Store(commit); err != nil {
		return nil, err
	}

	switch head := head.(type) {
	case refs.SymRef:
		if err := r.UpdateRef(head, commit.Hash()); err != nil {
			return nil, err
		}
	default:
		if err := refs.WriteRef(r.headPath(), refs.HashRef(commit.Hash())); err != nil {
			return nil, err
		}
	}

	slog.Debug("Created commit",
		"hash", commit.Hash(),
		"parent", parent,
		"tree", treeHash)

	return commit, nil
}

// Log walks first parents starting at tip. An empty tip means HEAD.
func (r *Repository) Log(tip string) ([]LogEntry, error) {
	if tip == "" {
		tip = constants.Head
	}

	current, err := r.ResolveRef(tip)
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	for current != "" {
		commit, err := r.store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("failed to load commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: commit})
		current = commit.ParentHash()
	}
	return entries, nil
}
