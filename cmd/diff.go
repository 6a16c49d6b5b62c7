package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/diff"
	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/repository"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [from] [to]",
	Short: "Show changes between commits or the working directory",
	Long: `Compare two snapshots. Each side is anything that names a commit (HEAD, a branch,
a tag or a hash) or a directory. Without arguments HEAD is compared with the working
directory; with one argument that side is compared with the working directory.

Examples:
  gocaf diff
  gocaf diff main feature --patch
  gocaf diff v1.0 .`,
	SilenceUsage: true,
	Args:         maximumArgs(2),
	RunE:         runDiff,
}

var diffPatch bool

// patchContext is the number of unchanged lines around each hunk.
const patchContext = 3

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVarP(&diffPatch, "patch", "p", false, "Show a unified diff of changed file contents")
}

func runDiff(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	var from, to repository.Target = repository.RefTarget(constants.Head), repository.PathTarget(repo.WorkDir())
	if len(args) > 0 {
		if from, err = diffTarget(repo, args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if to, err = diffTarget(repo, args[1]); err != nil {
			return err
		}
	}

	diffs, err := repo.Diff(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printDiffs(out, diffs)

	if diffPatch {
		p := &patcher{repo: repo, from: from, to: to}
		return p.write(out, diffs)
	}
	return nil
}

// diffTarget prefers refs and falls back to an existing directory.
func diffTarget(repo *repository.Repository, arg string) (repository.Target, error) {
	_, err := repo.ResolveRef(arg)
	if err == nil {
		return repository.RefTarget(arg), nil
	}
	if !errors.Is(err, repository.ErrUnknownRef) {
		return nil, err
	}

	abs, absErr := filepath.Abs(arg)
	if absErr != nil {
		return nil, absErr
	}
	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		return repository.PathTarget(abs), nil
	}
	return nil, err
}

var (
	addedColor    = color.New(color.FgGreen)
	removedColor  = color.New(color.FgRed)
	modifiedColor = color.New(color.FgYellow)
	movedColor    = color.New(color.FgCyan)
)

// printDiffs writes one line per changed file or directory. Moves are printed once.
func printDiffs(out io.Writer, diffs []*diff.Diff) {
	for _, d := range diff.Flatten(diffs) {
		switch d.Kind {
		case diff.Added:
			addedColor.Fprintf(out, "Added: %s\n", diff.Path(d))
		case diff.Removed:
			removedColor.Fprintf(out, "Removed: %s\n", diff.Path(d))
		case diff.Modified:
			// Directories are only containers of the changes listed beneath them
			if d.Entry.IsDirectory() && d.Next.IsDirectory() {
				continue
			}
			modifiedColor.Fprintf(out, "Modified: %s\n", diff.Path(d))
		case diff.MovedFrom:
			if d.Counterpart != nil {
				movedColor.Fprintf(out, "Moved: %s -> %s\n", diff.Path(d.Counterpart), diff.Path(d))
			}
		}
	}
}

// patcher renders unified diffs of file contents on both sides of a comparison.
type patcher struct {
	repo     *repository.Repository
	from, to repository.Target
}

func (p *patcher) write(out io.Writer, diffs []*diff.Diff) error {
	for _, d := range diff.Flatten(diffs) {
		path := diff.Path(d)
		var oldEntry, newEntry *objects.TreeEntry

		switch d.Kind {
		case diff.Added:
			newEntry = &d.Entry
		case diff.Removed:
			oldEntry = &d.Entry
		case diff.Modified:
			oldEntry, newEntry = &d.Entry, &d.Next
		default:
			// Moves carry identical content
			continue
		}
		if (oldEntry != nil && oldEntry.IsDirectory()) || (newEntry != nil && newEntry.IsDirectory()) {
			continue
		}

		oldText, err := p.content(p.from, path, oldEntry)
		if err != nil {
			return err
		}
		newText, err := p.content(p.to, path, newEntry)
		if err != nil {
			return err
		}

		if isBinary(oldText) || isBinary(newText) {
			fmt.Fprintf(out, "Binary files a/%s and b/%s differ\n", path, path)
			continue
		}

		patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(oldText)),
			B:        difflib.SplitLines(string(newText)),
			FromFile: "a/" + path,
			ToFile:   "b/" + path,
			Context:  patchContext,
		})
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", path, err)
		}
		fmt.Fprint(out, patch)
	}
	return nil
}

// content returns the bytes of entry as seen from target. Directory targets are read
// from disk since their blobs are never stored.
func (p *patcher) content(target repository.Target, path string, entry *objects.TreeEntry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}

	if dir, ok := target.(repository.PathTarget); ok {
		fullPath := filepath.Join(string(dir), filepath.FromSlash(path))
		if entry.Mode() == objects.ModeSymlink {
			link, err := os.Readlink(fullPath)
			return []byte(link), err
		}
		return os.ReadFile(fullPath)
	}

	blob, err := p.repo.Store().ReadBlob(entry.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return blob.Content(), nil
}

func isBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) != -1
}
