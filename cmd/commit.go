package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/repository"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit -m <message>",
	Short: "Record a snapshot of the working directory",
	Long: `Snapshot the whole working directory and record it as a commit on top of HEAD.
The author comes from --author, then from GOCAF_AUTHOR_NAME / GOCAF_AUTHOR_EMAIL,
then from the [user] table of .caf/config.toml.

Examples:
  gocaf commit -m "Add parser"
  gocaf commit -m "Fix typo" --author "Ada Lovelace <ada@example.com>"`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runCommit,
}

var (
	commitMessage string
	commitAuthor  string
)

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "Commit message")
	commitCmd.Flags().StringVar(&commitAuthor, "author", "", `Author as "Name <email>"`)
	_ = commitCmd.MarkFlagRequired("message")
}

func runCommit(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	author, err := resolveAuthor(repo, commitAuthor)
	if err != nil {
		return err
	}

	commit, err := repo.CommitWorkingDir(cmd.Context(), author, commitMessage)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	branch, err := repo.CurrentBranch()
	if err != nil {
		return err
	}
	if branch == "" {
		branch = "detached " + constants.Head
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, shortHash(commit.Hash()), firstLine(commit.Message()))
	return nil
}

// resolveAuthor prefers an explicit "Name <email>" and falls back to the configured identity.
func resolveAuthor(repo *repository.Repository, explicit string) (objects.Author, error) {
	if strings.TrimSpace(explicit) != "" {
		return parseAuthor(explicit)
	}

	user := repo.Config().User
	if strings.TrimSpace(user.Name) == "" {
		return objects.Author{}, errors.New("author is required (use --author or set user.name in " + constants.ConfigFile + ")")
	}
	return objects.Author{Name: user.Name, Email: user.Email}, nil
}

// parseAuthor reads "Name <email>". The email part is optional.
func parseAuthor(value string) (objects.Author, error) {
	name, rest, hasEmail := strings.Cut(value, "<")
	author := objects.Author{Name: strings.TrimSpace(name)}

	if hasEmail {
		email, ok := strings.CutSuffix(strings.TrimSpace(rest), ">")
		if !ok {
			return objects.Author{}, fmt.Errorf("invalid author %q, expected \"Name <email>\"", value)
		}
		author.Email = strings.TrimSpace(email)
	}
	if err := author.Validate(); err != nil {
		return objects.Author{}, err
	}
	return author, nil
}

func shortHash(hash string) string {
	return hash[:min(7, len(hash))]
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}
