package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:          "status",
	Short:        "Show changes in the working directory since the last commit",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	out := cmd.OutOrStdout()

	branch, err := repo.CurrentBranch()
	if err != nil {
		return err
	}
	if branch != "" {
		fmt.Fprintf(out, "On branch %s\n", branch)
	} else {
		head, err := repo.HeadCommit()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "HEAD detached at %s\n", shortHash(head))
	}

	diffs, err := repo.Status(cmd.Context())
	if err != nil {
		return err
	}

	if len(diffs) == 0 {
		fmt.Fprintln(out, "nothing to commit, working tree clean.")
		return nil
	}
	printDiffs(out, diffs)
	return nil
}
