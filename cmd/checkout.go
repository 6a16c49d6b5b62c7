package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <target>",
	Short: "Switch the working directory to a branch, tag or commit",
	Long: `Replace the working directory with the snapshot of target and move HEAD.
A branch keeps HEAD attached to it; a tag or hash leaves HEAD detached.
When a branch and a tag share a name, the branch is used.
The working directory must not have uncommitted changes.`,
	SilenceUsage: true,
	Args:         exactArgs(1, "target"),
	RunE:         runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Checkout(cmd.Context(), args[0]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	branch, err := repo.CurrentBranch()
	if err != nil {
		return err
	}
	if branch != "" {
		fmt.Fprintf(out, "Switched to branch '%s'\n", branch)
		return nil
	}

	head, err := repo.HeadCommit()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "HEAD is now at %s\n", shortHash(head))
	return nil
}
