package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create or delete branches",
	Long: `Without arguments, list branches and mark the current one with '*'.
With a name, create a branch at the current commit.

Examples:
  gocaf branch
  gocaf branch feature/login
  gocaf branch -d feature/login`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runBranch,
}

var branchDelete string

func init() {
	rootCmd.AddCommand(branchCmd)

	branchCmd.Flags().StringVarP(&branchDelete, "delete", "d", "", "Delete the named branch")
}

func runBranch(cmd *cobra.Command, args []string) error {
	deleting := cmd.Flags().Changed("delete")
	if deleting && strings.TrimSpace(branchDelete) == "" {
		return errors.New("Branch name is required")
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	out := cmd.OutOrStdout()

	switch {
	case deleting:
		if err := repo.DeleteBranch(branchDelete); err != nil {
			return err
		}
		fmt.Fprintf(out, "Branch %s deleted\n", branchDelete)
	case len(args) == 1:
		if err := repo.AddBranch(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Branch %q created\n", args[0])
	default:
		branches, err := repo.Branches()
		if err != nil {
			return err
		}
		current, err := repo.CurrentBranch()
		if err != nil {
			return err
		}

		currentColor := color.New(color.FgGreen)
		for _, branch := range branches {
			if branch == current {
				currentColor.Fprintf(out, "* %s\n", branch)
				continue
			}
			fmt.Fprintf(out, "  %s\n", branch)
		}
	}
	return nil
}
