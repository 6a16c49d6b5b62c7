package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log [ref]",
	Short: "Show commit history",
	Long: `List commits from the given ref (HEAD by default) back to the first commit,
newest first.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

// logDateFormat renders commit times like git's default log output.
const logDateFormat = "Mon Jan 2 15:04:05 2006 -0700"

func runLog(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	tip := ""
	if len(args) > 0 {
		tip = args[0]
	}

	entries, err := repo.Log(tip)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No commits yet")
		return nil
	}

	hashColor := color.New(color.FgYellow)
	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		author := entry.Commit.Author()
		hashColor.Fprintf(out, "commit %s\n", entry.Hash)
		fmt.Fprintf(out, "Author: %s\n", author)
		fmt.Fprintf(out, "Date:   %s\n\n", author.Timestamp.Format(logDateFormat))
		for _, line := range strings.Split(entry.Commit.Message(), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	return nil
}
