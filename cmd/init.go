package cmd

import (
	"fmt"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/repository"
	"github.com/KostasZigo/gocaf/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new gocaf repository",
	Long: `The 'init' command sets up a new gocaf repository in the current directory.
It creates a .caf directory holding the object store, refs, HEAD and config.toml.
If a repository already exists, the command will not overwrite existing data.

Examples:
  # Repository with the default "main" branch and loose object files
  gocaf init

  # Single-file object database and a custom first branch
  gocaf init --storage bolt --branch trunk project`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runInit,
}

var (
	initBranch  string
	initStorage string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initBranch, "branch", "b", constants.DefaultBranch, "Name of the initial branch")
	initCmd.Flags().StringVar(&initStorage, "storage", constants.StorageLoose, "Object storage backend (loose or bolt)")
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	err := repository.InitRepository(dirPath,
		repository.WithDefaultBranch(initBranch),
		repository.WithStorage(initStorage))
	if err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	cmd.Printf("Initialized empty gocaf repository in %s\n", utils.BuildDirPath(dirPath, constants.RepoDir))
	return nil
}
