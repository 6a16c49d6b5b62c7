package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/repository"
	"github.com/spf13/cobra"
)

// errNoRepository is shown when a command runs outside any repository.
var errNoRepository = errors.New("No repository found (" + constants.RepoDir + " directory not found)")

var verbose bool

// rootCmd defines the base command for the gocaf CLI.
// All subcommands (init, commit, checkout, etc.) register under this root.
var rootCmd = &cobra.Command{
	Use:   "gocaf",
	Short: "A content-addressable file store with git-style history",
	Long: `gocaf is a content-addressable store for directory snapshots. Files become blobs,
directories become trees and snapshots are recorded as commits that can be branched, tagged,
compared and checked out.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd.ErrOrStderr(), verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configureLogging installs the default slog handler. Debug records only show with --verbose.
func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// openRepo opens the repository containing the current directory.
// The caller closes it.
func openRepo() (*repository.Repository, error) {
	repo, err := repository.Open(".")
	if errors.Is(err, repository.ErrRepositoryNotFound) {
		return nil, errNoRepository
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// exactArgs validates command receives exactly n positional arguments.
// enables usage printing in case of error
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires exactly %d argument (%s), received %d", cmd.Name(), n, what, len(args))
		}
		return nil
	}
}

// maximumArgs validates command receives at most n positional arguments.
// Returns error with usage help if argument limit exceeded.
func maximumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts at most %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
