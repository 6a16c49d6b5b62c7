package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/testutils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	color.NoColor = true
}

// createTestRootCmd creates fresh root command with the given subcommand.
// Flag values left over from earlier executions are reset.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	resetFlags(cmd)

	testRootCmd := &cobra.Command{Use: "gocaf"}
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	})
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// runCommand executes cmd with args and returns its stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	testRootCmd := createTestRootCmd(cmd)
	stdout := captureStdout(testRootCmd)
	captureStderr(testRootCmd)
	testRootCmd.SetArgs(args)

	err := testRootCmd.Execute()
	return stdout.String(), err
}

// mustRunCommand is runCommand failing the test on error.
func mustRunCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	out, err := runCommand(t, cmd, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

// setupCommandRepo initializes a repository in a temp dir and changes into it.
func setupCommandRepo(t *testing.T) string {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)
	return repoPath
}

// commitFile writes a file and commits the whole working directory, returning the commit hash.
func commitFile(t *testing.T, repoPath, name, content, message string) string {
	t.Helper()

	testutils.CreateTestFile(t, repoPath, name, []byte(content))
	mustRunCommand(t, commitCmd, constants.CommitCmdName, "-m", message, "--author", "Test Author <test@example.com>")

	out := mustRunCommand(t, logCmd, constants.LogCmdName)
	hash, ok := strings.CutPrefix(strings.SplitN(out, "\n", 2)[0], "commit ")
	if !ok {
		t.Fatalf("Unexpected log output: %s", out)
	}
	return hash
}

func assertContains(t *testing.T, output string, expected ...string) {
	t.Helper()

	for _, text := range expected {
		if !strings.Contains(output, text) {
			t.Errorf("Expected output to contain %q, got: %s", text, output)
		}
	}
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}
