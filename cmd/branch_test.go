package cmd

import (
	"strings"
	"testing"

	"github.com/KostasZigo/gocaf/internal/constants"
)

func TestBranchCommand_CreateListDelete(t *testing.T) {
	repoPath := setupCommandRepo(t)
	commitFile(t, repoPath, "file.txt", "content", "initial")

	output := mustRunCommand(t, branchCmd, constants.BranchCmdName, "feature")
	assertContains(t, output, `Branch "feature" created`)

	output = mustRunCommand(t, branchCmd, constants.BranchCmdName)
	if output != "  feature\n* main\n" {
		t.Errorf("Unexpected branch listing: %q", output)
	}

	output = mustRunCommand(t, branchCmd, constants.BranchCmdName, "-d", "feature")
	assertContains(t, output, "Branch feature deleted")

	output = mustRunCommand(t, branchCmd, constants.BranchCmdName)
	if strings.Contains(output, "feature") {
		t.Errorf("feature should be gone, got: %q", output)
	}
}

func TestBranchCommand_Errors(t *testing.T) {
	setupCommandRepo(t)

	if _, err := runCommand(t, branchCmd, constants.BranchCmdName, "main"); err == nil {
		t.Error("Expected error creating an existing branch")
	}
	if _, err := runCommand(t, branchCmd, constants.BranchCmdName, "-d", "main"); err == nil {
		t.Error("Expected error deleting the only branch")
	}
	if _, err := runCommand(t, branchCmd, constants.BranchCmdName, "-d", "ghost"); err == nil {
		t.Error("Expected error deleting a missing branch")
	}
	if _, err := runCommand(t, branchCmd, constants.BranchCmdName, "bad name"); err == nil {
		t.Error("Expected error for invalid branch name")
	}

	output, err := runCommand(t, branchCmd, constants.BranchCmdName, "-d", "")
	if err == nil {
		t.Fatalf("Expected error deleting an empty branch name, got output %q", output)
	}
	assertContains(t, err.Error(), "Branch name is required")
}
