package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/utils"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag [name] [commit]",
	Short: "List, create or delete tags",
	Long: `Without arguments, list tags. With a name and a commit, create a tag.
A message (-m) makes the tag annotated: a tag object recording the tagger,
time and message is stored and the tag points at it.

Examples:
  gocaf tag
  gocaf tag v1.0 HEAD
  gocaf tag v1.0 3b18e512dba79e4c8300dd08aeb37f8e728b8dad -m "First release"
  gocaf tag -d v1.0`,
	SilenceUsage: true,
	Args:         maximumArgs(2),
	RunE:         runTag,
}

var (
	tagDelete  string
	tagMessage string
	tagAuthor  string
)

func init() {
	rootCmd.AddCommand(tagCmd)

	tagCmd.Flags().StringVarP(&tagDelete, "delete", "d", "", "Delete the named tag")
	tagCmd.Flags().StringVarP(&tagMessage, "message", "m", "", "Create an annotated tag with this message")
	tagCmd.Flags().StringVar(&tagAuthor, "author", "", `Tagger as "Name <email>" for annotated tags`)
}

func runTag(cmd *cobra.Command, args []string) error {
	switch {
	case cmd.Flags().Changed("delete"):
		return runDeleteTag(cmd, tagDelete)
	case len(args) > 0:
		commit := ""
		if len(args) > 1 {
			commit = args[1]
		}
		return runCreateTag(cmd, args[0], commit)
	default:
		return runListTags(cmd)
	}
}

func runListTags(cmd *cobra.Command) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	tags, err := repo.Tags()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags found")
		return nil
	}

	fmt.Fprintln(out, "Tags:")
	for _, tag := range tags {
		if tag.IsAnnotated() {
			fmt.Fprintf(out, "  %s -> %s  %s\n", tag.Name(), shortHash(tag.Target()), firstLine(tag.Annotation().Message))
			continue
		}
		fmt.Fprintf(out, "  %s -> %s\n", tag.Name(), shortHash(tag.Target()))
	}
	return nil
}

func runCreateTag(cmd *cobra.Command, name, commit string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("Tag name is required")
	}
	if strings.TrimSpace(commit) == "" {
		return errors.New("Commit hash is required")
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	// Full hashes go through as given so a missing commit is reported as such
	commitHash := commit
	if !utils.IsValidHash(commit) {
		if commitHash, err = repo.ResolveRef(commit); err != nil {
			return err
		}
	}

	var annotation *objects.TagAnnotation
	if cmd.Flags().Changed("message") {
		tagger, err := resolveAuthor(repo, tagAuthor)
		if err != nil {
			return err
		}
		annotation = &objects.TagAnnotation{Tagger: tagger, Message: tagMessage}
	}

	if _, err := repo.CreateTag(name, commitHash, annotation); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Tag %q created\n", name)
	return nil
}

func runDeleteTag(cmd *cobra.Command, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("Tag name is required")
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.DeleteTag(name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Tag %s deleted\n", name)
	return nil
}
