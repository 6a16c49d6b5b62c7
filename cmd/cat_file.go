package cmd

import (
	"fmt"
	"io"

	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/repository"
	"github.com/KostasZigo/gocaf/utils"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-t | -s | -p) <object>",
	Short: "Show the type, size or content of a stored object",
	Long: `Show information about an object in the store. The object is a full hash or
any name that resolves to a commit (HEAD, a branch or a tag).

Examples:
  gocaf cat-file -t 3b18e512dba79e4c8300dd08aeb37f8e728b8dad
  gocaf cat-file -p HEAD`,
	SilenceUsage: true,
	Args:         exactArgs(1, "object"),
	RunE:         runCatFile,
}

var (
	catFileType   bool
	catFileSize   bool
	catFilePretty bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&catFileType, "type", "t", false, "Show the object type")
	catFileCmd.Flags().BoolVarP(&catFileSize, "size", "s", false, "Show the content size in bytes")
	catFileCmd.Flags().BoolVarP(&catFilePretty, "pretty", "p", false, "Pretty-print the object content")
	catFileCmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	catFileCmd.MarkFlagsOneRequired("type", "size", "pretty")
}

func runCatFile(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	hash, err := objectHash(repo, args[0])
	if err != nil {
		return err
	}

	obj, err := repo.Store().Read(hash)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case catFileType:
		fmt.Fprintln(out, obj.Type())
	case catFileSize:
		fmt.Fprintln(out, len(obj.Content()))
	default:
		return printObject(out, obj)
	}
	return nil
}

// objectHash accepts a full hash of any object or a name resolving to a commit.
func objectHash(repo *repository.Repository, name string) (string, error) {
	if utils.IsValidHash(name) {
		return name, nil
	}
	hash, err := repo.ResolveRef(name)
	if err != nil {
		return "", err
	}
	if hash == "" {
		return "", fmt.Errorf("%s has no commits yet", name)
	}
	return hash, nil
}

func printObject(out io.Writer, obj objects.Object) error {
	switch obj := obj.(type) {
	case *objects.Tree:
		for _, entry := range obj.Entries() {
			entryType := utils.BlobObjectType
			if entry.IsDirectory() {
				entryType = utils.TreeObjectType
			}
			fmt.Fprintf(out, "%s %s %s\t%s\n", entry.Mode(), entryType, entry.Hash(), entry.Name())
		}
		return nil
	default:
		_, err := out.Write(obj.Content())
		return err
	}
}
