package cmd

import (
	"fmt"
	"os"

	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/utils"
	"github.com/spf13/cobra"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <filepath>",
	Short: "Compute object hash and optionally store the object from a file",
	Long: `Compute the object hash (SHA-1 hash) for a file's content.
Optionally write the resulting object into the repository's object store.

With -t other than blob the file must hold the content of an object of that type;
it is parsed and rejected when malformed.

Examples:
  # Compute hash without storing
  gocaf hash-object myfile.txt

  # Compute hash and store the blob
  gocaf hash-object -w myfile.txt`,
	SilenceUsage: true,
	Args:         exactArgs(1, "filepath"),
	RunE:         runHashObject,
}

var (
	writeFlag      bool
	hashObjectType string
)

func init() {
	rootCmd.AddCommand(hashObjectCmd)

	hashObjectCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Write the object into the object store")
	hashObjectCmd.Flags().StringVarP(&hashObjectType, "type", "t", string(utils.BlobObjectType), "Object type (blob, tree, commit, tag)")
}

// runHashObject computes hash and optionally stores the object.
func runHashObject(cmd *cobra.Command, args []string) error {
	obj, err := objectFromFile(args[0], utils.ObjectType(hashObjectType))
	if err != nil {
		return err
	}

	// Print hash to stdout
	fmt.Fprintln(cmd.OutOrStdout(), obj.Hash())

	if writeFlag {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.Store().Store(obj); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
	}

	return nil
}

func objectFromFile(path string, objectType utils.ObjectType) (objects.Object, error) {
	if !objectType.IsValid() {
		return nil, fmt.Errorf("invalid object type: %s", objectType)
	}
	if objectType == utils.BlobObjectType {
		blob, err := objects.NewBlobFromFile(path)
		if err != nil {
			return nil, err
		}
		return blob, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	data := append([]byte(utils.ObjectHeader(objectType, len(content))), content...)
	obj, err := objects.ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid %s: %w", path, objectType, err)
	}
	return obj, nil
}
