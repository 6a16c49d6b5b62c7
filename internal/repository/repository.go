package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gocaf/internal/config"
	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/internal/objects"
	"github.com/KostasZigo/gocaf/internal/refs"
)

var (
	// ErrRepositoryNotFound is returned when no .caf directory exists at or above a path.
	ErrRepositoryNotFound = errors.New("no repository found (" + constants.RepoDir + " directory not found)")

	ErrRepositoryExists = errors.New("repository already exists")

	ErrBranchExists   = errors.New("branch already exists")
	ErrBranchNotFound = errors.New("branch not found")

	ErrTagExists   = errors.New("tag already exists")
	ErrTagNotFound = errors.New("tag not found")

	// ErrUnknownRef is returned when a name matches no ref, branch, tag or hash.
	ErrUnknownRef = errors.New("unknown reference")

	// ErrDirtyWorkingTree is returned when an operation needs a clean working directory.
	ErrDirtyWorkingTree = errors.New("working directory has uncommitted changes")
)

// Repository is an opened repository: a working directory and its .caf metadata.
type Repository struct {
	workDir string
	repoDir string
	config  config.Config
	store   *objects.ObjectStore
}

// InitOption customizes InitRepository.
type InitOption func(*config.Config)

// WithDefaultBranch sets the branch HEAD points at after init.
func WithDefaultBranch(name string) InitOption {
	return func(cfg *config.Config) {
		cfg.Core.DefaultBranch = name
	}
}

// WithStorage selects the object backend ("loose" or "bolt").
func WithStorage(storage string) InitOption {
	return func(cfg *config.Config) {
		cfg.Core.Storage = storage
	}
}

// InitRepository creates the .caf layout in path. A partially created layout is removed on failure.
func InitRepository(path string, opts ...InitOption) error {
	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := refs.ValidateName(cfg.Core.DefaultBranch); err != nil {
		return fmt.Errorf("invalid default branch: %w", err)
	}

	// Resolves and adds OS specific separator
	repoDir := filepath.Join(path, constants.RepoDir)

	if err := checkRepositoryDoesNotExist(repoDir); err != nil {
		return err
	}

	// Track if initialization of directories and files was successful.
	// Anything created before a failure is removed by the deferred cleanup.
	var initSuccess bool
	defer func() {
		if !initSuccess {
			cleanupRepository(repoDir)
		}
	}()

	directories := []string{
		repoDir,
		filepath.Join(repoDir, constants.Objects),
		filepath.Join(repoDir, constants.Refs),
		filepath.Join(repoDir, constants.Refs, constants.Heads),
		filepath.Join(repoDir, constants.Refs, constants.Tags),
	}

	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	branch := refs.BranchRef(cfg.Core.DefaultBranch)
	branchFile := filepath.Join(repoDir, filepath.FromSlash(branch.String()))
	if err := os.MkdirAll(filepath.Dir(branchFile), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory for branch %s: %w", cfg.Core.DefaultBranch, err)
	}
	if err := refs.WriteRef(branchFile, nil); err != nil {
		return fmt.Errorf("failed to create default branch: %w", err)
	}

	if err := refs.WriteRef(filepath.Join(repoDir, constants.Head), branch); err != nil {
		return fmt.Errorf("failed to create %s file: %w", constants.Head, err)
	}

	if err := config.Save(filepath.Join(repoDir, constants.ConfigFile), cfg); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	store, err := openStore(repoDir, cfg.Core.Storage)
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close object store: %w", err)
	}

	initSuccess = true
	return nil
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("%w at %s", ErrRepositoryExists, path)
}

// Removes the entire .caf directory if it exists
func cleanupRepository(repoDir string) {
	if _, err := os.Stat(repoDir); err == nil {
		slog.Debug("Cleaning up partial repository initialization",
			"path", repoDir)

		if err := os.RemoveAll(repoDir); err != nil {
			slog.Warn("Failed to cleanup repository directory",
				"path", repoDir,
				"error", err)
		} else {
			slog.Debug("Successfully cleaned up repository directory",
				"path", repoDir)
		}
	}
}

// Open finds the repository containing path, loads its configuration and opens its object store.
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	workDir, err := findRepoRoot(absPath)
	if err != nil {
		return nil, err
	}
	repoDir := filepath.Join(workDir, constants.RepoDir)

	cfg, err := config.Load(filepath.Join(repoDir, constants.ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStore(repoDir, cfg.Core.Storage)
	if err != nil {
		return nil, err
	}

	slog.Debug("Opened repository",
		"path", workDir,
		"storage", cfg.Core.Storage)

	return &Repository{
		workDir: workDir,
		repoDir: repoDir,
		config:  cfg,
		store:   store,
	}, nil
}

// findRepoRoot locates the .caf directory by walking up the directory tree.
func findRepoRoot(dir string) (string, error) {
	for {
		repoDir := filepath.Join(dir, constants.RepoDir)
		if info, err := os.Stat(repoDir); err == nil && info.IsDir() {
			return dir, nil
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRepositoryNotFound
		}
		dir = parent
	}
}

func openStore(repoDir, storage string) (*objects.ObjectStore, error) {
	switch storage {
	case constants.StorageBolt:
		backend, err := objects.OpenBoltBackend(filepath.Join(repoDir, constants.BoltFile))
		if err != nil {
			return nil, err
		}
		return objects.NewObjectStoreWithBackend(backend), nil
	case constants.StorageLoose, "":
		return objects.NewObjectStoreWithBackend(objects.NewLooseBackend(filepath.Join(repoDir, constants.Objects))), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", storage)
	}
}

// Close releases the object store.
func (r *Repository) Close() error {
	return r.store.Close()
}

// WorkDir returns the directory containing .caf.
func (r *Repository) WorkDir() string {
	return r.workDir
}

func (r *Repository) Config() config.Config {
	return r.config
}

func (r *Repository) Store() *objects.ObjectStore {
	return r.store
}

// refPath maps a ref path relative to .caf ("refs/heads/main") onto the filesystem.
func (r *Repository) refPath(ref refs.SymRef) string {
	return filepath.Join(r.repoDir, filepath.FromSlash(ref.String()))
}

func (r *Repository) headPath() string {
	return filepath.Join(r.repoDir, constants.Head)
}

func (r *Repository) headsDir() string {
	return filepath.Join(r.repoDir, constants.Refs, constants.Heads)
}

func (r *Repository) tagsDir() string {
	return filepath.Join(r.repoDir, constants.Refs, constants.Tags)
}
