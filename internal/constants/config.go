package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	CatFileCmdName    = "cat-file"
	CommitCmdName     = "commit"
	LogCmdName        = "log"
	BranchCmdName     = "branch"
	TagCmdName        = "tag"
	DiffCmdName       = "diff"
	StatusCmdName     = "status"
	CheckoutCmdName   = "checkout"
)

// Repository directory and file names define the gocaf metadata structure.
const (
	// RepoDir is the repository metadata directory.
	RepoDir = ".caf"

	// Objects stores content-addressable objects (blobs, trees, commits, tags).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// ConfigFile holds repository configuration in TOML.
	ConfigFile = "config.toml"

	// BoltFile is the single-file object database used by the bolt backend.
	BoltFile = "objects.db"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// SymRefPrefix marks a symbolic reference inside a ref file.
	SymRefPrefix = "ref: "

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = SymRefPrefix + Refs + "/" + Heads + "/"
)

// Storage backend names accepted in config.toml.
const (
	StorageLoose = "loose"
	StorageBolt  = "bolt"
)

// ObjectFormatVersion identifies the canonical byte encoding of objects.
// Any change to field order or encoding changes every hash and must bump it.
const ObjectFormatVersion = 1

// Environment variables overriding the configured identity.
const (
	EnvAuthorName  = "GOCAF_AUTHOR_NAME"
	EnvAuthorEmail = "GOCAF_AUTHOR_EMAIL"
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ExecPerms is used when checking out executable entries (rwxr-xr-x).
	ExecPerms os.FileMode = 0755
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Object header and field prefixes used in canonical encodings.
const (
	// CommitTreePrefix marks the tree line in commit objects.
	CommitTreePrefix = "tree "

	// CommitParentPrefix marks parent commit lines in commit objects.
	CommitParentPrefix = "parent "

	// CommitAuthorPrefix marks author metadata in commit objects.
	CommitAuthorPrefix = "author "

	// CommitCommitterPrefix marks committer metadata in commit objects.
	CommitCommitterPrefix = "committer "

	// TagObjectPrefix marks the target line in tag objects.
	TagObjectPrefix = "object "

	// TagTypePrefix marks the target type line in tag objects.
	TagTypePrefix = "type "

	// TagNamePrefix marks the tag name line in tag objects.
	TagNamePrefix = "tag "

	// TagTaggerPrefix marks tagger metadata in annotated tag objects.
	TagTaggerPrefix = "tagger "
)

// Object format constants.
const (
	// NullByte separates header from content in objects.
	NullByte = '\x00'
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)
