package backend

import (
	"github.com/binrep/binrep/internal/backend/fsbackend"
	"github.com/binrep/binrep/internal/backend/s3backend"
	"github.com/binrep/binrep/internal/binreperr"
)

// Kind selects which concrete Backend a Config describes.
type Kind string

const (
	KindFilesystem Kind = "filesystem"
	KindS3         Kind = "s3"
)

// Config is the [backend] section of the process configuration, carrying
// only the fields relevant to whichever Kind is selected.
type Config struct {
	Kind Kind

	// Filesystem
	RootDir string

	// S3
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

// Open picks the concrete Backend implementation Kind names and constructs
// it, so callers carry one tagged value instead of branching on type.
func Open(cfg Config) (Backend, error) {
	switch cfg.Kind {
	case KindFilesystem:
		root, err := fsbackend.ExpandRoot(cfg.RootDir)
		if err != nil {
			return nil, err
		}
		return fsbackend.NewOS(root), nil
	case KindS3:
		return s3backend.Open(s3backend.Config{
			Bucket:  cfg.Bucket,
			Prefix:  cfg.Prefix,
			Region:  cfg.Region,
			Profile: cfg.Profile,
		})
	default:
		return nil, binreperr.Config("unknown backend kind", nil).With("kind", string(cfg.Kind))
	}
}
