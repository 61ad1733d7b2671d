// Package blob selects a blob store implementation from configuration.
package blob

import (
	"context"
	"fmt"

	"frontdesk/internal/config"
	"frontdesk/internal/infra/blob/core"
	"frontdesk/internal/infra/blob/fs"
	"frontdesk/internal/infra/blob/memory"
	"frontdesk/internal/infra/blob/s3"
)

// Open returns the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.BlobConfig) (core.Store, error) {
	switch core.Driver(cfg.Driver) {
	case core.DriverFilesystem, "":
		root := cfg.FSRoot
		if root == "" {
			root = fs.DefaultRoot
		}
		return fs.New(root)
	case core.DriverMemory:
		return memory.New(), nil
	case core.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
