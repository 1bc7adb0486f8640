package filesource

import (
	"context"
	"fmt"
	"io"
)

// FileSource is a read-only view over a tree of day files. Paths use forward
// slashes and are relative to the source root. List patterns follow path.Match,
// so a '*' never crosses a '/'.
type FileSource interface {
	Exists(ctx context.Context, path string) (bool, error)
	List(ctx context.Context, pattern string) ([]string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	String() string
}

type Kind string

const (
	KindLocal Kind = "local"
	KindS3    Kind = "s3"
)

// Descriptor selects and configures a FileSource.
type Descriptor struct {
	Kind      Kind
	LocalRoot string
	S3        S3Config
}

func NewFileSource(d Descriptor) (FileSource, error) {
	switch d.Kind {
	case KindLocal:
		return NewLocalFileSource(d.LocalRoot)
	case KindS3:
		return NewS3FileSource(d.S3)
	default:
		return nil, fmt.Errorf("NewFileSource: unknown file source kind %q", d.Kind)
	}
}
