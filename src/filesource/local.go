package filesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

type LocalFileSource struct {
	Root string
}

func NewLocalFileSource(root string) (*LocalFileSource, error) {
	if root == "" {
		return nil, fmt.Errorf("NewLocalFileSource: missing root directory")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("NewLocalFileSource: %v: %w", err, eventmodels.ErrSourceUnavailable)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("NewLocalFileSource: %s is not a directory: %w", root, eventmodels.ErrSourceUnavailable)
	}

	return &LocalFileSource{Root: root}, nil
}

func (s *LocalFileSource) String() string {
	return fmt.Sprintf("local:%s", s.Root)
}

func (s *LocalFileSource) fullPath(p string) string {
	return filepath.Join(s.Root, filepath.FromSlash(p))
}

func (s *LocalFileSource) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.fullPath(p))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("LocalFileSource.Exists: %w", err)
}

func (s *LocalFileSource) List(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("LocalFileSource.List: bad pattern %q: %w", pattern, err)
	}

	matches, err := filepath.Glob(s.fullPath(pattern))
	if err != nil {
		return nil, fmt.Errorf("LocalFileSource.List: %w", err)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}

		rel, err := filepath.Rel(s.Root, m)
		if err != nil {
			return nil, fmt.Errorf("LocalFileSource.List: %w", err)
		}

		out = append(out, filepath.ToSlash(rel))
	}

	sort.Strings(out)

	return out, nil
}

func (s *LocalFileSource) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.fullPath(p))
	if err != nil {
		return nil, fmt.Errorf("LocalFileSource.Open: %v: %w", err, eventmodels.ErrSourceUnavailable)
	}

	return f, nil
}
