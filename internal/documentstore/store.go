// Package documentstore is a path-keyed JSON document store with
// interchangeable backends. It offers single-document reads and writes
// and prefix listing, nothing more.
package documentstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("document not found")

type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, doc []byte) error
	Remove(ctx context.Context, path string) error
	// List returns every document whose path starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	Close() error
}

type Options struct {
	Driver string
	Path   string
	DSN    string
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "bolt":
		return OpenBolt(opts.Path)
	case "sqlite":
		return OpenSQLite(ctx, opts.Path)
	case "postgres":
		return OpenPostgres(ctx, opts.DSN)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.Errorf("unknown document store driver %q", opts.Driver)
	}
}

func validPath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return errors.Errorf("invalid document path %q", path)
	}
	return nil
}
