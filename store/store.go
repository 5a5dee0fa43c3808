// Package store persists process documents in the JSON document format.
//
// Supported backends are a file system directory, PostgreSQL, Redis and a procdoc server - see [Open].
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// RegexpName matches valid document names.
var RegexpName = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Store persists documents under a name.
type Store interface {
	// Save stores a document under the given name, replacing an existing document.
	// After saving, the document is not modified anymore.
	Save(ctx context.Context, name string, d *model.Document) error

	// Load loads the document with the given name.
	// An error of type [model.ErrorNotFound] is returned, if no such document exists.
	Load(ctx context.Context, name string) (*model.Document, error)

	// List returns the names of all stored documents in lexical order.
	List(ctx context.Context) ([]string, error)

	// Delete deletes the document with the given name.
	// An error of type [model.ErrorNotFound] is returned, if no such document exists.
	Delete(ctx context.Context, name string) error

	// Close releases all resources, held by the store.
	Close() error
}

func NewOptions() Options {
	return Options{
		Logger:  logr.Discard(),
		Timeout: 30 * time.Second,
	}
}

type Options struct {
	FileSystem vfs.FileSystem // File system of a file store. If nil, the OS file system is used.
	Logger     logr.Logger
	Timeout    time.Duration // Time limit for establishing a connection or, in case of an HTTP store, for a request.
}

// Open opens a store, selected by the scheme of the given URL:
//
//   - file://path or a plain path: [FileStore]
//   - postgres:// or postgresql://: [PgStore]
//   - redis:// or rediss://: [RedisStore]
//   - http:// or https://: [HttpStore]
func Open(ctx context.Context, url string, customizers ...func(*Options)) (Store, error) {
	if url == "" {
		return nil, errors.New("store URL is empty")
	}

	switch {
	case strings.HasPrefix(url, "file://"):
		return NewFileStore(strings.TrimPrefix(url, "file://"), customizers...)
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return NewPgStore(ctx, url, customizers...)
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return NewRedisStore(ctx, url, customizers...)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return NewHttpStore(url, customizers...)
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("unsupported store URL scheme %s", url[:strings.Index(url, "://")])
	default:
		return NewFileStore(url, customizers...)
	}
}

func checkName(name string) error {
	if !RegexpName.MatchString(name) {
		return fmt.Errorf("invalid document name %q: must match %s", name, RegexpName.String())
	}
	return nil
}

func decode(name string, data []byte, logger logr.Logger) (*model.Document, error) {
	d, err := model.Unmarshal(data, func(o *model.Options) {
		o.Logger = logger
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", name, err)
	}
	return d, nil
}

func notFound(title string, name string) error {
	return model.Error{
		Type:   model.ErrorNotFound,
		Title:  title,
		Detail: fmt.Sprintf("document %s could not be found", name),
	}
}

func newOptions(customizers []func(*Options)) Options {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}
	return options
}
