package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

const fileExtension = ".json"

// NewFileStore creates a store, which keeps each document as a JSON file in the directory at path.
// The directory is created, if it does not exist.
func NewFileStore(path string, customizers ...func(*Options)) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("path is empty")
	}

	options := newOptions(customizers)

	fs := options.FileSystem
	if fs == nil {
		fs = osfs.OsFs
	}

	if err := fs.MkdirAll(path, 0o700); err != nil && !errors.Is(err, vfs.ErrExist) {
		return nil, fmt.Errorf("failed to create directory %s: %v", path, err)
	}

	return &FileStore{fs: fs, path: path, logger: options.Logger}, nil
}

type FileStore struct {
	fs     vfs.FileSystem
	path   string
	logger logr.Logger
}

func (s *FileStore) Save(_ context.Context, name string, d *model.Document) error {
	if err := checkName(name); err != nil {
		return err
	}

	data, err := model.Marshal(d)
	if err != nil {
		return err
	}

	path := s.documentPath(name)

	// write to a temporary file first, so that a failure does not corrupt an existing document
	tmpPath := path + ".tmp"
	if err := vfs.WriteFile(s.fs, tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file %s: %v", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename file %s: %v", tmpPath, err)
	}

	d.MarkSaved()

	s.logger.V(1).Info("saved document", "name", name, "path", path)
	return nil
}

func (s *FileStore) Load(_ context.Context, name string) (*model.Document, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	path := s.documentPath(name)

	data, err := vfs.ReadFile(s.fs, path)
	if errors.Is(err, vfs.ErrNotExist) {
		return nil, notFound("failed to load document", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %v", path, err)
	}

	return decode(name, data, s.logger)
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := vfs.ReadDir(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %v", s.path, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), fileExtension)
		if checkName(name) == nil {
			names = append(names, name)
		}
	}

	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	path := s.documentPath(name)

	err := s.fs.Remove(path)
	if errors.Is(err, vfs.ErrNotExist) {
		return notFound("failed to delete document", name)
	}
	if err != nil {
		return fmt.Errorf("failed to remove file %s: %v", path, err)
	}

	s.logger.V(1).Info("deleted document", "name", name, "path", path)
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) documentPath(name string) string {
	return filepath.Join(s.path, name+fileExtension)
}
