package kv

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/benmeehan/geotrack/pkg/file"
)

// FileStore persists all keys as one JSON object in a single file.
type FileStore struct {
	path    string
	fileOps file.FileOperations
	mu      sync.Mutex
}

// NewFileStore creates a FileStore at path. A nil fileOps uses the default file service.
func NewFileStore(path string, fileOps file.FileOperations) *FileStore {
	if fileOps == nil {
		fileOps = file.NewFileService()
	}
	return &FileStore{path: path, fileOps: fileOps}
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		// An unreadable document is replaced rather than blocking every write
		doc = map[string]string{}
	}
	doc[key] = value
	return f.fileOps.WriteJsonFile(f.path, doc)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) read() (map[string]string, error) {
	doc := map[string]string{}
	if err := f.fileOps.ReadJsonFile(f.path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return doc, nil
}
