package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const fileDocumentVersion = "1.0"

// File stores values in a YAML document per namespace,
// ~/.config/westmarch/<namespace>.yaml by default.
type File struct {
	lock sync.Mutex
	path string
}

type fileDocument struct {
	Version   string            `yaml:"version"`
	Timestamp time.Time         `yaml:"timestamp"`
	Values    map[string]string `yaml:"values"`
}

func newFileDocument() *fileDocument {
	return &fileDocument{
		Version:   fileDocumentVersion,
		Timestamp: time.Now().UTC(),
		Values:    make(map[string]string),
	}
}

// NewFile creates a file store in dir. An empty dir uses the default
// config directory.
func NewFile(dir string, namespace string) (*File, error) {
	if len(dir) == 0 {
		defaultDir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = defaultDir
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &File{
		path: filepath.Join(dir, fmt.Sprintf("%s.yaml", sanitizeNamespace(namespace))),
	}, nil
}

// DefaultDir returns ~/.config/westmarch.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "westmarch"), nil
}

// Path returns the location of the backing document.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", false, err
	}

	value, ok := doc.Values[key]
	return value, ok, nil
}

func (f *File) Set(_ context.Context, key string, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	doc.Values[key] = value
	return f.commit(doc)
}

func (f *File) Delete(_ context.Context, keys ...string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	changed := false
	for _, key := range keys {
		if _, ok := doc.Values[key]; ok {
			delete(doc.Values, key)
			changed = true
		}
	}

	if !changed {
		return nil
	}

	return f.commit(doc)
}

// load reads the document. Missing, empty and unparsable files all
// yield an empty document.
func (f *File) load() (*fileDocument, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return newFileDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if len(data) == 0 {
		return newFileDocument(), nil
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path": f.path,
		}).Errorln("Failed to parse session file, reinitializing")
		return newFileDocument(), nil
	}

	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	return &doc, nil
}

func (f *File) commit(doc *fileDocument) error {
	// Only allow read/write access to the owner
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	doc.Version = fileDocumentVersion
	doc.Timestamp = time.Now().UTC()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return encoder.Close()
}
