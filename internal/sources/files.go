// Package sources provides the searchable sources: files named on the
// command line or fetched into the log cache, each identified by its
// absolute path.
package sources

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
)

var (
	ErrTooLarge = errors.New("file exceeds size limit")
	ErrBinary   = errors.New("binary file")
)

// sniffLen is how much of a file is checked for NUL bytes.
const sniffLen = 8000

// File is a source backed by a file on disk. Content is read on every
// call so edits made after the set was built are seen.
type File struct {
	path    string
	maxSize int64
}

func (f *File) ID() string {
	return f.path
}

func (f *File) Content() (string, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return "", err
	}
	if f.maxSize > 0 && info.Size() > f.maxSize {
		return "", fmt.Errorf("%s (%d bytes): %w", f.path, info.Size(), ErrTooLarge)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0 {
		return "", fmt.Errorf("%s: %w", f.path, ErrBinary)
	}
	return string(data), nil
}

type Options struct {
	Exclude []string // glob patterns matched against base name and full path
	MaxSize int64    // bytes; 0 means unlimited
}

// FileSet is an ordered, duplicate-free set of file paths. It is safe for
// concurrent use so that background loaders can add to it.
type FileSet struct {
	mu       sync.RWMutex
	paths    []string
	index    map[string]struct{}
	reserved map[string]struct{}
	opts     Options
}

func NewFileSet(opts Options) *FileSet {
	return &FileSet{
		index:    make(map[string]struct{}),
		reserved: make(map[string]struct{}),
		opts:     opts,
	}
}

// Reserve keeps ids out of Sources. The UI registers its own surfaces here.
func (s *FileSet) Reserve(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.reserved[id] = struct{}{}
	}
}

// Add adds files and, recursively, the files under directories. Hidden
// directories are skipped. Paths are stored absolute.
func (s *FileSet) Add(paths ...string) error {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("add source: %w", err)
		}
		if !info.IsDir() {
			s.addFile(abs)
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("walk %s: %v", path, err)
				return nil
			}
			if d.IsDir() {
				if path != abs && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				s.addFile(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", abs, err)
		}
	}
	return nil
}

func (s *FileSet) addFile(path string) {
	if s.excluded(path) {
		logger.Debug("excluded %s", path)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[path]; ok {
		return
	}
	s.index[path] = struct{}{}
	s.paths = append(s.paths, path)
}

func (s *FileSet) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range s.opts.Exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Remove drops path from the set.
func (s *FileSet) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[path]; !ok {
		return
	}
	delete(s.index, path)
	for i, p := range s.paths {
		if p == path {
			s.paths = append(s.paths[:i], s.paths[i+1:]...)
			break
		}
	}
}

func (s *FileSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}

// Paths returns the member paths in insertion order.
func (s *FileSet) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.paths...)
}

// Sources returns the eligible members in insertion order.
func (s *FileSet) Sources() []model.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Source, 0, len(s.paths))
	for _, p := range s.paths {
		if !s.eligible(p) {
			continue
		}
		out = append(out, &File{path: p, maxSize: s.opts.MaxSize})
	}
	return out
}

func (s *FileSet) eligible(id string) bool {
	if _, ok := s.reserved[id]; ok {
		return false
	}
	return Eligible(id)
}

// Eligible reports whether id is a stable on-disk identity.
func Eligible(id string) bool {
	return id != "" && filepath.IsAbs(id)
}
