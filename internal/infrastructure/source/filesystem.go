package source

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/pricelens/backend/internal/domain"
)

// FileSource discovers input files in a directory by glob patterns
type FileSource struct {
	dir      string
	patterns []string
}

// NewFileSource creates a file source for dir matching any of patterns
func NewFileSource(dir string, patterns []string) *FileSource {
	return &FileSource{
		dir:      dir,
		patterns: patterns,
	}
}

// ReadSources returns the matching files sorted by name. A file that cannot be
// read is returned with Err set so the load can report it and continue.
func (s *FileSource) ReadSources(ctx context.Context) ([]domain.SourceFile, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", s.dir)
	}

	paths, err := s.match()
	if err != nil {
		return nil, err
	}

	files := make([]domain.SourceFile, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		name := filepath.Base(path)
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Printf("[SOURCE] Cannot read %s: %v", path, readErr)
			files = append(files, domain.SourceFile{Name: name, Err: readErr})
			continue
		}
		files = append(files, domain.SourceFile{Name: name, Content: content})
	}

	return files, nil
}

// match expands all patterns, dropping duplicates and directories, in lexicographic order
func (s *FileSource) match() ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range s.patterns {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if fi, err := os.Stat(m); err != nil || fi.IsDir() {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}
