package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
)

// fileSet is a line-oriented on-disk ID set: one ID per line, blank lines
// and comment lines ignored. The full membership is mirrored in memory;
// writes go through a single mutex.
type fileSet struct {
	path string

	mu      sync.Mutex
	members map[int64]struct{}
}

func openFileSet(path string) (*fileSet, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return nil, fmt.Errorf("failed to create registry file: %w", err)
		}
	}

	members, err := wordset.ReadIntSet(path)
	if err != nil {
		return nil, err
	}
	return &fileSet{path: path, members: members}, nil
}

func (s *fileSet) Add(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; ok {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open registry file: %w", err)
	}
	defer f.Close()

	// A hand-edited file may lack its final newline; appending right after
	// it would glue two IDs onto one line.
	entry := fmt.Sprintf("%d\n", id)
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err == nil && last[0] != '\n' {
			entry = "\n" + entry
		}
	}

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to append registry entry: %w", err)
	}

	s.members[id] = struct{}{}
	return nil
}

func (s *fileSet) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return nil
	}

	// Rewrite the file without the removed line, keeping comments intact.
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read registry file: %w", err)
	}

	removed := strconv.FormatInt(id, 10)
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == removed {
			continue
		}
		kept = append(kept, line)
	}

	if err := os.WriteFile(s.path, []byte(strings.Join(kept, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to rewrite registry file: %w", err)
	}

	delete(s.members, id)
	return nil
}

func (s *fileSet) Contains(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok, nil
}

func (s *fileSet) All(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := make([]int64, 0, len(s.members))
	for id := range s.members {
		r = append(r, id)
	}
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return r, nil
}
