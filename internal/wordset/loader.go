// Package wordset loads the line-oriented resource files driving intent
// detection: trigger word sets, reply pools and the location alias table.
package wordset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kivanctezoren/sanalkiwobot/internal/text"
)

// commentPrefix marks lines to be skipped in every resource file.
const commentPrefix = "#%# "

func skipLine(line string) bool {
	return strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentPrefix)
}

func scanLines(path string, visit func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if skipLine(line) {
			continue
		}
		if err := visit(strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// ReadList reads a file into an ordered list of trimmed lines.
func ReadList(path string) ([]string, error) {
	var r []string
	err := scanLines(path, func(line string) error {
		r = append(r, line)
		return nil
	})
	return r, err
}

// ReadSet reads a file into a string set.
func ReadSet(path string) (text.Set, error) {
	r := make(text.Set)
	err := scanLines(path, func(line string) error {
		r.Add(line)
		return nil
	})
	return r, err
}

// ReadIntSet reads a file of integer IDs into a set.
func ReadIntSet(path string) (map[int64]struct{}, error) {
	r := make(map[int64]struct{})
	err := scanLines(path, func(line string) error {
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return fmt.Errorf("non-integer entry %q in %s: %w", line, path, err)
		}
		r[id] = struct{}{}
		return nil
	})
	return r, err
}

// Pair is one key/value entry of a pair-encoded file.
type Pair struct {
	Key   string
	Value string
}

// ReadPairs reads a file whose lines alternate between keys and values,
// preserving file order. A trailing key with no value is an error.
func ReadPairs(path string) ([]Pair, error) {
	var (
		r       []Pair
		pending string
		hasKey  bool
	)
	err := scanLines(path, func(line string) error {
		if hasKey {
			r = append(r, Pair{Key: pending, Value: line})
			hasKey = false
		} else {
			pending = line
			hasKey = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hasKey {
		return nil, fmt.Errorf("odd number of entries in %s: key %q has no value", path, pending)
	}
	return r, nil
}

// ReadFirstLine returns the first line of a file, trimmed.
func ReadFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}
