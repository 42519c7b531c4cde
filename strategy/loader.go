package strategy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lab1702/shiparena/game"
)

// maxNameLength bounds player names derived from script files
const maxNameLength = 20

// Entry is a named strategy ready to be registered with the engine
type Entry struct {
	Name     string
	Strategy game.Strategy
}

// LoadDir loads every *.lua script in dir in file name order. A script that
// fails to load is skipped and its error is included in the joined error
// returned alongside the scripts that did load.
func LoadDir(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read strategy dir: %w", err)
	}

	var (
		entries []Entry
		errs    []error
		seen    = map[string]bool{}
	)
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".lua") {
			continue
		}

		name := sanitizeName(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		if name == "" {
			errs = append(errs, fmt.Errorf("%s: no usable characters in file name", f.Name()))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("%s: name %q already taken", f.Name(), name))
			continue
		}

		s, err := NewLuaFile(name, filepath.Join(dir, f.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, Strategy: s})
	}
	return entries, errors.Join(errs...)
}

// sanitizeName keeps letters, digits, '_' and '-' and truncates to maxNameLength
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, name)

	if len(cleaned) > maxNameLength {
		cleaned = cleaned[:maxNameLength]
	}
	return cleaned
}
