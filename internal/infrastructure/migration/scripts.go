package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/golang-migrate/migrate/v4/source"
)

// Script is one numbered migration: an up file and, when present, its down.
type Script struct {
	Version uint
	Name    string
	Up      string
	Down    string
}

// Scripts reads dir and returns its migrations ordered by version. File
// names follow golang-migrate's NNNNNN_name.up.sql convention; other files
// are ignored. A missing dir holds no scripts.
func Scripts(dir string) ([]Script, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[uint]*Script{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m, err := source.Parse(e.Name())
		if err != nil {
			continue
		}
		s, ok := byVersion[m.Version]
		if !ok {
			s = &Script{Version: m.Version, Name: m.Identifier}
			byVersion[m.Version] = s
		}
		path := filepath.Join(dir, e.Name())
		if m.Direction == source.Up {
			s.Up = path
		} else {
			s.Down = path
		}
	}

	scripts := make([]Script, 0, len(byVersion))
	for _, s := range byVersion {
		scripts = append(scripts, *s)
	}
	slices.SortFunc(scripts, func(a, b Script) int { return int(a.Version) - int(b.Version) })
	return scripts, nil
}

// NewScript writes an empty up/down pair numbered one past the highest
// version in dir. The name is reduced to lower-case words joined by "_".
func NewScript(dir, name, description string, now time.Time) (Script, error) {
	slug := slugify(name)
	if slug == "" {
		return Script{}, fmt.Errorf("migration name %q has no usable characters", name)
	}
	existing, err := Scripts(dir)
	if err != nil {
		return Script{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Script{}, fmt.Errorf("create migrations dir: %w", err)
	}

	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}
	base := fmt.Sprintf("%06d_%s", next, slug)
	s := Script{
		Version: next,
		Name:    slug,
		Up:      filepath.Join(dir, base+".up.sql"),
		Down:    filepath.Join(dir, base+".down.sql"),
	}

	header := fmt.Sprintf("-- %s\n-- Created: %s\n", name, now.UTC().Format(time.RFC3339))
	if description != "" {
		header += "-- " + description + "\n"
	}
	if err := writeNew(s.Up, header+"\n"); err != nil {
		return Script{}, err
	}
	if err := writeNew(s.Down, "-- Rollback: "+name+"\n\n"); err != nil {
		_ = os.Remove(s.Up)
		return Script{}, err
	}
	return s, nil
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	_, err = f.WriteString(content)
	return errors.Join(err, f.Close())
}

func slugify(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	kept := words[:0]
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, w)
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, "_")
}
