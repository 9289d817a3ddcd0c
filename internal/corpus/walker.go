package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrRootNotFound is returned when the corpus root is missing or not a directory.
var ErrRootNotFound = errors.New("corpus root not found")

// File is one discovered script file.
type File struct {
	ID        ID
	Path      string
	Canonical bool
}

// Walker discovers script files under a corpus root.
type Walker struct {
	canonicalPrefix string
}

// NewWalker creates a Walker. Variant folders whose name starts with
// canonicalPrefix hold the canonical language.
func NewWalker(canonicalPrefix string) *Walker {
	return &Walker{canonicalPrefix: canonicalPrefix}
}

// IsCanonical reports whether a variant folder belongs to the canonical language.
func (w *Walker) IsCanonical(folder string) bool {
	return w.canonicalPrefix != "" && strings.HasPrefix(folder, w.canonicalPrefix)
}

// Walk discovers every script file under root and indexes it by ID.
func (w *Walker) Walk(root string) (*Index, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrRootNotFound, root)
	}

	var files []File

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		id, ok := ParseID(path)
		if !ok {
			return nil
		}
		files = append(files, File{
			ID:        id,
			Path:      path,
			Canonical: w.IsCanonical(id.Folder),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	log.Info().Int("count", len(files)).Str("root", root).Msg("Discovered script files")
	return newIndex(root, w, files), nil
}

// Classify builds a File for a path that may not be part of the index, such
// as a source path read back from a removal log.
func (w *Walker) Classify(path string) (File, bool) {
	id, ok := ParseID(path)
	if !ok {
		return File{}, false
	}
	return File{ID: id, Path: cleanPath(path), Canonical: w.IsCanonical(id.Folder)}, true
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
