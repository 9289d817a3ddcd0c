package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tagsync/internal/tags"
)

//go:embed vocabulary.toml
var defaultVocabulary string

// vocabularyFile is the on-disk TOML shape.
type vocabularyFile struct {
	Allowed []string `toml:"allowed"`
	Silent  []string `toml:"silent"`
	Modes   []string `toml:"modes"`
}

// DefaultVocabulary returns the embedded vocabulary document.
func DefaultVocabulary() string {
	return defaultVocabulary
}

// LoadVocabulary reads the tag vocabulary from path, or the embedded
// default when path is empty.
func LoadVocabulary(path string) (tags.Vocabulary, error) {
	if path == "" {
		return ParseVocabulary([]byte(defaultVocabulary))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tags.Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a TOML vocabulary document.
func ParseVocabulary(data []byte) (tags.Vocabulary, error) {
	var vf vocabularyFile
	if err := toml.Unmarshal(data, &vf); err != nil {
		return tags.Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(vf.Allowed) == 0 {
		return tags.Vocabulary{}, fmt.Errorf("parse vocabulary: allowed list is empty")
	}

	v := tags.Vocabulary{
		Allowed: vf.Allowed,
		Silent:  vf.Silent,
		Modes:   vf.Modes,
	}
	for _, list := range [][]string{v.Allowed, v.Silent, v.Modes} {
		for _, entry := range list {
			if strings.ContainsAny(tags.Normalize(entry), "[]") {
				return tags.Vocabulary{}, fmt.Errorf("parse vocabulary: malformed entry %q", entry)
			}
		}
	}
	return v, nil
}
