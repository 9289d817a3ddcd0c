package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsync/internal/tags"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TAGSYNC_CANONICAL_PREFIX", "")
	t.Setenv("TAGSYNC_WORKERS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NEO4J_URI", "")

	cfg := Load()
	assert.Equal(t, "english_", cfg.CanonicalPrefix)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "neo4j", cfg.Neo4jUser)
	assert.False(t, cfg.LedgerEnabled())
	assert.False(t, cfg.GraphEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TAGSYNC_CANONICAL_PREFIX", "en_")
	t.Setenv("TAGSYNC_WORKERS", "8")
	t.Setenv("TAGSYNC_DRY_RUN", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/tagsync")

	cfg := Load()
	assert.Equal(t, "en_", cfg.CanonicalPrefix)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.LedgerEnabled())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TAGSYNC_WORKERS", "many")
	t.Setenv("TAGSYNC_DRY_RUN", "maybe")

	cfg := Load()
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.False(t, cfg.DryRun)
}

func TestDefaultVocabulary(t *testing.T) {
	v, err := LoadVocabulary("")
	require.NoError(t, err)

	assert.Contains(t, v.Allowed, "sighs")
	assert.Contains(t, v.Silent, "nodding")
	assert.Equal(t, []string{"pure", "mix", "en"}, v.Modes)

	val := tags.NewValidator(v)
	assert.True(t, val.IsAllowed(tags.NewTag("Sighs", tags.End)))
	assert.True(t, val.IsSilent(tags.NewTag("nodding", tags.Start)))
	assert.False(t, val.IsAllowed(tags.NewTag("nodding", tags.End)))
}

func TestLoadVocabulary_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.toml")
	require.NoError(t, os.WriteFile(path, []byte("allowed = [\"[Sighs]\"]\nsilent = [\"pause\"]\n"), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Sighs]"}, v.Allowed)
	assert.Empty(t, v.Modes)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseVocabulary_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed toml": "allowed = [",
		"empty allowed":  "silent = [\"pause\"]",
		"nested bracket": "allowed = [\"[[sighs]]\"]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseVocabulary([]byte(doc))
			assert.Error(t, err)
		})
	}
}
