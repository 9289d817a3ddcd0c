package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator(Vocabulary{
		Allowed: []string{"[sighs]", "laughs", ""},
		Silent:  []string{"Nodding"},
		Modes:   []string{"pure", "mix"},
	})

	assert.True(t, v.IsAllowed(NewTag("Sighs", End)))
	assert.True(t, v.IsAllowed(NewTag("sighs", End)))
	assert.True(t, v.IsAllowed(NewTag("LAUGHS", End)))
	assert.False(t, v.IsAllowed(NewTag("sigh", End)), "no fuzzy matching")
	assert.False(t, v.IsAllowed(NewTag("pause", End)))

	assert.True(t, v.IsSilent(NewTag("nodding", Start)))
	assert.False(t, v.IsSilent(NewTag("sighs", Start)))

	assert.True(t, v.IsMode(NewTag("MIX", Start)))
	assert.Equal(t, 2, v.AllowedCount())
	assert.Equal(t, 1, v.SilentCount())
}
