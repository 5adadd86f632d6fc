package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_ShippedCatalog(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activities.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"compute-compatibility",
		"start-skill-verification",
		"submit-skill-verification",
	}, reg.TaskTypes())

	start, ok := reg.Find("start-skill-verification")
	require.True(t, ok)
	assert.Contains(t, start.ErrorCodes, "QUIZ_GENERATION_FAILED")

	_, ok = reg.Find("send-notification")
	assert.False(t, ok)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadRegistry(path)
	assert.ErrorContains(t, err, "parse activity registry")
}
