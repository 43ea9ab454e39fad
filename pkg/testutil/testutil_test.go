package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	reg := NewRegistry(t)
	q := MustParse(t, reg, "3 斤")
	assert.Equal(t, 3.0, q.Magnitude)

	presets := NewPresets(t)
	assert.Contains(t, presets.List(), "CGS")

	path := WriteFile(t, t.TempDir(), "a.yaml", "presets: []\n")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "presets: []\n", string(data))

	ctx := TestContext(t)
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	TestLogger(t).Info("registry ready")
}
