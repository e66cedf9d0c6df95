package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestGetwd(t *testing.T) {
	t.Run("inside a checkout", func(t *testing.T) {
		root := Getwd()
		require.NotEmpty(t, root)
		_, err := os.Stat(filepath.Join(root, "go.mod"))
		assert.NoError(t, err)
	})

	// the checkout name must not matter: any directory tree without a go.mod
	// simply has no root
	t.Run("outside any checkout", func(t *testing.T) {
		chdir(t, t.TempDir())
		assert.Empty(t, Getwd())
	})
}

func TestNewConfig_outsideCheckout(t *testing.T) {
	chdir(t, t.TempDir())

	conf := NewConfig()
	require.NotNil(t, conf)
	assert.Equal(t, "Darasa", conf.AppName)
	assert.NotNil(t, conf.Server.Timezone)
}
