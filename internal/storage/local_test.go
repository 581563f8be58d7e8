package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocal_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "http://localhost:5000")
	assert.NoError(t, err)
	ctx := context.Background()

	err = local.Put(ctx, "avatars/7/1_abc.png", "image/png", strings.NewReader("fake-png"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "7", "1_abc.png"))
	assert.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))

	assert.NoError(t, local.Delete(ctx, "avatars/7/1_abc.png"))
	_, err = os.Stat(filepath.Join(dir, "avatars", "7", "1_abc.png"))
	assert.True(t, os.IsNotExist(err))

	// The emptied per-user directory is pruned too.
	_, err = os.Stat(filepath.Join(dir, "avatars", "7"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_PutOverwrites(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "http://localhost:5000")
	assert.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, local.Put(ctx, "avatars/7/a.png", "image/png", strings.NewReader("first")))
	assert.NoError(t, local.Put(ctx, "avatars/7/a.png", "image/png", strings.NewReader("second")))

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "7", "a.png"))
	assert.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocal_DeleteMissingIsNoError(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "http://localhost:5000")
	assert.NoError(t, err)

	assert.NoError(t, local.Delete(context.Background(), "avatars/7/missing.png"))
}

func TestLocal_URL(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "http://localhost:5000/")
	assert.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/storage/avatars/7/a.png", local.URL("avatars/7/a.png"))
}
