package driver

import (
	"context"
	"testing"

	"study-tracker-be/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	backend, err := Open(ctx, Config{LocalRoot: t.TempDir(), MaxDepth: 2})
	require.NoError(t, err)
	assert.Equal(t, storage.DriverLocal, backend.Driver())

	backend, err = Open(ctx, Config{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, backend)

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Driver: "s3"})
	assert.Error(t, err)
}
